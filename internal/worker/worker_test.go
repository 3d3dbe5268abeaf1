package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/domain/jobModel"
	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
	"github.com/akolanti/DocQueryAPI/internal/job"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
	OnProcess      func(ctx context.Context, j jobModel.Job) jobModel.Job
}

func (m *MockRagService) Resolve(ctx context.Context, document []byte, queries []string, rephrase bool) ([]queryModel.QueryResult, error) {
	return nil, nil
}

func (m *MockRagService) ResolveOne(ctx context.Context, document []byte, query string, rephrase bool) (queryModel.QueryResult, error) {
	return queryModel.QueryResult{}, nil
}

func (m *MockRagService) ProcessRequest(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnProcess != nil {
		return m.OnProcess(ctx, j)
	}
	return j
}

type MockJobStore struct {
	mu    sync.Mutex
	saved []jobModel.Job
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Id == jobId {
			return m.saved[i], true
		}
	}
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, j)
	return nil
}

func (m *MockJobStore) statuses(jobId string) []jobModel.JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []jobModel.JobStatus
	for _, j := range m.saved {
		if j.Id == jobId {
			out = append(out, j.Status)
		}
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWorkerPool_Flow(t *testing.T) {
	atomic.StoreInt64(&currentWorkerCount, 0)

	jobStore := &MockJobStore{}
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          jobStore,
	}
	mockRag := &MockRagService{
		OnProcess: func(ctx context.Context, j jobModel.Job) jobModel.Job {
			if j.JobPayload.FileId == "missing" {
				j.Status = jobModel.JobStatusError
				j.Error = jobModel.JobError{Code: 404, Message: "document missing"}
				return j
			}
			j.JobPayload.Results = []queryModel.QueryResult{{Query: "q", Answer: "a"}}
			return j
		},
	}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		waitFor(t, func() bool { return atomic.LoadInt64(&currentWorkerCount) >= 2 })
	})

	t.Run("Worker completes a job", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "ok-1", JobPayload: jobModel.JobPayload{FileId: "f"}}
		waitFor(t, func() bool { return len(jobStore.statuses("ok-1")) == 2 })

		got := jobStore.statuses("ok-1")
		if got[0] != jobModel.JobStatusRunning || got[1] != jobModel.JobStatusComplete {
			t.Errorf("statuses got %v, want [RUNNING COMPLETE]", got)
		}
		final, _ := jobStore.GetJob(context.Background(), "ok-1")
		if final.EndTime.IsZero() || len(final.JobPayload.Results) != 1 {
			t.Errorf("final job not recorded: %+v", final)
		}
	})

	t.Run("Worker keeps error status", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "bad-1", JobPayload: jobModel.JobPayload{FileId: "missing"}}
		waitFor(t, func() bool { return len(jobStore.statuses("bad-1")) == 2 })

		final, _ := jobStore.GetJob(context.Background(), "bad-1")
		if final.Status != jobModel.JobStatusError || final.Error.Code != 404 {
			t.Errorf("expected ERROR with code 404, got %+v", final)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stopChan)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})

	if processed := atomic.LoadInt32(&mockRag.ProcessedCount); processed != 2 {
		t.Errorf("Expected 2 jobs processed, got %d", processed)
	}
}

func TestWorker_IdleTimeout(t *testing.T) {
	prevTimeout, prevMin := idleWorkerTimeout, atomic.LoadInt64(&minWorkerCount)
	idleWorkerTimeout = 50 * time.Millisecond
	atomic.StoreInt64(&minWorkerCount, 0)
	t.Cleanup(func() {
		idleWorkerTimeout = prevTimeout
		atomic.StoreInt64(&minWorkerCount, prevMin)
	})

	atomic.StoreInt64(&currentWorkerCount, 0)
	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
		JobStore:   &MockJobStore{},
	}
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	workerWaitGroup = wg
	stopWorkerChannel = make(chan bool)

	createWorker()
	waitFor(t, func() bool { return atomic.LoadInt64(&currentWorkerCount) == 0 })
	wg.Wait()
}

func TestWorker_IdleKeepsFloor(t *testing.T) {
	prevTimeout, prevMin := idleWorkerTimeout, atomic.LoadInt64(&minWorkerCount)
	idleWorkerTimeout = 20 * time.Millisecond
	atomic.StoreInt64(&minWorkerCount, 1)
	t.Cleanup(func() {
		idleWorkerTimeout = prevTimeout
		atomic.StoreInt64(&minWorkerCount, prevMin)
	})

	atomic.StoreInt64(&currentWorkerCount, 0)
	InitServices(&job.Service{JobChannel: make(chan jobModel.Job), JobStore: &MockJobStore{}}, &MockRagService{})

	wg := &sync.WaitGroup{}
	stop := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stop

	createWorker()
	time.Sleep(100 * time.Millisecond)
	if count := atomic.LoadInt64(&currentWorkerCount); count != 1 {
		t.Errorf("the last worker should stay, count is %d", count)
	}
	close(stop)
	wg.Wait()
}

func TestClaimIdleRetirement_NeverDropsBelowFloor(t *testing.T) {
	prevMin := atomic.LoadInt64(&minWorkerCount)
	t.Cleanup(func() { atomic.StoreInt64(&minWorkerCount, prevMin) })

	tests := []struct {
		name      string
		workers   int64
		floor     int64
		claimants int
		wantLeft  int64
	}{
		{name: "many idle workers race to the floor", workers: 32, floor: 1, claimants: 32, wantLeft: 1},
		{name: "at the floor nobody retires", workers: 2, floor: 2, claimants: 8, wantLeft: 2},
		{name: "zero floor drains the pool", workers: 5, floor: 0, claimants: 10, wantLeft: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			atomic.StoreInt64(&minWorkerCount, tt.floor)
			atomic.StoreInt64(&currentWorkerCount, tt.workers)

			var claimed atomic.Int64
			var wg sync.WaitGroup
			start := make(chan struct{})
			for i := 0; i < tt.claimants; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					if claimIdleRetirement() {
						claimed.Add(1)
					}
				}()
			}
			close(start)
			wg.Wait()

			if got := atomic.LoadInt64(&currentWorkerCount); got != tt.wantLeft {
				t.Errorf("workers left got %d, want %d", got, tt.wantLeft)
			}
			if got := claimed.Load(); got != tt.workers-tt.wantLeft {
				t.Errorf("retirements got %d, want %d", got, tt.workers-tt.wantLeft)
			}
		})
	}
	atomic.StoreInt64(&currentWorkerCount, 0)
}
