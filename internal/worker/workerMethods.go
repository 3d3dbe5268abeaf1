package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/domain/jobModel"
	"github.com/akolanti/DocQueryAPI/internal/metrics"
)

func executeJob(job jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobTimeout)
	defer cancel()

	log := logger.With("traceId", job.TraceId, "jobId", job.Id)
	log.Debug("Processing job")

	job.Status = jobModel.JobStatusRunning
	saveJobState(ctx, job)

	job = _ragService.ProcessRequest(ctx, job)

	if job.Status != jobModel.JobStatusError {
		job.Status = jobModel.JobStatusComplete
		job.CurrentStep = jobModel.Complete
	}
	job.EndTime = time.Now()
	saveJobState(ctx, job)
	log.Debug("Job finished", "status", job.Status)
}

func removeWorker(reason string) {
	retireWorker(reason, atomic.AddInt64(&currentWorkerCount, -1))
}

// claimIdleRetirement takes one worker off the count if that keeps the pool
// at or above the floor. Concurrent idle workers cannot both pass the check.
func claimIdleRetirement() bool {
	for {
		count := atomic.LoadInt64(&currentWorkerCount)
		if count <= atomic.LoadInt64(&minWorkerCount) {
			return false
		}
		if atomic.CompareAndSwapInt64(&currentWorkerCount, count, count-1) {
			return true
		}
	}
}

func retireWorker(reason string, count int64) {
	workerWaitGroup.Done()
	logger.Info("Removed worker", "reason", reason, "workerCount", count)
	metrics.DecrementActiveWorkerCount()
}

// saveJobState uses a fresh context so a timed out job can still record its
// final state.
func saveJobState(ctx context.Context, job jobModel.Job) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := _jobService.JobStore.SaveJob(saveCtx, job); err != nil {
		logger.Error("Failed to update job state", "jobId", job.Id, "status", job.Status, "error", err)
	}
}
