package retention

import (
	"context"
	"errors"
	"iter"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/data/store"
	"github.com/akolanti/DocQueryAPI/internal/domain/commonModels"
)

// mockStore wraps the in-memory store so individual calls can be made to fail.
type mockStore struct {
	*store.InMemoryDocumentStore
	OnList   func() error
	OnDelete func(key string) error

	listCalls atomic.Int32
}

func (m *mockStore) ListByPrefix(ctx context.Context, prefix string) iter.Seq2[commonModels.StoredObjectMeta, error] {
	m.listCalls.Add(1)
	if m.OnList != nil {
		if err := m.OnList(); err != nil {
			return func(yield func(commonModels.StoredObjectMeta, error) bool) {
				yield(commonModels.StoredObjectMeta{}, err)
			}
		}
	}
	return m.InMemoryDocumentStore.ListByPrefix(ctx, prefix)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	if m.OnDelete != nil {
		if err := m.OnDelete(key); err != nil {
			return err
		}
	}
	return m.InMemoryDocumentStore.Delete(ctx, key)
}

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *mockStore, key string, age time.Duration) {
	t.Helper()
	if err := s.Put(context.Background(), key, []byte("x")); err != nil {
		t.Fatalf("seed %s: %v", key, err)
	}
	s.SetLastModified(key, baseTime.Add(-age))
}

func newMockStore() *mockStore {
	return &mockStore{InMemoryDocumentStore: store.InitInMemoryDocumentStore()}
}

func TestSweep_DeletesOnlyExpired(t *testing.T) {
	s := newMockStore()
	seed(t, s, "documents/a/young.pdf", 10*time.Hour)
	seed(t, s, "documents/b/old.pdf", 25*time.Hour)
	seed(t, s, "documents/c/older.png", 30*time.Hour)
	seed(t, s, "documents/d/edge.png", 24*time.Hour)

	sw := NewSweeper(s, 24*time.Hour).WithClock(func() time.Time { return baseTime })
	report := sw.Sweep(context.Background())

	if report != (Report{Scanned: 4, Deleted: 2, Failed: 0}) {
		t.Errorf("report got %+v", report)
	}
	for _, key := range []string{"documents/a/young.pdf", "documents/d/edge.png"} {
		if _, err := s.Get(context.Background(), key); err != nil {
			t.Errorf("%s should survive, got %v", key, err)
		}
	}
	for _, key := range []string{"documents/b/old.pdf", "documents/c/older.png"} {
		if _, err := s.Get(context.Background(), key); !errors.Is(err, commonModels.ErrNotFound) {
			t.Errorf("%s should be deleted, got %v", key, err)
		}
	}
}

func TestSweep_DeleteFailureDoesNotAbort(t *testing.T) {
	s := newMockStore()
	seed(t, s, "documents/a/1", 48*time.Hour)
	seed(t, s, "documents/b/2", 48*time.Hour)
	seed(t, s, "documents/c/3", 48*time.Hour)
	s.OnDelete = func(key string) error {
		if key == "documents/b/2" {
			return errors.New("access denied")
		}
		return nil
	}

	report := NewSweeper(s, 24*time.Hour).WithClock(func() time.Time { return baseTime }).Sweep(context.Background())

	if report.Deleted != 2 || report.Failed != 1 {
		t.Errorf("report got %+v, want 2 deleted 1 failed", report)
	}
	if s.Len() != 1 {
		t.Errorf("expected only the failed object left, %d remain", s.Len())
	}
}

func TestSweep_ListingFailureReturnsEmptyReport(t *testing.T) {
	s := newMockStore()
	seed(t, s, "documents/a/1", 48*time.Hour)
	s.OnList = func() error { return errors.New("throttled") }

	report := NewSweeper(s, time.Hour).WithClock(func() time.Time { return baseTime }).Sweep(context.Background())

	if report != (Report{}) {
		t.Errorf("report got %+v, want empty", report)
	}
	if s.Len() != 1 {
		t.Error("nothing should be deleted when listing fails")
	}
}

func TestSweeper_StartIsIdempotent(t *testing.T) {
	s := newMockStore()
	sw := NewSweeper(s, time.Hour)

	sw.Start()
	sw.Start()
	defer sw.Stop()

	waitFor(t, func() bool { return s.listCalls.Load() >= 1 })
	time.Sleep(20 * time.Millisecond)
	if got := s.listCalls.Load(); got != 1 {
		t.Errorf("expected exactly one loop to sweep once, got %d sweeps", got)
	}
	if !sw.IsRunning() {
		t.Error("expected running")
	}
}

func TestSweeper_StopWithoutStartIsNoop(t *testing.T) {
	sw := NewSweeper(newMockStore(), time.Hour)
	sw.Stop()
	if sw.IsRunning() {
		t.Error("expected stopped")
	}
}

func TestSweeper_StopThenRestart(t *testing.T) {
	s := newMockStore()
	sw := NewSweeper(s, time.Hour)

	sw.Start()
	waitFor(t, func() bool { return s.listCalls.Load() >= 1 })
	sw.Stop()
	if sw.IsRunning() {
		t.Fatal("expected stopped after Stop")
	}
	sw.Stop()

	sw.Start()
	defer sw.Stop()
	waitFor(t, func() bool { return s.listCalls.Load() >= 2 })
}

func TestSweeper_SurvivesListingFailure(t *testing.T) {
	s := newMockStore()
	var failures atomic.Int32
	s.OnList = func() error {
		if failures.Add(1) == 1 {
			return errors.New("transient")
		}
		return nil
	}
	seed(t, s, "documents/a/1", 48*time.Hour)

	sw := NewSweeper(s, 10*time.Millisecond).WithClock(func() time.Time { return baseTime })
	sw.Start()
	defer sw.Stop()

	waitFor(t, func() bool { return s.Len() == 0 })
	if !sw.IsRunning() {
		t.Error("sweeper should still be running after a listing failure")
	}
}

func TestSweeper_StopWaitsForInFlightSweep(t *testing.T) {
	s := newMockStore()
	seed(t, s, "documents/a/1", 48*time.Hour)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	s.OnDelete = func(key string) error {
		once.Do(func() { close(entered) })
		<-release
		return nil
	}

	sw := NewSweeper(s, time.Hour).WithClock(func() time.Time { return baseTime })
	sw.Start()
	<-entered

	stopped := make(chan struct{})
	go func() {
		sw.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned before the in-flight sweep finished")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the sweep finished")
	}
	if s.Len() != 0 {
		t.Error("in-flight delete should have completed")
	}
}

func TestSweeper_RestartDuringStopRunsOneLoop(t *testing.T) {
	s := newMockStore()
	seed(t, s, "documents/a/1", 48*time.Hour)
	seed(t, s, "documents/b/2", 48*time.Hour)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var inFlight, maxInFlight atomic.Int32
	s.OnDelete = func(key string) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		once.Do(func() { close(entered) })
		<-release
		return nil
	}

	sw := NewSweeper(s, time.Hour).WithClock(func() time.Time { return baseTime })
	sw.Start()
	<-entered

	stopped := make(chan struct{})
	go func() {
		sw.Stop()
		close(stopped)
	}()
	time.Sleep(20 * time.Millisecond)

	restarted := make(chan struct{})
	go func() {
		sw.Start()
		close(restarted)
	}()

	select {
	case <-restarted:
		t.Fatal("Start returned while the previous loop was still sweeping")
	case <-time.After(30 * time.Millisecond):
	}
	if got := s.listCalls.Load(); got != 1 {
		t.Errorf("expected one sweep before the old loop exits, got %d", got)
	}

	close(release)
	<-stopped
	<-restarted
	defer sw.Stop()

	waitFor(t, func() bool { return s.listCalls.Load() >= 2 })
	if got := maxInFlight.Load(); got != 1 {
		t.Errorf("max concurrent deletes got %d, want 1", got)
	}
	if !sw.IsRunning() {
		t.Error("expected running after restart")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
