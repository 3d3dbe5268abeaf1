package retention

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/data/store"
	"github.com/akolanti/DocQueryAPI/internal/domain/commonModels"
	"github.com/akolanti/DocQueryAPI/internal/metrics"
	"github.com/akolanti/DocQueryAPI/pkg/logger_i"
)

type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
)

// Report summarises one sweep.
type Report struct {
	Scanned int
	Deleted int
	Failed  int
}

// Sweeper deletes documents older than the retention window on a fixed
// cadence. Start and Stop are safe to call from any goroutine.
type Sweeper struct {
	documents store.DocumentStore
	window    time.Duration
	now       func() time.Time
	logger    *logger_i.Logger

	// lifecycle serializes Start and Stop. Stop holds it until the old loop
	// has exited, so a Start racing a Stop never runs two loops.
	lifecycle sync.Mutex

	mu     sync.Mutex
	state  State
	stopCh chan struct{}
	doneCh chan struct{}
}

func NewSweeper(documents store.DocumentStore, window time.Duration) *Sweeper {
	if window <= 0 {
		window = config.DefaultRetentionWindow
	}
	return &Sweeper{
		documents: documents,
		window:    window,
		now:       time.Now,
		logger:    logger_i.NewLogger("Retention Sweeper"),
		state:     StateStopped,
	}
}

// WithClock replaces the time source used to age documents.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// Start launches the sweep loop. It is a no-op while already running.
func (s *Sweeper) Start() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		return
	}
	s.state = StateRunning
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.loop(s.stopCh, s.doneCh)
	s.logger.Info("sweeper started", "window", s.window.String())
}

// Stop signals the loop and waits for it to exit. An in-flight sweep is
// allowed to finish. Stopping a stopped sweeper does nothing.
func (s *Sweeper) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	done := s.doneCh
	s.state = StateStopped
	s.mu.Unlock()

	<-done
	s.logger.Info("sweeper stopped")
}

func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateRunning
}

func (s *Sweeper) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
		}

		s.Sweep(context.Background())
		timer.Reset(s.window)
	}
}

// Sweep runs one pass over the document prefix. Per-object delete failures
// are logged and counted. A listing failure ends the pass early.
func (s *Sweeper) Sweep(ctx context.Context) Report {
	var report Report
	s.mu.Lock()
	now := s.now()
	s.mu.Unlock()

	for meta, err := range s.documents.ListByPrefix(ctx, config.DocumentKeyPrefix) {
		if err != nil {
			s.logger.Error("listing documents failed, waiting for next tick", "error", err)
			metrics.IncrementSweepListingFailure()
			break
		}
		report.Scanned++
		if now.Sub(meta.LastModified) <= s.window {
			continue
		}
		if err := s.documents.Delete(ctx, meta.StorageKey); err != nil {
			cleanupErr := &commonModels.PerItemCleanupError{StorageKey: meta.StorageKey, Err: err}
			s.logger.Warn("delete failed", "error", cleanupErr)
			report.Failed++
			continue
		}
		s.logger.Debug("deleted expired document", "key", meta.StorageKey, "age", now.Sub(meta.LastModified).String())
		report.Deleted++
	}

	metrics.CaptureSweep(report.Deleted, report.Failed, time.Now())
	s.logger.Info("sweep complete", "scanned", report.Scanned, "deleted", report.Deleted, "failed", report.Failed)
	return report
}
