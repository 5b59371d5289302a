package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"NewsMirror/internal/discovery"
	"NewsMirror/internal/domain"
)

// ErrSyncBusy is returned when a sync is already in flight.
var ErrSyncBusy = errors.New("sync already running")

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, opts RunOptions) (domain.SyncStats, error)
}

// Syncer serializes runs against the same index. A concurrent request is
// rejected with ErrSyncBusy instead of waiting.
type Syncer struct {
	runner Runner
	months int
	now    func() time.Time
	mu     sync.Mutex
}

// NewSyncer runs the pipeline over a lookback of months (30 days each).
func NewSyncer(runner Runner, months int, now func() time.Time) *Syncer {
	if now == nil {
		now = time.Now
	}
	return &Syncer{runner: runner, months: months, now: now}
}

// SyncNow runs the default lookback window.
func (s *Syncer) SyncNow(ctx context.Context) (domain.SyncStats, error) {
	window, err := discovery.ComputeWindow(s.months, "", "", s.now())
	if err != nil {
		return domain.SyncStats{}, err
	}
	return s.Sync(ctx, RunOptions{Window: &window})
}

// Sync runs the pipeline with explicit options while holding the guard.
func (s *Syncer) Sync(ctx context.Context, opts RunOptions) (domain.SyncStats, error) {
	if !s.mu.TryLock() {
		return domain.SyncStats{}, ErrSyncBusy
	}
	defer s.mu.Unlock()

	return s.runner.Run(ctx, opts)
}
