package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsMirror/internal/domain"
)

type blockingRunner struct {
	started chan struct{}
	release chan struct{}
	opts    []RunOptions
}

func (b *blockingRunner) Run(_ context.Context, opts RunOptions) (domain.SyncStats, error) {
	b.opts = append(b.opts, opts)
	if b.started != nil {
		close(b.started)
		<-b.release
	}
	return domain.SyncStats{New: 1}, nil
}

func TestSyncerRejectsConcurrentRuns(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{started: make(chan struct{}), release: make(chan struct{})}
	syncer := NewSyncer(runner, 3, fixedNow)

	done := make(chan error, 1)
	go func() {
		_, err := syncer.SyncNow(context.Background())
		done <- err
	}()
	<-runner.started

	_, err := syncer.SyncNow(context.Background())
	assert.ErrorIs(t, err, ErrSyncBusy)

	close(runner.release)
	require.NoError(t, <-done)
}

func TestSyncNowUsesLookbackWindow(t *testing.T) {
	t.Parallel()

	runner := &blockingRunner{}
	syncer := NewSyncer(runner, 2, fixedNow)

	stats, err := syncer.SyncNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.New)

	require.Len(t, runner.opts, 1)
	window := runner.opts[0].Window
	require.NotNil(t, window)
	assert.Equal(t, fixedNow(), window.End)
	assert.Equal(t, fixedNow().Add(-60*24*time.Hour), window.Start)

	_, err = syncer.SyncNow(context.Background())
	assert.NoError(t, err, "guard is released after a run")
}
