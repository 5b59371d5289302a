package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsMirror/internal/discovery"
	"NewsMirror/internal/domain"
	"NewsMirror/internal/ports"
)

// PipelineDeps wires all driven adapters into the sync pipeline.
type PipelineDeps struct {
	Discoverer ports.Discoverer
	Fetcher    ports.ArticleFetcher
	Store      ports.ArticleStore
	Recorder   ports.SyncRecorder
	Logger     *slog.Logger
	Now        func() time.Time
}

// RunOptions bounds a single run. A zero Limit means no limit.
type RunOptions struct {
	Limit  int
	Window *domain.Window
}

// Pipeline implements the incremental sync workflow.
type Pipeline struct {
	discoverer ports.Discoverer
	fetcher    ports.ArticleFetcher
	store      ports.ArticleStore
	recorder   ports.SyncRecorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Pipeline{
		discoverer: deps.Discoverer,
		fetcher:    deps.Fetcher,
		store:      deps.Store,
		recorder:   deps.Recorder,
		logger:     logger,
		now:        now,
	}
}

// Run loads the index, discovers candidates, refreshes new and changed articles
// and rewrites the index once. Article failures are counted, discovery failures abort.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (stats domain.SyncStats, err error) {
	started := p.now()
	logger := p.logger.With("run_id", uuid.NewString())
	indexSize := 0

	if p.recorder != nil {
		defer func() {
			p.recorder.ObserveRun(stats, indexSize, p.now().Sub(started), err)
		}()
	}

	index, err := p.store.LoadIndex()
	if err != nil {
		return stats, fmt.Errorf("load index: %w", err)
	}
	existing := EntriesByID(index)
	indexSize = index.Count

	logger.Info("starting update", "indexed", len(existing))

	var start *time.Time
	if opts.Window != nil {
		start = &opts.Window.Start
	}

	candidates, err := p.discoverer.Discover(ctx, start)
	if err != nil {
		return stats, fmt.Errorf("discover articles: %w", err)
	}

	if opts.Window != nil {
		candidates, _ = discovery.FilterWindow(candidates, *opts.Window, logger)
	}

	if opts.Limit > 0 && len(candidates) > opts.Limit {
		candidates = candidates[:opts.Limit]
		logger.Info("limit applied", "candidates", len(candidates))
	}

	var changed []domain.IndexEntry
	total := len(candidates)
	for i, ref := range candidates {
		position := fmt.Sprintf("%d/%d", i+1, total)

		outcome := Classify(existing, ref)
		if outcome == OutcomeUnchanged {
			stats.Unchanged++
			continue
		}

		entry, refreshErr := p.refresh(ctx, ref)
		if refreshErr != nil {
			stats.Failed++
			logger.Error("article "+string(OutcomeFailed), "position", position, "id", ref.ID, "url", ref.URL, "error", refreshErr)
			continue
		}
		changed = append(changed, entry)

		if outcome == OutcomeUpdated {
			stats.Updated++
		} else {
			stats.New++
		}
		logger.Info("article "+string(outcome), "position", position, "id", ref.ID)
	}

	merged := MergeIndex(index, changed, p.now())
	if err = p.store.WriteIndex(merged); err != nil {
		return stats, fmt.Errorf("write index: %w", err)
	}
	indexSize = merged.Count

	logger.Info("update finished",
		"new", stats.New,
		"updated", stats.Updated,
		"unchanged", stats.Unchanged,
		"failed", stats.Failed,
		"total_index", merged.Count,
	)
	return stats, nil
}

func (p *Pipeline) refresh(ctx context.Context, ref domain.ArticleReference) (domain.IndexEntry, error) {
	detail, err := p.fetcher.FetchArticle(ctx, ref.URL)
	if err != nil {
		return domain.IndexEntry{}, err
	}

	record, err := domain.NewRecord(ref, detail, p.now())
	if err != nil {
		return domain.IndexEntry{}, err
	}

	path, err := p.store.WriteArticle(record)
	if err != nil {
		return domain.IndexEntry{}, fmt.Errorf("write article: %w", err)
	}
	return record.Entry(path), nil
}
