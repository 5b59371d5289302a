package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsMirror/internal/domain"
	"NewsMirror/internal/ports"
)

// LatestSource returns the newest stored article.
type LatestSource interface {
	GetLatest() (*domain.ArticleRecord, error)
}

// SchedulerDeps wires the daily sync job.
type SchedulerDeps struct {
	Driver   ports.Scheduler
	Syncer   *Syncer
	Latest   LatestSource
	Notifier ports.Notifier
	Ledger   ports.AnnouncementLedger
	Logger   *slog.Logger
	Now      func() time.Time
}

// Scheduler wires the cron driver with the sync use case and announces changes.
type Scheduler struct {
	driver   ports.Scheduler
	syncer   *Syncer
	latest   LatestSource
	notifier ports.Notifier
	ledger   ports.AnnouncementLedger
	logger   *slog.Logger
	now      func() time.Time
}

func NewScheduler(deps SchedulerDeps) *Scheduler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		driver:   deps.Driver,
		syncer:   deps.Syncer,
		latest:   deps.Latest,
		notifier: deps.Notifier,
		ledger:   deps.Ledger,
		logger:   logger,
		now:      now,
	}
}

// Start registers the daily job with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.syncer == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error("daily sync failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

// RunOnce syncs and, when anything changed, posts a summary and the latest article.
// A run that finds another sync in flight is skipped.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	stats, err := s.syncer.SyncNow(ctx)
	if errors.Is(err, ErrSyncBusy) {
		s.logger.Info("daily sync skipped because another sync is running")
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info("daily sync stats",
		"new", stats.New, "updated", stats.Updated, "unchanged", stats.Unchanged, "failed", stats.Failed)
	if !stats.Changed() || s.notifier == nil {
		return nil
	}

	if err := s.notifier.Publish(ctx, SummaryMessage(stats)); err != nil {
		return fmt.Errorf("publish summary: %w", err)
	}

	return s.announceLatest(ctx)
}

func (s *Scheduler) announceLatest(ctx context.Context) error {
	if s.latest == nil {
		return nil
	}

	record, err := s.latest.GetLatest()
	if err != nil {
		return fmt.Errorf("load latest article: %w", err)
	}
	if record == nil {
		return nil
	}

	if s.ledger != nil {
		seen, err := s.ledger.AlreadyAnnounced(ctx, record.ID, record.ContentHash)
		if err != nil {
			return fmt.Errorf("check announcement ledger: %w", err)
		}
		if seen {
			s.logger.Debug("latest article already announced", "id", record.ID)
			return nil
		}
	}

	if err := s.notifier.Publish(ctx, ArticleMessage(*record)); err != nil {
		return fmt.Errorf("publish article %s: %w", record.ID, err)
	}

	if s.ledger == nil {
		return nil
	}
	return s.ledger.MarkAnnounced(ctx, domain.Announcement{
		ArticleID:   record.ID,
		ContentHash: record.ContentHash,
		Title:       record.Title,
		AnnouncedAt: s.now().UTC(),
	})
}

// SummaryMessage renders the counters of a daily run.
func SummaryMessage(stats domain.SyncStats) string {
	return fmt.Sprintf("Daily HOTS sync complete. New: %d, Updated: %d, Unchanged: %d, Failed: %d",
		stats.New, stats.Updated, stats.Unchanged, stats.Failed)
}

// ArticleMessage renders a plain-text card for an article.
func ArticleMessage(record domain.ArticleRecord) string {
	var b strings.Builder
	title := record.Title
	if title == "" {
		title = "Untitled"
	}
	b.WriteString(title)
	b.WriteString("\n")

	author := "Unknown"
	if record.Author != nil && *record.Author != "" {
		author = *record.Author
	}
	fmt.Fprintf(&b, "Date: %s | Author: %s | Section: %s\n", DateLabel(record.Timestamp), author, record.Section)

	if summary := strings.TrimSpace(record.Summary); summary != "" {
		b.WriteString(summary)
		b.WriteString("\n")
	}
	b.WriteString(record.URL)
	return b.String()
}

// DateLabel formats an optional instant as YYYY-MM-DD.
func DateLabel(t *time.Time) string {
	if t == nil {
		return "Unknown"
	}
	return t.UTC().Format("2006-01-02")
}
