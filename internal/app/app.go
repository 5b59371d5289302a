package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NewsMirror/internal/config"
	"NewsMirror/internal/discovery"
	"NewsMirror/internal/domain"
	"NewsMirror/internal/infrastructure/httpapi"
	"NewsMirror/internal/infrastructure/listing"
	"NewsMirror/internal/infrastructure/parser"
	"NewsMirror/internal/infrastructure/scheduler"
	"NewsMirror/internal/infrastructure/storage"
	"NewsMirror/internal/infrastructure/telegram"
	"NewsMirror/internal/infrastructure/transport"
	"NewsMirror/internal/metrics"
	"NewsMirror/internal/ports"
	"NewsMirror/internal/repository"
	"NewsMirror/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *storage.FileStore
	syncer     *usecase.Syncer
	repository *repository.NewsRepository
	metrics    *metrics.SyncMetrics
}

// New builds the sync pipeline and the read side from cfg.
func New(cfg config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	httpFetcher := transport.NewHTTPFetcher(&http.Client{Timeout: cfg.Source.RequestTimeout}, cfg.Source.UserAgent)
	fetcher := transport.NewRetrying(
		httpFetcher,
		cfg.Source.MaxAttempts,
		transport.LinearBackoff(cfg.Source.RetryBackoff),
		logger.With("component", "transport"),
	)

	source := listing.NewClient(fetcher, cfg.Source.BaseURL, cfg.Source.Locale, cfg.Source.Product)
	engine, err := discovery.NewEngine(source, cfg.Source.BaseURL, cfg.Source.MaxPages, logger.With("component", "discovery"))
	if err != nil {
		return nil, err
	}

	store := storage.NewFileStore(cfg.Storage.IndexPath, cfg.Storage.ArticleDir)
	syncMetrics := metrics.NewSyncMetrics()

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Discoverer: engine,
		Fetcher:    parser.NewArticleFetcher(fetcher),
		Store:      store,
		Recorder:   syncMetrics,
		Logger:     logger.With("component", "pipeline"),
	})

	return &Application{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		syncer:     usecase.NewSyncer(pipeline, cfg.Sync.LookbackMonths, nil),
		repository: repository.New(store, ""),
		metrics:    syncMetrics,
	}, nil
}

// Sync performs one guarded pipeline run.
func (a *Application) Sync(ctx context.Context, opts usecase.RunOptions) (domain.SyncStats, error) {
	return a.syncer.Sync(ctx, opts)
}

// Repository exposes the read API.
func (a *Application) Repository() *repository.NewsRepository {
	return a.repository
}

// Serve runs the daily scheduler and the HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	ledger, err := storage.OpenLedger(ctx, a.cfg.Storage.LedgerPath)
	if err != nil {
		return err
	}
	defer ledger.Close()

	var notifier ports.Notifier
	tg := telegram.NewNotifier(a.cfg.Notifications.Telegram.BotToken, a.cfg.Notifications.Telegram.ChatID)
	if tg.Configured() {
		notifier = tg
	} else {
		a.logger.Warn("telegram is not configured; daily sync results will only be logged")
	}

	driver, err := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	if err != nil {
		return err
	}

	daily := usecase.NewScheduler(usecase.SchedulerDeps{
		Driver:   driver,
		Syncer:   a.syncer,
		Latest:   a.repository,
		Notifier: notifier,
		Ledger:   ledger,
		Logger:   a.logger.With("component", "scheduler"),
	})
	if err := daily.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("daily sync scheduled",
		"cron", a.cfg.Scheduler.CronExpression,
		"next_run", driver.NextRun(time.Now()).Format(time.RFC3339))

	server := httpapi.New(a.cfg.HTTP.Address, httpapi.Deps{
		Reader:        a.repository,
		Syncer:        a.syncer,
		Announcements: ledger,
		Metrics:       a.metrics.Handler(),
		Logger:        a.logger.With("component", "http"),
	})

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	return errors.Join(
		err,
		server.Shutdown(shutdownCtx),
		daily.Stop(shutdownCtx),
	)
}
