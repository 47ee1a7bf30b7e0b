package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"mediawatch/internal/api"
	"mediawatch/internal/config"
	"mediawatch/internal/infrastructure/feed"
	"mediawatch/internal/infrastructure/forms"
	"mediawatch/internal/infrastructure/notify"
	cronscheduler "mediawatch/internal/infrastructure/scheduler"
	"mediawatch/internal/infrastructure/snapshot"
	"mediawatch/internal/infrastructure/storage"
	"mediawatch/internal/infrastructure/store"
	"mediawatch/internal/logging"
	"mediawatch/internal/ports"
	"mediawatch/internal/source"
	"mediawatch/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	server    *api.Server
	scheduler *usecase.Scheduler
	db        *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	clients, err := buildClients(cfg, baseLogger)
	if err != nil {
		return nil, err
	}

	var contentStore ports.ContentStore
	if cfg.Store.Repo != "" && cfg.Store.Token != "" {
		contentStore = store.NewGitHubStore(cfg.Store, nil)
	} else {
		baseLogger.Warn("content store credentials absent, using in-memory store; approvals will not survive restarts")
		contentStore = store.NewMemoryStore()
	}

	var db *sql.DB
	var archive ports.ArchiveRepository
	if cfg.Archive.DSN != "" {
		db, err = sql.Open("postgres", cfg.Archive.DSN)
		if err != nil {
			return nil, fmt.Errorf("open archive database: %w", err)
		}
		archive = storage.NewPostgresArchive(db)
	}

	var snap ports.SnapshotStore
	if cfg.Snapshot.RedisAddr != "" {
		snap = snapshot.NewRedisSnapshot(cfg.Snapshot.RedisAddr)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = notify.NewTelegramNotifier(cfg.Notifications.Telegram)
	}

	var submissions ports.SubmissionSource
	if cfg.Forms.SiteID != "" && cfg.Forms.Token != "" {
		submissions = forms.NewNetlifyForms(cfg.Forms, nil)
	}

	crawler := usecase.NewCrawler(usecase.CrawlerDeps{
		Clients:  clients,
		Terms:    cfg.Crawler.SearchTerms,
		Store:    contentStore,
		Archive:  archive,
		Snapshot: snap,
		Notifier: notifier,
		Budget:   cfg.Crawler.GlobalBudget(),
		Logger:   baseLogger.With("component", "crawler"),
	})

	publisher := usecase.NewPublisher(contentStore, baseLogger.With("component", "publisher"))

	driver := cronscheduler.NewCronScheduler(cfg.Crawler.CronExpression, cfg.Crawler.Location())
	sched := usecase.NewScheduler(driver, crawler, baseLogger.With("component", "scheduler"))

	server := api.NewServer(crawler, publisher, snap, submissions,
		cfg.Server.AdminToken, baseLogger.With("component", "api"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		server:    server,
		scheduler: sched,
		db:        db,
	}, nil
}

func buildClients(cfg config.Config, logger *slog.Logger) ([]source.Client, error) {
	registry := source.NewRegistry()
	timeout := cfg.Crawler.PerSourceTimeout()
	maxItems := cfg.Crawler.MaxPerFeed

	registry.Register(feed.NewGoogleNewsClient(nil, timeout, maxItems))
	if cfg.Feeds.Bing.APIKey != "" {
		registry.Register(feed.NewBingNewsClient(nil, cfg.Feeds.Bing.Endpoint, cfg.Feeds.Bing.APIKey, timeout, maxItems))
	}
	if len(cfg.Feeds.Outlets) > 0 {
		registry.Register(feed.NewRSSClient(cfg.Feeds.Outlets, timeout, maxItems,
			logger.With("component", "source.outletrss")))
	}

	clients := make([]source.Client, 0, len(cfg.Crawler.Sources))
	for _, name := range cfg.Crawler.Sources {
		client, err := registry.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("configure sources: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, nil
}

// Run starts the scheduler and serves the admin API until the context is
// cancelled, then shuts both down.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	router := a.server.Router()
	_ = router.SetTrustedProxies(nil)

	srv := &http.Server{
		Addr:    ":" + a.cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("admin API listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler stop failed", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("archive close failed", "error", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
