package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legal_intake_backend/internal/adapters"
	"legal_intake_backend/internal/adapters/storage"
	"legal_intake_backend/internal/auth"
	"legal_intake_backend/internal/cases"
	"legal_intake_backend/internal/chat"
	"legal_intake_backend/internal/documents"
	"legal_intake_backend/internal/email"
	"legal_intake_backend/internal/events"
	apphttp "legal_intake_backend/internal/http"
	"legal_intake_backend/internal/http/router"
	"legal_intake_backend/internal/leads"
	"legal_intake_backend/internal/leads/ingestion"
	"legal_intake_backend/internal/notification"
	"legal_intake_backend/internal/scheduler"
	"legal_intake_backend/internal/search"
	"legal_intake_backend/internal/webhook"
	"legal_intake_backend/platform/config"
	"legal_intake_backend/platform/db"
	"legal_intake_backend/platform/logger"
	"legal_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	tracker, closeTracker := initSessionTracker(cfg, log)
	if closeTracker != nil {
		defer closeTracker()
	}

	queue, closeQueue := initNotificationQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	dispatcher := notification.NewDispatcher(initMailSender(cfg, log), initSlack(cfg, log), cfg.GetAppBaseURL())
	var notificationQueue notification.Queue
	if queue != nil {
		notificationQueue = queue
	}
	notificationModule := notification.New(dispatcher, notificationQueue, log)
	notificationModule.RegisterHandlers(eventBus)

	leadsModule := leads.NewModule(pool, eventBus, tracker, val, log)

	chatModule, err := chat.NewModule(pool, adapters.NewChatLeadIngester(leadsModule.IngestionService()), cfg, val, log)
	if err != nil {
		log.Error("failed to initialize chat module", "error", err)
		panic("failed to initialize chat module: " + err.Error())
	}

	caseLeads := adapters.NewCaseLeadReader(leadsModule.Repository(), leadsModule.ManagementService())
	casesModule := cases.NewModule(pool, caseLeads, eventBus, val, log)

	authModule := auth.NewModule(pool, cfg, val, log)
	webhookModule := webhook.NewModule(cfg, adapters.NewWebhookLeadCreator(leadsModule.IngestionService()))

	modules := []apphttp.Module{
		authModule,
		leadsModule,
		chatModule,
		casesModule,
		webhookModule,
		search.NewModule(pool, val),
	}

	if cfg.IsMinIOEnabled() {
		objects := initObjectStore(ctx, cfg, log)
		owners := adapters.NewDocumentOwnerChecker(leadsModule.Repository(), casesModule.Repository())
		modules = append(modules, documents.NewModule(pool, objects, owners, cfg.GetMinioBucketDocuments(), val, log))
	} else {
		log.Warn("MINIO_ENDPOINT not configured; document uploads disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  modules,
	}

	srv := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.GetHTTPAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

func initSessionTracker(cfg config.SchedulerConfig, log *logger.Logger) (ingestion.SessionTracker, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; conversation lead tracking is in-memory only")
		return ingestion.NewMemoryTracker(), nil
	}

	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; falling back to in-memory tracking", "error", err)
		return ingestion.NewMemoryTracker(), nil
	}

	client := redis.NewClient(opts)
	return ingestion.NewRedisTracker(client, ingestion.DefaultRedisTTL), func() {
		_ = client.Close()
	}
}

func initNotificationQueue(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; notifications are delivered inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize notification queue", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func initMailSender(cfg config.SMTPConfig, log *logger.Logger) email.Sender {
	if !cfg.IsSMTPEnabled() {
		log.Warn("SMTP_HOST not configured; notification emails disabled")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(cfg)
}

func initSlack(cfg config.SlackConfig, log *logger.Logger) notification.SlackPoster {
	if cfg.GetSlackWebhookURL() == "" {
		log.Debug("SLACK_WEBHOOK_URL not configured; slack alerts disabled")
		return nil
	}
	return notification.NewSlackWebhook(cfg.GetSlackWebhookURL())
}

func initObjectStore(ctx context.Context, cfg *config.Config, log *logger.Logger) *storage.MinIOStore {
	store, err := storage.NewMinIOStore(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinioBucketDocuments()
	if err := withRetry(ctx, log, "ensure documents bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucket(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "documentsBucket", bucket)
	return store
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}
