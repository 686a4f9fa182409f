package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"legal_intake_backend/internal/email"
	"legal_intake_backend/internal/notification"
	"legal_intake_backend/internal/scheduler"
	"legal_intake_backend/platform/config"
	"legal_intake_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetNotificationQueue())

	if cfg.GetRedisURL() == "" {
		log.Error("REDIS_URL is required for the notification worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mail email.Sender = email.NoopSender{}
	if cfg.IsSMTPEnabled() {
		mail = email.NewSMTPSender(cfg)
	} else {
		log.Warn("SMTP_HOST not configured; notification emails disabled")
	}

	var slack notification.SlackPoster
	if url := cfg.GetSlackWebhookURL(); url != "" {
		slack = notification.NewSlackWebhook(url)
	}

	dispatcher := notification.NewDispatcher(mail, slack, cfg.GetAppBaseURL())

	worker, err := scheduler.NewWorker(cfg, dispatcher, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	if err := worker.Run(ctx); err != nil {
		log.Error("scheduler worker stopped", "error", err)
		os.Exit(1)
	}
	log.Info("scheduler stopped")
}
