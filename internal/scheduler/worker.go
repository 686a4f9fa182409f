package scheduler

import (
	"context"
	"fmt"
	"os"

	"legal_intake_backend/platform/config"
	"legal_intake_backend/platform/logger"

	"github.com/hibiken/asynq"
)

const defaultConcurrency = 4

// NotificationHandler delivers queued notifications.
type NotificationHandler interface {
	NotifyNewLead(ctx context.Context, payload NewLeadPayload) error
	NotifyCasePromoted(ctx context.Context, payload CasePromotedPayload) error
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	handler NotificationHandler
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, handler NotificationHandler, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: defaultConcurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
		Logger: newAsynqLogger(log),
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		handler: handler,
		log:     log,
	}
	mux.HandleFunc(TaskNotifyNewLead, w.handleNewLead)
	mux.HandleFunc(TaskNotifyCasePromoted, w.handleCasePromoted)

	return w, nil
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
		return err
	}
	return nil
}

func (w *Worker) handleNewLead(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseNewLeadPayload(task)
	if err != nil {
		w.log.Error("discarding malformed task", "type", task.Type(), "error", err)
		return asynq.SkipRetry
	}
	return w.handler.NotifyNewLead(ctx, payload)
}

func (w *Worker) handleCasePromoted(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCasePromotedPayload(task)
	if err != nil {
		w.log.Error("discarding malformed task", "type", task.Type(), "error", err)
		return asynq.SkipRetry
	}
	return w.handler.NotifyCasePromoted(ctx, payload)
}

// asynqLogger routes asynq's own logging through the application logger.
type asynqLogger struct {
	log *logger.Logger
}

func newAsynqLogger(log *logger.Logger) asynqLogger {
	return asynqLogger{log: log}
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) {
	l.log.Error(fmt.Sprint(args...))
	os.Exit(1)
}
