package scheduler

import (
	"context"
	"errors"
	"testing"

	"legal_intake_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type recordingHandler struct {
	leads []NewLeadPayload
	cases []CasePromotedPayload
}

func (r *recordingHandler) NotifyNewLead(_ context.Context, p NewLeadPayload) error {
	r.leads = append(r.leads, p)
	return nil
}

func (r *recordingHandler) NotifyCasePromoted(_ context.Context, p CasePromotedPayload) error {
	r.cases = append(r.cases, p)
	return nil
}

func TestWorkerDispatchesTasks(t *testing.T) {
	h := &recordingHandler{}
	w := &Worker{handler: h, log: logger.Nop()}
	ctx := context.Background()

	leadTask, err := NewNotifyNewLeadTask(NewLeadPayload{LeadID: "1", ShortCode: "L-ABCDEF", Name: "Ana", Channel: "bot"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := w.handleNewLead(ctx, leadTask); err != nil {
		t.Fatalf("handle lead: %v", err)
	}

	caseTask, err := NewNotifyCasePromotedTask(CasePromotedPayload{CaseID: "2", CaseShortCode: "C-ABCDEF", LeadName: "Ana"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := w.handleCasePromoted(ctx, caseTask); err != nil {
		t.Fatalf("handle case: %v", err)
	}

	if len(h.leads) != 1 || h.leads[0].ShortCode != "L-ABCDEF" || len(h.cases) != 1 || h.cases[0].CaseShortCode != "C-ABCDEF" {
		t.Fatalf("unexpected deliveries: %+v %+v", h.leads, h.cases)
	}
}

func TestWorkerSkipsMalformedPayload(t *testing.T) {
	w := &Worker{handler: &recordingHandler{}, log: logger.Nop()}
	err := w.handleNewLead(context.Background(), asynq.NewTask(TaskNotifyNewLead, []byte("{not json")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestRedisClientOptRequiresURL(t *testing.T) {
	if _, err := redisClientOpt(""); err == nil {
		t.Fatalf("expected error for empty url")
	}
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opt.Addr != "localhost:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("unexpected options %+v", opt)
	}
}
