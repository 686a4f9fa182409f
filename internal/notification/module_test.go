package notification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"legal_intake_backend/internal/email"
	"legal_intake_backend/internal/events"
	"legal_intake_backend/internal/scheduler"
	"legal_intake_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
)

const testBaseURL = "https://admin.example.cl/"

type testSender struct {
	leads []email.NewLead
	cases []email.CasePromoted
	err   error
}

func (s *testSender) SendNewLeadEmail(_ context.Context, lead email.NewLead) error {
	s.leads = append(s.leads, lead)
	return s.err
}

func (s *testSender) SendCasePromotedEmail(_ context.Context, c email.CasePromoted) error {
	s.cases = append(s.cases, c)
	return s.err
}

type testSlack struct {
	messages []*slack.WebhookMessage
}

func (s *testSlack) Post(_ context.Context, msg *slack.WebhookMessage) error {
	s.messages = append(s.messages, msg)
	return nil
}

type testQueue struct {
	leads []scheduler.NewLeadPayload
	cases []scheduler.CasePromotedPayload
}

func (q *testQueue) EnqueueNewLead(_ context.Context, p scheduler.NewLeadPayload) error {
	q.leads = append(q.leads, p)
	return nil
}

func (q *testQueue) EnqueueCasePromoted(_ context.Context, p scheduler.CasePromotedPayload) error {
	q.cases = append(q.cases, p)
	return nil
}

func leadCreated() events.LeadCreated {
	return events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		ShortCode: "L-ABCDEF",
		Name:      "Ana Pérez",
		Phone:     "56912345678",
		Matter:    "Despido injustificado",
		Source:    "bot",
		Channel:   "bot",
	}
}

func TestLeadCreatedIsSentInlineWithoutQueue(t *testing.T) {
	sender := &testSender{}
	sl := &testSlack{}
	m := New(NewDispatcher(sender, sl, testBaseURL), nil, logger.Nop())
	event := leadCreated()

	if err := m.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(sender.leads) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.leads))
	}
	got := sender.leads[0]
	if got.LeadURL != "https://admin.example.cl/leads/"+event.LeadID.String() {
		t.Fatalf("unexpected lead url %q", got.LeadURL)
	}
	if !strings.HasPrefix(got.Phone, "+56") {
		t.Fatalf("expected international phone format, got %q", got.Phone)
	}
	if len(sl.messages) != 1 || !strings.Contains(sl.messages[0].Text, "L-ABCDEF") {
		t.Fatalf("expected slack message for the lead")
	}
}

func TestEventsAreQueuedWhenQueueConfigured(t *testing.T) {
	sender := &testSender{}
	queue := &testQueue{}
	m := New(NewDispatcher(sender, nil, testBaseURL), queue, logger.Nop())
	ctx := context.Background()

	if err := m.Handle(ctx, leadCreated()); err != nil {
		t.Fatalf("handle lead: %v", err)
	}
	promoted := events.CasePromoted{
		BaseEvent:     events.NewBaseEvent(),
		CaseID:        uuid.New(),
		CaseShortCode: "C-XYZ234",
		LeadID:        uuid.New(),
		LeadName:      "Ana Pérez",
	}
	if err := m.Handle(ctx, promoted); err != nil {
		t.Fatalf("handle case: %v", err)
	}

	if len(queue.leads) != 1 || len(queue.cases) != 1 {
		t.Fatalf("expected both events queued, got %d leads %d cases", len(queue.leads), len(queue.cases))
	}
	if queue.cases[0].CaseID != promoted.CaseID.String() {
		t.Fatalf("unexpected case payload %+v", queue.cases[0])
	}
	if len(sender.leads) != 0 {
		t.Fatalf("expected no inline delivery when queued")
	}
}

func TestDispatcherTriesEveryChannel(t *testing.T) {
	sender := &testSender{err: errors.New("smtp down")}
	sl := &testSlack{}
	d := NewDispatcher(sender, sl, testBaseURL)

	err := d.NotifyCasePromoted(context.Background(), scheduler.CasePromotedPayload{CaseID: "1", CaseShortCode: "C-XYZ234", LeadName: "Ana"})
	if err == nil {
		t.Fatalf("expected email failure to be reported")
	}
	if len(sl.messages) != 1 {
		t.Fatalf("expected slack delivery despite email failure")
	}
}

func TestPreviewTruncates(t *testing.T) {
	long := strings.Repeat("á", maxMatterPreviewRunes+10)
	if got := []rune(preview(long)); len(got) != maxMatterPreviewRunes+1 {
		t.Fatalf("expected truncated preview, got %d runes", len(got))
	}
}

func TestLeadSlackMessageLinksDialablePhone(t *testing.T) {
	msg := newLeadSlackMessage(leadNotice{
		ShortCode: "L-ABCDEF",
		Name:      "Ana",
		Phone:     "+56 9 1234 5678",
		PhoneE164: "+56912345678",
		Channel:   "bot",
	})
	var phoneField string
	for _, f := range msg.Attachments[0].Fields {
		if f.Title == "Teléfono" {
			phoneField = f.Value
		}
	}
	if phoneField != "<tel:+56912345678|+56 9 1234 5678>" {
		t.Fatalf("unexpected phone field %q", phoneField)
	}
}
