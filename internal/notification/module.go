// Package notification tells the intake team about new leads and opened
// cases. Domain modules publish events; this module decides whether to
// queue the delivery or send it right away.
package notification

import (
	"context"
	"fmt"

	"legal_intake_backend/internal/events"
	"legal_intake_backend/internal/scheduler"
	"legal_intake_backend/platform/logger"
)

// Queue enqueues deliveries for the background worker.
type Queue interface {
	EnqueueNewLead(ctx context.Context, payload scheduler.NewLeadPayload) error
	EnqueueCasePromoted(ctx context.Context, payload scheduler.CasePromotedPayload) error
}

// Module subscribes to domain events and routes them to delivery.
type Module struct {
	handler scheduler.NotificationHandler
	queue   Queue
	log     *logger.Logger
}

// New creates the module. With a nil queue deliveries run inline on the
// event bus goroutine.
func New(handler scheduler.NotificationHandler, queue Queue, log *logger.Logger) *Module {
	return &Module{handler: handler, queue: queue, log: log}
}

// RegisterHandlers subscribes the module to the events it cares about.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.CasePromoted{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		return m.handleLeadCreated(ctx, e)
	case events.CasePromoted:
		return m.handleCasePromoted(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleLeadCreated(ctx context.Context, e events.LeadCreated) error {
	payload := scheduler.NewLeadPayload{
		LeadID:    e.LeadID.String(),
		ShortCode: e.ShortCode,
		Name:      e.Name,
		Email:     e.Email,
		Phone:     e.Phone,
		Matter:    e.Matter,
		Channel:   e.Channel,
	}
	if m.queue != nil {
		return m.queue.EnqueueNewLead(ctx, payload)
	}
	if err := m.handler.NotifyNewLead(ctx, payload); err != nil {
		return fmt.Errorf("notify lead %s: %w", e.ShortCode, err)
	}
	return nil
}

func (m *Module) handleCasePromoted(ctx context.Context, e events.CasePromoted) error {
	payload := scheduler.CasePromotedPayload{
		CaseID:        e.CaseID.String(),
		CaseShortCode: e.CaseShortCode,
		LeadID:        e.LeadID.String(),
		LeadName:      e.LeadName,
		Description:   e.Description,
	}
	if m.queue != nil {
		return m.queue.EnqueueCasePromoted(ctx, payload)
	}
	if err := m.handler.NotifyCasePromoted(ctx, payload); err != nil {
		return fmt.Errorf("notify case %s: %w", e.CaseShortCode, err)
	}
	return nil
}
