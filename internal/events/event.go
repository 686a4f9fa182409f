// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"legal_intake_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published after a new lead row is inserted, whatever the
// intake path (chat, form, landing webhook).
type LeadCreated struct {
	BaseEvent
	LeadID         uuid.UUID  `json:"leadId"`
	ShortCode      string     `json:"shortCode"`
	Name           string     `json:"name"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Matter         string     `json:"matter,omitempty"`
	Source         string     `json:"source"`
	Channel        string     `json:"channel"`
	ConversationID *uuid.UUID `json:"conversationId,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published when staff move a lead between statuses.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID  `json:"leadId"`
	OldStatus string     `json:"oldStatus"`
	NewStatus string     `json:"newStatus"`
	ActorID   *uuid.UUID `json:"actorId,omitempty"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// =============================================================================
// Cases Domain Events
// =============================================================================

// CasePromoted is published when a lead is promoted into a new case.
type CasePromoted struct {
	BaseEvent
	CaseID        uuid.UUID `json:"caseId"`
	CaseShortCode string    `json:"caseShortCode"`
	LeadID        uuid.UUID `json:"leadId"`
	LeadName      string    `json:"leadName"`
	Description   string    `json:"description,omitempty"`
}

func (e CasePromoted) EventName() string { return "cases.case.promoted" }
