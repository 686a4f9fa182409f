// Package ingestion turns a candidate lead from any intake path (chat,
// public form, landing webhook) into a stored lead, at most once per
// conversation.
package ingestion

import (
	"context"
	"strings"

	"legal_intake_backend/internal/events"
	"legal_intake_backend/internal/leads/repository"
	"legal_intake_backend/platform/apperr"
	"legal_intake_backend/platform/contact"
	"legal_intake_backend/platform/logger"
	"legal_intake_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Result statuses.
const (
	StatusInserted = "inserted"
	StatusDeduped  = "deduped"
	StatusRejected = "rejected"
)

// Rejection reasons.
const (
	ReasonMissingName    = "name is required"
	ReasonMissingContact = "a valid email or phone is required"
)

const (
	maxNameRunes   = 200
	maxMatterRunes = 4000
)

// Candidate is an unvalidated lead.
type Candidate struct {
	Name   string
	Email  string
	Phone  string
	Matter string
}

// Provenance records where a candidate came from.
type Provenance struct {
	Source         string
	Channel        string
	ConversationID *uuid.UUID
}

type Result struct {
	LeadID    uuid.UUID
	ShortCode string
	Status    string
	// Reason explains a rejection.
	Reason string
}

// LeadStore is the persistence the ingestion path needs.
type LeadStore interface {
	Insert(ctx context.Context, params repository.InsertParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
}

type Service struct {
	store    LeadStore
	tracker  SessionTracker
	eventBus events.Bus
	log      *logger.Logger

	// locks serialise lookup+insert+remember per conversation so two turns
	// of one conversation cannot both insert within this process.
	locks *conversationLocks
}

func New(store LeadStore, tracker SessionTracker, eventBus events.Bus, log *logger.Logger) *Service {
	if tracker == nil {
		tracker = NewMemoryTracker()
	}
	return &Service{store: store, tracker: tracker, eventBus: eventBus, log: log, locks: newConversationLocks()}
}

// Ingest validates and stores a candidate. Rejections are results, not
// errors; store failures are returned as errors.
func (s *Service) Ingest(ctx context.Context, candidate Candidate, prov Provenance) (Result, error) {
	prov = normalizeProvenance(prov)

	name := normalizeName(candidate.Name)
	if name == "" {
		return s.reject(prov, ReasonMissingName), nil
	}
	details := contact.Normalize(candidate.Email, candidate.Phone)
	if !details.HasAny() {
		return s.reject(prov, ReasonMissingContact), nil
	}

	params := repository.InsertParams{
		Name:           name,
		Email:          optional(details.Email),
		Phone:          optional(details.Phone),
		Matter:         optional(sanitize.Truncate(sanitize.Text(candidate.Matter), maxMatterRunes)),
		Source:         prov.Source,
		Channel:        prov.Channel,
		ConversationID: prov.ConversationID,
	}

	if prov.ConversationID == nil {
		return s.insert(ctx, params)
	}

	convID := *prov.ConversationID
	unlock := s.locks.lock(convID)
	defer unlock()

	leadID, found, err := s.tracker.Lookup(ctx, convID)
	if err != nil {
		// A tracker outage must not lose the lead; a duplicate is the lesser harm.
		s.log.Warn("session tracker lookup failed", "conversation_id", convID.String(), "error", err)
	}
	if found {
		result := Result{LeadID: leadID, Status: StatusDeduped}
		if lead, err := s.store.GetByID(ctx, leadID); err == nil {
			result.ShortCode = lead.ShortCode
		}
		s.log.LeadIngested(leadID.String(), StatusDeduped, prov.Source, prov.Channel)
		return result, nil
	}

	result, err := s.insert(ctx, params)
	if err != nil {
		return Result{}, err
	}
	if err := s.tracker.Remember(ctx, convID, result.LeadID); err != nil {
		s.log.Warn("session tracker remember failed", "conversation_id", convID.String(), "error", err)
	}
	return result, nil
}

func (s *Service) insert(ctx context.Context, params repository.InsertParams) (Result, error) {
	lead, err := s.store.Insert(ctx, params)
	if err != nil {
		s.log.DatabaseError("leads.insert", err)
		return Result{}, apperr.Wrap(apperr.KindInternal, "failed to store lead", err).WithOp("ingestion.Ingest")
	}

	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		ShortCode:      lead.ShortCode,
		Name:           lead.Name,
		Email:          derefString(lead.Email),
		Phone:          derefString(lead.Phone),
		Matter:         derefString(lead.Matter),
		Source:         lead.Source,
		Channel:        lead.Channel,
		ConversationID: lead.ConversationID,
	})

	s.log.LeadIngested(lead.ID.String(), StatusInserted, lead.Source, lead.Channel)
	return Result{LeadID: lead.ID, ShortCode: lead.ShortCode, Status: StatusInserted}, nil
}

func (s *Service) reject(prov Provenance, reason string) Result {
	s.log.Info("lead rejected", "reason", reason, "source", prov.Source, "channel", prov.Channel)
	return Result{Status: StatusRejected, Reason: reason}
}

// normalizeProvenance coerces unknown values: source falls back to form,
// channel to bot for bot leads and landing otherwise.
func normalizeProvenance(p Provenance) Provenance {
	if p.Source != repository.SourceBot && p.Source != repository.SourceForm {
		p.Source = repository.SourceForm
	}
	switch p.Channel {
	case repository.ChannelBot, repository.ChannelForm, repository.ChannelLanding, repository.ChannelManual:
	default:
		if p.Source == repository.SourceBot {
			p.Channel = repository.ChannelBot
		} else {
			p.Channel = repository.ChannelLanding
		}
	}
	return p
}

// normalizeName collapses whitespace and capitalises each word without
// lower-casing the rest, so "maría DE la fuente" keeps "DE".
func normalizeName(raw string) string {
	name := strings.Join(strings.Fields(sanitize.Text(raw)), " ")
	name = sanitize.Truncate(name, maxNameRunes)
	if name == "" {
		return ""
	}
	return cases.Title(language.Spanish, cases.NoLower).String(name)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
