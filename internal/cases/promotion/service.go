// Package promotion opens a case for a qualified lead. Promotion is
// idempotent: a lead maps to at most one case, enforced by a unique index
// and resolved by re-reading on conflict.
package promotion

import (
	"context"
	"errors"
	"fmt"

	"legal_intake_backend/internal/cases/repository"
	"legal_intake_backend/internal/events"
	"legal_intake_backend/platform/apperr"
	"legal_intake_backend/platform/logger"

	"github.com/google/uuid"
)

// ErrLeadNotFound is returned by LeadReader for an unknown lead.
var ErrLeadNotFound = errors.New("lead not found")

// Lead is what promotion needs to know about a lead.
type Lead struct {
	ID        uuid.UUID
	ShortCode string
	Name      string
	Matter    string
}

// LeadReader gives promotion read access to leads and the one write it
// performs on them.
type LeadReader interface {
	GetLead(ctx context.Context, id uuid.UUID) (Lead, error)
	MarkQualified(ctx context.Context, id uuid.UUID) error
}

// CaseStore is the case persistence promotion needs.
type CaseStore interface {
	GetByLeadID(ctx context.Context, leadID uuid.UUID) (repository.Case, error)
	CreateWithIntakeEvent(ctx context.Context, leadID uuid.UUID, description string, intake repository.NewEvent) (repository.Case, error)
}

type Result struct {
	CaseID    uuid.UUID
	ShortCode string
	Created   bool
}

type Service struct {
	cases    CaseStore
	leads    LeadReader
	eventBus events.Bus
	log      *logger.Logger
}

func New(cases CaseStore, leads LeadReader, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{cases: cases, leads: leads, eventBus: eventBus, log: log}
}

// Promote returns the lead's case, creating it on first call. On creation
// the case gets its ingreso event in the same transaction, and the lead is
// moved to valido afterwards.
func (s *Service) Promote(ctx context.Context, leadID uuid.UUID) (Result, error) {
	lead, err := s.leads.GetLead(ctx, leadID)
	if errors.Is(err, ErrLeadNotFound) {
		return Result{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return Result{}, err
	}

	existing, err := s.cases.GetByLeadID(ctx, leadID)
	if err == nil {
		return s.existing(ctx, existing)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return Result{}, err
	}

	intake := repository.NewEvent{
		Type:   repository.EventIntake,
		Detail: fmt.Sprintf("Caso abierto desde el lead %s", lead.ShortCode),
		Data:   map[string]any{"leadId": lead.ID.String(), "leadShortCode": lead.ShortCode},
	}
	created, err := s.cases.CreateWithIntakeEvent(ctx, leadID, lead.Matter, intake)
	if errors.Is(err, repository.ErrLeadHasCase) {
		winner, readErr := s.cases.GetByLeadID(ctx, leadID)
		if readErr != nil {
			return Result{}, readErr
		}
		return s.existing(ctx, winner)
	}
	if err != nil {
		s.log.DatabaseError("cases.create", err)
		return Result{}, apperr.Wrap(apperr.KindInternal, "failed to create case", err).WithOp("promotion.Promote")
	}

	if err := s.leads.MarkQualified(ctx, leadID); err != nil {
		// The case stands; promoting again repairs the lead status.
		return Result{}, fmt.Errorf("case %s created but lead status not updated: %w", created.ShortCode, err)
	}

	s.eventBus.Publish(ctx, events.CasePromoted{
		BaseEvent:     events.NewBaseEvent(),
		CaseID:        created.ID,
		CaseShortCode: created.ShortCode,
		LeadID:        lead.ID,
		LeadName:      lead.Name,
		Description:   created.Description,
	})
	s.log.Info("case promoted", "case_id", created.ID.String(), "lead_id", leadID.String())

	return Result{CaseID: created.ID, ShortCode: created.ShortCode, Created: true}, nil
}

func (s *Service) existing(ctx context.Context, c repository.Case) (Result, error) {
	if err := s.leads.MarkQualified(ctx, c.LeadID); err != nil {
		return Result{}, err
	}
	return Result{CaseID: c.ID, ShortCode: c.ShortCode, Created: false}, nil
}
