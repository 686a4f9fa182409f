package adapters

import (
	"context"
	"errors"

	"legal_intake_backend/internal/cases/promotion"
	leadsrepo "legal_intake_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// LeadLookup reads a lead by id.
type LeadLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (leadsrepo.Lead, error)
}

// LeadQualifier moves a lead to valido.
type LeadQualifier interface {
	MarkQualified(ctx context.Context, leadID uuid.UUID) error
}

// CaseLeadReader gives case promotion read access to leads and lets it
// mark a promoted lead as qualified.
type CaseLeadReader struct {
	leads     LeadLookup
	qualifier LeadQualifier
}

// NewCaseLeadReader creates a new case lead reader adapter.
func NewCaseLeadReader(leads LeadLookup, qualifier LeadQualifier) *CaseLeadReader {
	return &CaseLeadReader{leads: leads, qualifier: qualifier}
}

// GetLead returns the fields promotion copies into the case.
func (a *CaseLeadReader) GetLead(ctx context.Context, id uuid.UUID) (promotion.Lead, error) {
	lead, err := a.leads.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, leadsrepo.ErrNotFound) {
			return promotion.Lead{}, promotion.ErrLeadNotFound
		}
		return promotion.Lead{}, err
	}

	var matter string
	if lead.Matter != nil {
		matter = *lead.Matter
	}
	return promotion.Lead{
		ID:        lead.ID,
		ShortCode: lead.ShortCode,
		Name:      lead.Name,
		Matter:    matter,
	}, nil
}

// MarkQualified delegates to lead management so the status change is
// recorded in the lead's activity log.
func (a *CaseLeadReader) MarkQualified(ctx context.Context, id uuid.UUID) error {
	return a.qualifier.MarkQualified(ctx, id)
}

// Compile-time check.
var _ promotion.LeadReader = (*CaseLeadReader)(nil)
