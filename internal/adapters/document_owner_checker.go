package adapters

import (
	"context"
	"errors"

	casesrepo "legal_intake_backend/internal/cases/repository"
	docrepo "legal_intake_backend/internal/documents/repository"
	"legal_intake_backend/internal/documents/service"
	leadsrepo "legal_intake_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// CaseLookup reads a case by id.
type CaseLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (casesrepo.Case, error)
}

// DocumentOwnerChecker resolves document owners against the leads and
// cases contexts.
type DocumentOwnerChecker struct {
	leads LeadLookup
	cases CaseLookup
}

// NewDocumentOwnerChecker creates a new document owner checker adapter.
func NewDocumentOwnerChecker(leads LeadLookup, cases CaseLookup) *DocumentOwnerChecker {
	return &DocumentOwnerChecker{leads: leads, cases: cases}
}

// OwnerExists reports whether the lead or case exists.
func (a *DocumentOwnerChecker) OwnerExists(ctx context.Context, ownerType string, ownerID uuid.UUID) (bool, error) {
	var err error
	switch ownerType {
	case docrepo.OwnerLead:
		_, err = a.leads.GetByID(ctx, ownerID)
		if errors.Is(err, leadsrepo.ErrNotFound) {
			return false, nil
		}
	case docrepo.OwnerCase:
		_, err = a.cases.GetByID(ctx, ownerID)
		if errors.Is(err, casesrepo.ErrNotFound) {
			return false, nil
		}
	default:
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Compile-time check.
var _ service.OwnerChecker = (*DocumentOwnerChecker)(nil)
