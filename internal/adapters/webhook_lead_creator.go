package adapters

import (
	"context"

	"legal_intake_backend/internal/leads/ingestion"
	"legal_intake_backend/internal/leads/repository"
	"legal_intake_backend/internal/webhook"
)

// WebhookLeadCreator ingests landing-page submissions with form provenance.
type WebhookLeadCreator struct {
	ingestion LeadIngestor
}

// NewWebhookLeadCreator creates a new webhook lead creator adapter.
func NewWebhookLeadCreator(svc LeadIngestor) *WebhookLeadCreator {
	return &WebhookLeadCreator{ingestion: svc}
}

// CreateLandingLead runs the submission through lead ingestion.
func (a *WebhookLeadCreator) CreateLandingLead(ctx context.Context, input webhook.LeadInput) (webhook.LeadResult, error) {
	result, err := a.ingestion.Ingest(ctx, ingestion.Candidate{
		Name:   input.Name,
		Email:  input.Email,
		Phone:  input.Phone,
		Matter: input.Matter,
	}, ingestion.Provenance{
		Source:  repository.SourceForm,
		Channel: repository.ChannelLanding,
	})
	if err != nil {
		return webhook.LeadResult{}, err
	}
	return webhook.LeadResult{
		LeadID:    result.LeadID,
		ShortCode: result.ShortCode,
		Rejected:  result.Status == ingestion.StatusRejected,
		Reason:    result.Reason,
	}, nil
}

// Compile-time check.
var _ webhook.LeadCreator = (*WebhookLeadCreator)(nil)
