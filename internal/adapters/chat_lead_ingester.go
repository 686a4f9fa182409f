// Package adapters holds the anti-corruption layer between bounded contexts.
// Each adapter implements a consumer-side interface with another module's
// services so the modules never import each other directly.
package adapters

import (
	"context"
	"fmt"

	"legal_intake_backend/internal/chat/leadblock"
	chatsvc "legal_intake_backend/internal/chat/service"
	"legal_intake_backend/internal/leads/ingestion"
	"legal_intake_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// LeadIngestor is the part of the ingestion service the chat adapter uses.
type LeadIngestor interface {
	Ingest(ctx context.Context, candidate ingestion.Candidate, prov ingestion.Provenance) (ingestion.Result, error)
}

// ChatLeadIngester hands lead blocks produced by the assistant to lead
// ingestion with bot provenance.
type ChatLeadIngester struct {
	ingestion LeadIngestor
}

// NewChatLeadIngester creates a new chat lead ingester adapter.
func NewChatLeadIngester(svc LeadIngestor) *ChatLeadIngester {
	return &ChatLeadIngester{ingestion: svc}
}

// IngestConversationLead ingests the candidate extracted from a conversation.
func (a *ChatLeadIngester) IngestConversationLead(ctx context.Context, conversationID uuid.UUID, candidate leadblock.Candidate) (chatsvc.LeadOutcome, error) {
	convID := conversationID
	result, err := a.ingestion.Ingest(ctx, ingestion.Candidate{
		Name:   candidate.Name,
		Email:  candidate.Email,
		Phone:  candidate.Phone,
		Matter: candidate.Matter,
	}, ingestion.Provenance{
		Source:         repository.SourceBot,
		Channel:        repository.ChannelBot,
		ConversationID: &convID,
	})
	if err != nil {
		return chatsvc.LeadOutcome{}, err
	}

	status, err := chatStatus(result.Status)
	if err != nil {
		return chatsvc.LeadOutcome{}, err
	}
	return chatsvc.LeadOutcome{
		LeadID:    result.LeadID,
		ShortCode: result.ShortCode,
		Status:    status,
	}, nil
}

func chatStatus(status string) (string, error) {
	switch status {
	case ingestion.StatusInserted:
		return chatsvc.LeadInserted, nil
	case ingestion.StatusDeduped:
		return chatsvc.LeadDeduped, nil
	case ingestion.StatusRejected:
		return chatsvc.LeadRejected, nil
	default:
		return "", fmt.Errorf("unknown ingestion status %q", status)
	}
}

// Compile-time check.
var _ chatsvc.LeadIngester = (*ChatLeadIngester)(nil)
