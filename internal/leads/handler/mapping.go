package handler

import (
	"legal_intake_backend/internal/leads/repository"
	"legal_intake_backend/internal/leads/transport"
	"legal_intake_backend/platform/phone"
)

func toLeadResponse(l repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:             l.ID,
		ShortCode:      l.ShortCode,
		Name:           l.Name,
		Email:          l.Email,
		Phone:          l.Phone,
		Matter:         l.Matter,
		Source:         l.Source,
		Channel:        l.Channel,
		Status:         l.Status,
		ConversationID: l.ConversationID,
		Notes:          l.Notes,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
	if l.Phone != nil {
		resp.PhoneDisplay = phone.FormatInternational(*l.Phone)
	}
	return resp
}

func toActivityResponse(a repository.Activity) transport.ActivityResponse {
	return transport.ActivityResponse{
		ID:        a.ID,
		Kind:      a.Kind,
		Summary:   a.Summary,
		ActorID:   a.ActorID,
		CreatedAt: a.CreatedAt,
	}
}
