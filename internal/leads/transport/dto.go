package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest is the public intake form.
type CreateLeadRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email,omitempty" validate:"omitempty,max=254"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Matter  string `json:"matter,omitempty" validate:"omitempty,max=4000"`
	Channel string `json:"channel,omitempty" validate:"omitempty,max=32"`
}

// CreateManualLeadRequest is a lead typed in by staff (walk-in, phone call).
type CreateManualLeadRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Email  string `json:"email,omitempty" validate:"omitempty,contactemail"`
	Phone  string `json:"phone,omitempty" validate:"omitempty,contactphone"`
	Matter string `json:"matter,omitempty" validate:"omitempty,max=4000"`
}

type CreateLeadResponse struct {
	ID        uuid.UUID `json:"id"`
	ShortCode string    `json:"shortCode"`
	Status    string    `json:"status"`
}

type ListLeadsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=nuevo contactado descartado valido"`
	Channel  string `form:"channel" validate:"omitempty,oneof=bot form landing manual"`
	Search   string `form:"search" validate:"omitempty,max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type UpdateLeadRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email  *string `json:"email,omitempty" validate:"omitempty,max=254"`
	Phone  *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Matter *string `json:"matter,omitempty" validate:"omitempty,max=4000"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=nuevo contactado descartado valido"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=8000"`
}

type AddActivityRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=call email whatsapp meeting note"`
	Summary string `json:"summary" validate:"required,max=2000"`
}

type LeadResponse struct {
	ID             uuid.UUID  `json:"id"`
	ShortCode      string     `json:"shortCode"`
	Name           string     `json:"name"`
	Email          *string    `json:"email,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	PhoneDisplay   string     `json:"phoneDisplay,omitempty"`
	Matter         *string    `json:"matter,omitempty"`
	Source         string     `json:"source"`
	Channel        string     `json:"channel"`
	Status         string     `json:"status"`
	ConversationID *uuid.UUID `json:"conversationId,omitempty"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type ActivityResponse struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	Summary   string     `json:"summary"`
	ActorID   *uuid.UUID `json:"actorId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type LeadDetailResponse struct {
	LeadResponse
	Activities []ActivityResponse `json:"activities"`
}

type LeadListResponse struct {
	Items    []LeadResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}
