package transport

import (
	"time"

	"github.com/google/uuid"
)

// TurnRequest is one message typed into the chat widget.
type TurnRequest struct {
	Message        string     `json:"message" validate:"required,max=2000"`
	ConversationID *uuid.UUID `json:"conversationId,omitempty"`
}

type TurnResponse struct {
	Reply          string     `json:"reply"`
	ConversationID uuid.UUID  `json:"conversationId"`
	Outcome        string     `json:"outcome"`
	Stage          string     `json:"stage"`
	LeadID         *uuid.UUID `json:"leadId,omitempty"`
	LeadShortCode  string     `json:"leadShortCode,omitempty"`
	LeadStatus     string     `json:"leadStatus,omitempty"`
}

type ListConversationsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=active success abandoned spam"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type ConversationSummaryResponse struct {
	ID           uuid.UUID  `json:"id"`
	Status       string     `json:"status"`
	LeadID       *uuid.UUID `json:"leadId,omitempty"`
	MessageCount int        `json:"messageCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type ConversationListResponse struct {
	Items    []ConversationSummaryResponse `json:"items"`
	Total    int                           `json:"total"`
	Page     int                           `json:"page"`
	PageSize int                           `json:"pageSize"`
}

type MessageResponse struct {
	Role    string     `json:"role"`
	Content string     `json:"content"`
	At      *time.Time `json:"at,omitempty"`
}

type ConversationResponse struct {
	ID        uuid.UUID         `json:"id"`
	Status    string            `json:"status"`
	Stage     string            `json:"stage"`
	LeadID    *uuid.UUID        `json:"leadId,omitempty"`
	Messages  []MessageResponse `json:"messages"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type UpdateConversationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active success abandoned spam"`
}
