package transport

import (
	"time"

	"github.com/google/uuid"
)

type PromoteRequest struct {
	LeadID uuid.UUID `json:"leadId" validate:"required"`
}

type PromoteResponse struct {
	CaseID    uuid.UUID `json:"caseId"`
	ShortCode string    `json:"shortCode"`
	Created   bool      `json:"created"`
}

type ListCasesRequest struct {
	Status     string `form:"status" validate:"omitempty,oneof=nuevo en_proceso cerrado"`
	AssignedTo string `form:"assignedTo" validate:"omitempty,uuid"`
	Search     string `form:"search" validate:"omitempty,max=100"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// UpdateCaseRequest edits a case. assignedTo set to null unassigns it.
type UpdateCaseRequest struct {
	Status       *string    `json:"status,omitempty" validate:"omitempty,oneof=nuevo en_proceso cerrado"`
	AssignedTo   *uuid.UUID `json:"assignedTo,omitempty"`
	Unassign     bool       `json:"unassign,omitempty"`
	Description  *string    `json:"description,omitempty" validate:"omitempty,max=8000"`
	InternalNote *string    `json:"internalNote,omitempty" validate:"omitempty,max=8000"`
}

type AddEventRequest struct {
	Type      string         `json:"type" validate:"required"`
	Detail    string         `json:"detail" validate:"max=4000"`
	EventDate *time.Time     `json:"eventDate,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

type CaseResponse struct {
	ID            uuid.UUID  `json:"id"`
	ShortCode     string     `json:"shortCode"`
	LeadID        uuid.UUID  `json:"leadId"`
	LeadShortCode string     `json:"leadShortCode,omitempty"`
	LeadName      string     `json:"leadName,omitempty"`
	AssignedTo    *uuid.UUID `json:"assignedTo,omitempty"`
	Status        string     `json:"status"`
	Description   string     `json:"description"`
	InternalNote  string     `json:"internalNote"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type EventResponse struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	Detail    string         `json:"detail"`
	Data      map[string]any `json:"data,omitempty"`
	EventDate time.Time      `json:"eventDate"`
	CreatedAt time.Time      `json:"createdAt"`
}

type CaseDetailResponse struct {
	CaseResponse
	Events []EventResponse `json:"events"`
}

type CaseListResponse struct {
	Items    []CaseResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}
