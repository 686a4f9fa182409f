// Package management provides staff triage of cases and their timeline.
package management

import (
	"context"
	"errors"
	"strings"
	"time"

	"legal_intake_backend/internal/cases/repository"
	"legal_intake_backend/platform/apperr"
	"legal_intake_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	msgCaseNotFound = "case not found"
	defaultPageSize = 20
	maxDetailRunes  = 4000
	maxTextRunes    = 8000
)

type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Case, error)
	GetWithLead(ctx context.Context, id uuid.UUID) (repository.ListItem, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (repository.Case, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.ListItem, int, error)
	AddEvent(ctx context.Context, caseID uuid.UUID, ev repository.NewEvent) (repository.Event, error)
	ListEvents(ctx context.Context, caseID uuid.UUID) ([]repository.Event, error)
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

type ListFilter struct {
	Status     string
	AssignedTo *uuid.UUID
	Search     string
	Page       int
	PageSize   int
}

type ListResult struct {
	Items    []repository.ListItem
	Total    int
	Page     int
	PageSize int
}

func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	params := repository.ListParams{
		AssignedTo: filter.AssignedTo,
		Search:     strings.TrimSpace(filter.Search),
		Offset:     (filter.Page - 1) * filter.PageSize,
		Limit:      filter.PageSize,
	}
	if filter.Status != "" {
		if !repository.IsValidStatus(filter.Status) {
			return ListResult{}, apperr.Validation("invalid case status")
		}
		params.Status = &filter.Status
	}

	items, total, err := s.store.List(ctx, params)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// Detail is a case with its lead reference and timeline (newest first).
type Detail struct {
	Case   repository.ListItem
	Events []repository.Event
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Detail, error) {
	var detail Detail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		item, err := s.store.GetWithLead(gctx, id)
		if err != nil {
			return err
		}
		detail.Case = item
		return nil
	})
	g.Go(func() error {
		evs, err := s.store.ListEvents(gctx, id)
		if err != nil {
			return err
		}
		detail.Events = evs
		return nil
	})
	if err := g.Wait(); err != nil {
		return Detail{}, mapNotFound(err)
	}
	return detail, nil
}

type UpdateInput struct {
	Status *string
	// AssignedTo with ClearAssignee=false and a nil value leaves it alone.
	AssignedTo    *uuid.UUID
	ClearAssignee bool
	Description   *string
	InternalNote  *string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (repository.Case, error) {
	var params repository.UpdateParams
	if in.Status != nil {
		if !repository.IsValidStatus(*in.Status) {
			return repository.Case{}, apperr.Validation("invalid case status")
		}
		params.Status = in.Status
	}
	if in.AssignedTo != nil || in.ClearAssignee {
		params.AssignedToSet = true
		params.AssignedTo = in.AssignedTo
	}
	if in.Description != nil {
		d := sanitize.Truncate(sanitize.Text(*in.Description), maxTextRunes)
		params.Description = &d
	}
	if in.InternalNote != nil {
		n := sanitize.Truncate(sanitize.StripControl(*in.InternalNote), maxTextRunes)
		params.InternalNote = &n
	}

	updated, err := s.store.Update(ctx, id, params)
	if errors.Is(err, repository.ErrInvalidAssignee) {
		return repository.Case{}, apperr.Validation("assignee does not exist")
	}
	if err != nil {
		return repository.Case{}, mapNotFound(err)
	}
	return updated, nil
}

type EventInput struct {
	Type      string
	Detail    string
	EventDate *time.Time
	Data      map[string]any
}

// AddEvent appends a milestone to the timeline. EventDate may be in the
// future for scheduled hearings.
func (s *Service) AddEvent(ctx context.Context, caseID uuid.UUID, in EventInput) (repository.Event, error) {
	if !repository.IsValidEventType(in.Type) {
		return repository.Event{}, apperr.Validation("invalid event type").WithDetails(map[string]any{
			"allowed": repository.EventTypes(),
		})
	}
	ev := repository.NewEvent{
		Type:   in.Type,
		Detail: sanitize.Truncate(sanitize.Text(in.Detail), maxDetailRunes),
		Data:   in.Data,
	}
	if in.EventDate != nil {
		ev.EventDate = in.EventDate.UTC()
	}

	if _, err := s.store.GetByID(ctx, caseID); err != nil {
		return repository.Event{}, mapNotFound(err)
	}
	return s.store.AddEvent(ctx, caseID, ev)
}

func (s *Service) ListEvents(ctx context.Context, caseID uuid.UUID) ([]repository.Event, error) {
	if _, err := s.store.GetByID(ctx, caseID); err != nil {
		return nil, mapNotFound(err)
	}
	return s.store.ListEvents(ctx, caseID)
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgCaseNotFound)
	}
	return err
}
