// Package management provides staff triage of leads: listing, detail with
// contact activity, edits and status changes.
package management

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"legal_intake_backend/internal/events"
	"legal_intake_backend/internal/leads/repository"
	"legal_intake_backend/platform/apperr"
	"legal_intake_backend/platform/contact"
	"legal_intake_backend/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	msgLeadNotFound  = "lead not found"
	defaultPageSize  = 20
	maxActivityRunes = 2000
	maxNotesRunes    = 8000
	maxMatterRunes   = 4000
)

// Store is the lead persistence used by triage.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (repository.Lead, error)
	SetStatusIfDifferent(ctx context.Context, id uuid.UUID, status string) (bool, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Lead, int, error)
	AddActivity(ctx context.Context, leadID uuid.UUID, kind, summary string, actorID *uuid.UUID) (repository.Activity, error)
	ListActivities(ctx context.Context, leadID uuid.UUID) ([]repository.Activity, error)
}

type Service struct {
	store    Store
	eventBus events.Bus
}

func New(store Store, eventBus events.Bus) *Service {
	return &Service{store: store, eventBus: eventBus}
}

type ListFilter struct {
	Status   string
	Channel  string
	Search   string
	Page     int
	PageSize int
}

type ListResult struct {
	Items    []repository.Lead
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
		Search: strings.TrimSpace(filter.Search),
		Offset: (filter.Page - 1) * filter.PageSize,
		Limit:  filter.PageSize,
	}
	if filter.Status != "" {
		if !repository.IsValidStatus(filter.Status) {
			return ListResult{}, apperr.Validation("invalid lead status")
		}
		params.Status = &filter.Status
	}
	if filter.Channel != "" {
		params.Channel = &filter.Channel
	}

	items, total, err := s.store.List(ctx, params)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// Detail is a lead with its activity log.
type Detail struct {
	Lead       repository.Lead
	Activities []repository.Activity
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Detail, error) {
	var detail Detail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lead, err := s.store.GetByID(gctx, id)
		if err != nil {
			return err
		}
		detail.Lead = lead
		return nil
	})
	g.Go(func() error {
		activities, err := s.store.ListActivities(gctx, id)
		if err != nil {
			return err
		}
		detail.Activities = activities
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Detail{}, apperr.NotFound(msgLeadNotFound)
		}
		return Detail{}, err
	}
	return detail, nil
}

// UpdateInput carries staff edits. Nil fields are left alone; an empty
// email or phone clears it, as long as one contact method remains.
type UpdateInput struct {
	Name   *string
	Email  *string
	Phone  *string
	Matter *string
	Status *string
	Notes  *string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput, actorID *uuid.UUID) (repository.Lead, error) {
	current, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return repository.Lead{}, err
	}

	params, err := buildUpdate(current, in)
	if err != nil {
		return repository.Lead{}, err
	}

	updated, err := s.store.Update(ctx, id, params)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return repository.Lead{}, err
	}

	if updated.Status != current.Status {
		s.recordStatusChange(ctx, id, current.Status, updated.Status, actorID)
	}
	return updated, nil
}

func buildUpdate(current repository.Lead, in UpdateInput) (repository.UpdateParams, error) {
	var params repository.UpdateParams

	if in.Name != nil {
		name := strings.Join(strings.Fields(sanitize.Text(*in.Name)), " ")
		if name == "" {
			return params, apperr.Validation("name cannot be empty")
		}
		params.Name = &name
	}

	hasEmail := current.Email != nil
	hasPhone := current.Phone != nil
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		switch {
		case email == "":
			params.ClearEmail = true
			hasEmail = false
		case !contact.ValidateEmail(email):
			return params, apperr.Validation("invalid email")
		default:
			normalized := contact.NormalizeEmail(email)
			params.Email = &normalized
			hasEmail = true
		}
	}
	if in.Phone != nil {
		raw := strings.TrimSpace(*in.Phone)
		if raw == "" {
			params.ClearPhone = true
			hasPhone = false
		} else {
			digits, ok := contact.ValidatePhone(raw)
			if !ok {
				return params, apperr.Validation("invalid phone")
			}
			params.Phone = &digits
			hasPhone = true
		}
	}
	if !hasEmail && !hasPhone {
		return params, apperr.Validation("a lead needs an email or a phone")
	}

	if in.Matter != nil {
		matter := sanitize.Truncate(sanitize.Text(*in.Matter), maxMatterRunes)
		params.Matter = &matter
	}
	if in.Notes != nil {
		notes := sanitize.Truncate(sanitize.StripControl(*in.Notes), maxNotesRunes)
		params.Notes = &notes
	}
	if in.Status != nil {
		if !repository.IsValidStatus(*in.Status) {
			return params, apperr.Validation("invalid lead status")
		}
		params.Status = in.Status
	}
	return params, nil
}

// AddActivity logs a staff contact attempt or note.
func (s *Service) AddActivity(ctx context.Context, leadID uuid.UUID, kind, summary string, actorID *uuid.UUID) (repository.Activity, error) {
	if !repository.IsStaffActivityKind(kind) {
		return repository.Activity{}, apperr.Validation("invalid activity kind")
	}
	summary = sanitize.Truncate(strings.TrimSpace(sanitize.StripControl(summary)), maxActivityRunes)
	if summary == "" {
		return repository.Activity{}, apperr.Validation("summary is required")
	}

	if _, err := s.store.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Activity{}, apperr.NotFound(msgLeadNotFound)
		}
		return repository.Activity{}, err
	}
	return s.store.AddActivity(ctx, leadID, kind, summary, actorID)
}

// MarkQualified moves a lead to valido unless it already is. Used when a
// case is opened for the lead.
func (s *Service) MarkQualified(ctx context.Context, leadID uuid.UUID) error {
	current, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		return err
	}
	changed, err := s.store.SetStatusIfDifferent(ctx, leadID, repository.StatusQualified)
	if err != nil {
		return err
	}
	if changed {
		s.recordStatusChange(ctx, leadID, current.Status, repository.StatusQualified, nil)
	}
	return nil
}

func (s *Service) recordStatusChange(ctx context.Context, leadID uuid.UUID, from, to string, actorID *uuid.UUID) {
	summary := fmt.Sprintf("estado: %s → %s", from, to)
	// The activity row is history only; the status itself is already saved.
	_, _ = s.store.AddActivity(ctx, leadID, repository.ActivityStatusChange, summary, actorID)

	s.eventBus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		OldStatus: from,
		NewStatus: to,
		ActorID:   actorID,
	})
}
