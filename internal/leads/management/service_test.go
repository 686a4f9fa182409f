package management

import (
	"context"
	"sync"
	"testing"

	"legal_intake_backend/internal/events"
	"legal_intake_backend/internal/leads/repository"
	"legal_intake_backend/platform/apperr"
	"legal_intake_backend/platform/logger"

	"github.com/google/uuid"
)

const fmtUnexpectedErr = "unexpected error: %v"

type fakeStore struct {
	mu         sync.Mutex
	leads      map[uuid.UUID]repository.Lead
	activities map[uuid.UUID][]repository.Activity
	lastUpdate repository.UpdateParams
}

func newFakeStore(leads ...repository.Lead) *fakeStore {
	f := &fakeStore{leads: map[uuid.UUID]repository.Lead{}, activities: map[uuid.UUID][]repository.Activity{}}
	for _, l := range leads {
		f.leads[l.ID] = l
	}
	return f
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return l, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, p repository.UpdateParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	f.lastUpdate = p
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Email != nil {
		l.Email = p.Email
	}
	if p.ClearEmail {
		l.Email = nil
	}
	if p.Phone != nil {
		l.Phone = p.Phone
	}
	if p.ClearPhone {
		l.Phone = nil
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	f.leads[id] = l
	return l, nil
}

func (f *fakeStore) SetStatusIfDifferent(_ context.Context, id uuid.UUID, status string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.leads[id]
	if l.Status == status {
		return false, nil
	}
	l.Status = status
	f.leads[id] = l
	return true, nil
}

func (f *fakeStore) List(context.Context, repository.ListParams) ([]repository.Lead, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) AddActivity(_ context.Context, leadID uuid.UUID, kind, summary string, actorID *uuid.UUID) (repository.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := repository.Activity{ID: uuid.New(), LeadID: leadID, Kind: kind, Summary: summary, ActorID: actorID}
	f.activities[leadID] = append(f.activities[leadID], a)
	return a, nil
}

func (f *fakeStore) ListActivities(_ context.Context, leadID uuid.UUID) ([]repository.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activities[leadID], nil
}

func strPtr(s string) *string { return &s }

func sampleLead() repository.Lead {
	return repository.Lead{
		ID:        uuid.New(),
		ShortCode: "L-ABCDEF",
		Name:      "Ana",
		Email:     strPtr("ana@correo.cl"),
		Status:    repository.StatusNew,
	}
}

func TestUpdateRejectsRemovingLastContact(t *testing.T) {
	lead := sampleLead()
	svc := New(newFakeStore(lead), events.NewInMemoryBus(logger.Nop()))

	_, err := svc.Update(context.Background(), lead.ID, UpdateInput{Email: strPtr("")}, nil)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateSwapsContactAndNormalizes(t *testing.T) {
	lead := sampleLead()
	store := newFakeStore(lead)
	svc := New(store, events.NewInMemoryBus(logger.Nop()))

	updated, err := svc.Update(context.Background(), lead.ID, UpdateInput{Email: strPtr(""), Phone: strPtr("+56 9 8765 4321")}, nil)
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	if updated.Email != nil || updated.Phone == nil || *updated.Phone != "56987654321" {
		t.Fatalf("unexpected contact after update: email=%v phone=%v", updated.Email, updated.Phone)
	}
}

func TestUpdateRejectsInvalidValues(t *testing.T) {
	lead := sampleLead()
	svc := New(newFakeStore(lead), events.NewInMemoryBus(logger.Nop()))

	cases := []UpdateInput{
		{Email: strPtr("not-an-email")},
		{Phone: strPtr("123")},
		{Status: strPtr("archivado")},
		{Name: strPtr("   ")},
	}
	for _, in := range cases {
		if _, err := svc.Update(context.Background(), lead.ID, in, nil); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
}

func TestUpdateStatusRecordsActivityAndEvent(t *testing.T) {
	lead := sampleLead()
	store := newFakeStore(lead)
	bus := events.NewInMemoryBus(logger.Nop())
	var got events.LeadStatusChanged
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		got = e.(events.LeadStatusChanged)
		return nil
	}))
	svc := New(store, bus)
	actor := uuid.New()

	if _, err := svc.Update(context.Background(), lead.ID, UpdateInput{Status: strPtr(repository.StatusContacted)}, &actor); err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	bus.Wait()

	activities := store.activities[lead.ID]
	if len(activities) != 1 || activities[0].Kind != repository.ActivityStatusChange || *activities[0].ActorID != actor {
		t.Fatalf("expected one status_change activity, got %+v", activities)
	}
	if got.OldStatus != repository.StatusNew || got.NewStatus != repository.StatusContacted {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestMarkQualifiedIsIdempotent(t *testing.T) {
	lead := sampleLead()
	store := newFakeStore(lead)
	svc := New(store, events.NewInMemoryBus(logger.Nop()))

	for range 2 {
		if err := svc.MarkQualified(context.Background(), lead.ID); err != nil {
			t.Fatalf(fmtUnexpectedErr, err)
		}
	}
	if store.leads[lead.ID].Status != repository.StatusQualified {
		t.Fatalf("expected valido, got %s", store.leads[lead.ID].Status)
	}
	if n := len(store.activities[lead.ID]); n != 1 {
		t.Fatalf("expected a single status change entry, got %d", n)
	}
}

func TestAddActivityValidates(t *testing.T) {
	lead := sampleLead()
	svc := New(newFakeStore(lead), events.NewInMemoryBus(logger.Nop()))
	ctx := context.Background()

	if _, err := svc.AddActivity(ctx, lead.ID, repository.ActivitySystem, "x", nil); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("system entries are not staff-writable, got %v", err)
	}
	if _, err := svc.AddActivity(ctx, lead.ID, repository.ActivityCall, "  ", nil); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected empty summary to fail, got %v", err)
	}
	if _, err := svc.AddActivity(ctx, uuid.New(), repository.ActivityCall, "Llamada sin respuesta", nil); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	a, err := svc.AddActivity(ctx, lead.ID, repository.ActivityCall, "Llamada sin respuesta", nil)
	if err != nil || a.Kind != repository.ActivityCall {
		t.Fatalf("unexpected result %+v, %v", a, err)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := New(newFakeStore(), events.NewInMemoryBus(logger.Nop()))
	if _, err := svc.Get(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
