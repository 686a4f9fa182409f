package promotion

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"legal_intake_backend/internal/cases/repository"
	"legal_intake_backend/internal/events"
	"legal_intake_backend/platform/apperr"
	"legal_intake_backend/platform/logger"

	"github.com/google/uuid"
)

const fmtUnexpectedErr = "unexpected error: %v"

// fakeCases enforces one case per lead the way the unique index does.
type fakeCases struct {
	mu      sync.Mutex
	byLead  map[uuid.UUID]repository.Case
	intakes map[uuid.UUID][]repository.NewEvent
	// hideOnFirstRead makes the first GetByLeadID miss even when a case
	// exists, reproducing a promotion that lost the race after its check.
	hideOnFirstRead bool
	createErr       error
}

func newFakeCases() *fakeCases {
	return &fakeCases{byLead: map[uuid.UUID]repository.Case{}, intakes: map[uuid.UUID][]repository.NewEvent{}}
}

func (f *fakeCases) GetByLeadID(_ context.Context, leadID uuid.UUID) (repository.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hideOnFirstRead {
		f.hideOnFirstRead = false
		return repository.Case{}, repository.ErrNotFound
	}
	c, ok := f.byLead[leadID]
	if !ok {
		return repository.Case{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeCases) CreateWithIntakeEvent(_ context.Context, leadID uuid.UUID, description string, intake repository.NewEvent) (repository.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return repository.Case{}, f.createErr
	}
	if _, exists := f.byLead[leadID]; exists {
		return repository.Case{}, repository.ErrLeadHasCase
	}
	c := repository.Case{ID: uuid.New(), ShortCode: "C-ABCDEF", LeadID: leadID, Status: repository.StatusNew, Description: description}
	f.byLead[leadID] = c
	f.intakes[c.ID] = append(f.intakes[c.ID], intake)
	return c, nil
}

type fakeLeads struct {
	leads     map[uuid.UUID]Lead
	qualified atomic.Int32
}

func (f *fakeLeads) GetLead(_ context.Context, id uuid.UUID) (Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return Lead{}, ErrLeadNotFound
	}
	return l, nil
}

func (f *fakeLeads) MarkQualified(context.Context, uuid.UUID) error {
	f.qualified.Add(1)
	return nil
}

func setup() (*Service, *fakeCases, *fakeLeads, *events.InMemoryBus, uuid.UUID) {
	leadID := uuid.New()
	leads := &fakeLeads{leads: map[uuid.UUID]Lead{
		leadID: {ID: leadID, ShortCode: "L-QWERTY", Name: "Ana", Matter: "Despido injustificado"},
	}}
	cases := newFakeCases()
	bus := events.NewInMemoryBus(logger.Nop())
	return New(cases, leads, bus, logger.Nop()), cases, leads, bus, leadID
}

func TestPromoteUnknownLead(t *testing.T) {
	svc, _, _, _, _ := setup()
	if _, err := svc.Promote(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPromoteCreatesOnceThenReturnsExisting(t *testing.T) {
	svc, cases, leads, bus, leadID := setup()
	var promoted atomic.Int32
	bus.Subscribe(events.CasePromoted{}.EventName(), events.HandlerFunc(func(context.Context, events.Event) error {
		promoted.Add(1)
		return nil
	}))

	first, err := svc.Promote(context.Background(), leadID)
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	second, err := svc.Promote(context.Background(), leadID)
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	bus.Wait()

	if !first.Created || second.Created || first.CaseID != second.CaseID {
		t.Fatalf("expected created then existing for the same case, got %+v and %+v", first, second)
	}
	intakes := cases.intakes[first.CaseID]
	if len(intakes) != 1 || intakes[0].Type != repository.EventIntake {
		t.Fatalf("expected exactly one ingreso event, got %+v", intakes)
	}
	if cases.byLead[leadID].Description != "Despido injustificado" {
		t.Fatalf("expected description seeded from the lead matter")
	}
	if leads.qualified.Load() < 1 {
		t.Fatalf("expected lead to be marked valido")
	}
	if promoted.Load() != 1 {
		t.Fatalf("expected one CasePromoted event, got %d", promoted.Load())
	}
}

func TestPromoteLosingRaceReturnsWinner(t *testing.T) {
	svc, cases, _, _, leadID := setup()
	winner, err := svc.Promote(context.Background(), leadID)
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}

	cases.hideOnFirstRead = true
	res, err := svc.Promote(context.Background(), leadID)
	if err != nil {
		t.Fatalf(fmtUnexpectedErr, err)
	}
	if res.Created || res.CaseID != winner.CaseID {
		t.Fatalf("expected the existing case after a conflict, got %+v", res)
	}
}

func TestPromoteConcurrentCallsCreateOneCase(t *testing.T) {
	svc, cases, _, _, leadID := setup()

	const callers = 16
	var wg sync.WaitGroup
	results := make([]Result, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Promote(context.Background(), leadID)
		}(i)
	}
	wg.Wait()

	created := 0
	for i := range callers {
		if errs[i] != nil {
			t.Fatalf(fmtUnexpectedErr, errs[i])
		}
		if results[i].Created {
			created++
		}
		if results[i].CaseID != results[0].CaseID {
			t.Fatalf("all callers must see the same case")
		}
	}
	if created != 1 || len(cases.byLead) != 1 {
		t.Fatalf("expected exactly one created case, got %d", created)
	}
}

func TestPromoteStoreFailure(t *testing.T) {
	svc, cases, _, _, leadID := setup()
	cases.createErr = errors.New("connection reset")

	if _, err := svc.Promote(context.Background(), leadID); !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
