package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"legal_intake_backend/internal/search/repository"
	"legal_intake_backend/internal/search/transport"
	"legal_intake_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	query   string
	limit   int
	results []repository.SearchResult
	err     error
}

func (f *fakeStore) Search(_ context.Context, query string, limit int) ([]repository.SearchResult, error) {
	f.query = query
	f.limit = limit
	return f.results, f.err
}

func TestSearchBlankQuerySkipsStore(t *testing.T) {
	store := &fakeStore{}
	resp, err := New(store).Search(context.Background(), transport.SearchRequest{Query: "   "})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if store.query != "" || resp.Total != 0 || len(resp.Items) != 0 {
		t.Fatalf("expected empty response without store call")
	}
}

func TestSearchMapsResultsAndLinks(t *testing.T) {
	leadID := uuid.New()
	caseID := uuid.New()
	store := &fakeStore{results: []repository.SearchResult{
		{ID: leadID, Type: "lead", Title: "Ana Pérez", Score: 0.8, CreatedAt: time.Now(), Total: 2},
		{ID: caseID, Type: "case", Title: "C-XYZ234", Score: 0.2, CreatedAt: time.Now(), Total: 2},
	}}

	resp, err := New(store).Search(context.Background(), transport.SearchRequest{Query: " ana "})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if store.query != "ana" || store.limit != defaultLimit {
		t.Fatalf("unexpected store call %q/%d", store.query, store.limit)
	}
	if resp.Total != 2 || len(resp.Items) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Items[0].Link != "/leads/"+leadID.String() || resp.Items[1].Link != "/cases/"+caseID.String() {
		t.Fatalf("unexpected links %q %q", resp.Items[0].Link, resp.Items[1].Link)
	}
}

func TestSearchStoreFailureIsInternal(t *testing.T) {
	store := &fakeStore{err: errors.New("boom")}
	_, err := New(store).Search(context.Background(), transport.SearchRequest{Query: "ana"})
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
