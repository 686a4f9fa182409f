package service

import (
	"context"
	"strings"

	"legal_intake_backend/internal/search/repository"
	"legal_intake_backend/internal/search/transport"
	"legal_intake_backend/platform/apperr"
)

const defaultLimit = 10

type Store interface {
	Search(ctx context.Context, query string, limit int) ([]repository.SearchResult, error)
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Search(ctx context.Context, req transport.SearchRequest) (*transport.SearchResponse, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return &transport.SearchResponse{Items: []transport.SearchResultItem{}, Total: 0}, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	results, err := s.store.Search(ctx, q, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "search failed", err).WithOp("search.Search")
	}

	total := 0
	if len(results) > 0 {
		total = int(results[0].Total)
	}

	items := make([]transport.SearchResultItem, len(results))
	for i, r := range results {
		items[i] = transport.SearchResultItem{
			ID:           r.ID.String(),
			Type:         r.Type,
			Title:        r.Title,
			Subtitle:     r.Subtitle,
			Preview:      r.Preview,
			Status:       r.Status,
			Link:         buildFrontendLink(r.Type, r.ID.String()),
			Score:        float64(r.Score),
			MatchedField: r.MatchedField,
			CreatedAt:    r.CreatedAt,
		}
	}

	return &transport.SearchResponse{Items: items, Total: total}, nil
}

func buildFrontendLink(entityType, id string) string {
	switch entityType {
	case "lead":
		return "/leads/" + id
	case "case":
		return "/cases/" + id
	default:
		return "/"
	}
}
