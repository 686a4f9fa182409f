// Package search gives staff one box to find leads and cases by name,
// contact, short code or free text.
package search

import (
	apphttp "legal_intake_backend/internal/http"
	"legal_intake_backend/internal/search/handler"
	"legal_intake_backend/internal/search/repository"
	"legal_intake_backend/internal/search/service"
	"legal_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	svc := service.New(repository.New(pool))
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string {
	return "search"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/search"))
}

var _ apphttp.Module = (*Module)(nil)
