// Package cases provides the case bounded context: promotion of leads into
// cases, case triage and the litigation timeline.
package cases

import (
	"legal_intake_backend/internal/cases/handler"
	"legal_intake_backend/internal/cases/management"
	"legal_intake_backend/internal/cases/promotion"
	"legal_intake_backend/internal/cases/repository"
	"legal_intake_backend/internal/events"
	apphttp "legal_intake_backend/internal/http"
	"legal_intake_backend/platform/logger"
	"legal_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the cases bounded context module implementing http.Module.
type Module struct {
	repo      *repository.Repository
	promotion *promotion.Service
	handler   *handler.Handler
}

// NewModule wires the case services. leads gives promotion access to the
// leads context without importing it.
func NewModule(pool *pgxpool.Pool, leads promotion.LeadReader, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	promo := promotion.New(repo, leads, eventBus, log)
	mgmt := management.New(repo)

	return &Module{
		repo:      repo,
		promotion: promo,
		handler:   handler.New(promo, mgmt, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "cases"
}

// PromotionService exposes promotion to the CLI.
func (m *Module) PromotionService() *promotion.Service {
	return m.promotion
}

// Repository returns the case repository for document ownership checks.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts admin case routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/cases"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
