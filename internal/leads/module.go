// Package leads provides the lead intake and triage bounded context module.
package leads

import (
	"legal_intake_backend/internal/events"
	apphttp "legal_intake_backend/internal/http"
	"legal_intake_backend/internal/leads/handler"
	"legal_intake_backend/internal/leads/ingestion"
	"legal_intake_backend/internal/leads/management"
	"legal_intake_backend/internal/leads/repository"
	"legal_intake_backend/platform/logger"
	"legal_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	repo          *repository.Repository
	ingestion     *ingestion.Service
	management    *management.Service
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
}

// NewModule wires ingestion and triage. tracker may be nil, in which case
// conversation dedup is kept in process memory.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, tracker ingestion.SessionTracker, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	ingestSvc := ingestion.New(repo, tracker, eventBus, log)
	mgmtSvc := management.New(repo, eventBus)

	return &Module{
		repo:          repo,
		ingestion:     ingestSvc,
		management:    mgmtSvc,
		handler:       handler.New(mgmtSvc, ingestSvc, val),
		publicHandler: handler.NewPublicHandler(ingestSvc, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// IngestionService returns the ingestion service for other intake paths.
func (m *Module) IngestionService() *ingestion.Service {
	return m.ingestion
}

// ManagementService returns the triage service for external use.
func (m *Module) ManagementService() *management.Service {
	return m.management
}

// Repository returns the leads repository for read adapters.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the public form endpoint and admin triage routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.publicHandler.RegisterRoutes(ctx.V1.Group("/leads", ctx.PublicRateLimiter.RateLimit()))
	m.handler.RegisterRoutes(ctx.Admin.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
