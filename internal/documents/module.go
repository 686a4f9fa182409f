// Package documents provides file attachments for leads and cases.
package documents

import (
	"legal_intake_backend/internal/adapters/storage"
	"legal_intake_backend/internal/documents/handler"
	"legal_intake_backend/internal/documents/repository"
	"legal_intake_backend/internal/documents/service"
	apphttp "legal_intake_backend/internal/http"
	"legal_intake_backend/platform/logger"
	"legal_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the documents bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the documents service. The bucket must already exist.
func NewModule(pool *pgxpool.Pool, objects storage.ObjectStore, owners service.OwnerChecker, bucket string, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), objects, owners, bucket, log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "documents"
}

// RegisterRoutes mounts document routes under the admin lead and case paths.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/leads/:id/documents"), repository.OwnerLead)
	m.handler.RegisterRoutes(ctx.Admin.Group("/cases/:id/documents"), repository.OwnerCase)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
