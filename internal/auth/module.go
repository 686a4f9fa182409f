// Package auth provides staff authentication for the admin console.
package auth

import (
	"legal_intake_backend/internal/auth/handler"
	"legal_intake_backend/internal/auth/repository"
	"legal_intake_backend/internal/auth/service"
	apphttp "legal_intake_backend/internal/http"
	"legal_intake_backend/platform/config"
	"legal_intake_backend/platform/logger"
	"legal_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), cfg, log)
	return &Module{
		handler: handler.New(svc, cfg, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.POST("/login", ctx.AuthRateLimiter.RateLimit(), m.handler.Login)
	authGroup.POST("/logout", m.handler.Logout)
	authGroup.GET("/me", ctx.AuthMiddleware, m.handler.Me)

	ctx.Admin.GET("/staff", m.handler.ListStaff)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
