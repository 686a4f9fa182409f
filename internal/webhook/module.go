// Package webhook accepts lead submissions from the firm's landing pages.
package webhook

import (
	apphttp "legal_intake_backend/internal/http"
	"legal_intake_backend/platform/config"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	keys    []string
}

// NewModule creates the webhook module. leads is usually an adapter over
// lead ingestion.
func NewModule(cfg config.WebhookConfig, leads LeadCreator) *Module {
	return &Module{handler: NewHandler(leads), keys: cfg.GetWebhookAPIKeys()}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts webhook routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	webhookGroup := ctx.V1.Group("/webhook")
	webhookGroup.Use(ctx.PublicRateLimiter.RateLimit(), APIKeyAuthMiddleware(m.keys))
	webhookGroup.POST("/forms", m.handler.HandleFormSubmission)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
