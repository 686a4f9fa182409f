// Package chat provides the conversational intake bounded context: the
// public widget endpoint and staff transcript review.
package chat

import (
	"legal_intake_backend/internal/chat/handler"
	"legal_intake_backend/internal/chat/policy"
	"legal_intake_backend/internal/chat/repository"
	"legal_intake_backend/internal/chat/service"
	apphttp "legal_intake_backend/internal/http"
	"legal_intake_backend/platform/ai/openaicompat"
	"legal_intake_backend/platform/config"
	"legal_intake_backend/platform/logger"
	"legal_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the chat bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the conversation store, completion provider and policy.
// Ingestion is injected so the chat context never imports leads.
func NewModule(pool *pgxpool.Pool, leads service.LeadIngester, cfg config.ChatConfig, val *validator.Validator, log *logger.Logger) (*Module, error) {
	pol, err := policy.Load(cfg.GetChatPolicyPath())
	if err != nil {
		return nil, err
	}

	llm := openaicompat.NewModel(openaicompat.Config{
		APIKey:  cfg.GetLLMAPIKey(),
		BaseURL: cfg.GetLLMBaseURL(),
		Model:   cfg.GetLLMModel(),
	})

	svc := service.New(
		repository.New(pool),
		service.NewLLMCompleter(llm),
		leads,
		pol,
		log,
		service.Options{ProviderTimeout: cfg.GetChatProviderTimeout()},
	)

	return &Module{
		handler: handler.New(svc, val),
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "chat"
}

// RegisterRoutes mounts the public widget endpoint and admin transcript routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.V1.Group("/chat", ctx.PublicRateLimiter.RateLimit()))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/conversations"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
