package handler

import (
	"net/http"

	"legal_intake_backend/internal/chat/service"
	"legal_intake_backend/internal/chat/transport"
	"legal_intake_backend/platform/httpkit"
	"legal_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	defaultPageSize     = 20
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPublicRoutes mounts the widget endpoint.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/turns", h.Turn)
}

// RegisterAdminRoutes mounts transcript review endpoints.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.UpdateStatus)
}

func (h *Handler) Turn(c *gin.Context) {
	var req transport.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.HandleTurn(c.Request.Context(), req.ConversationID, req.Message)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.TurnResponse{
		Reply:          result.Reply,
		ConversationID: result.ConversationID,
		Outcome:        result.Outcome,
		Stage:          string(result.Stage),
	}
	if result.Lead != nil {
		leadID := result.Lead.LeadID
		resp.LeadID = &leadID
		resp.LeadShortCode = result.Lead.ShortCode
		resp.LeadStatus = result.Lead.Status
	}
	httpkit.OK(c, resp)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListConversationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = defaultPageSize
	}

	var status *string
	if req.Status != "" {
		status = &req.Status
	}

	items, total, err := h.svc.List(c.Request.Context(), status, req.PageSize, (req.Page-1)*req.PageSize)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.ConversationListResponse{
		Items:    make([]transport.ConversationSummaryResponse, 0, len(items)),
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, transport.ConversationSummaryResponse{
			ID:           item.ID,
			Status:       item.Status,
			LeadID:       item.LeadID,
			MessageCount: item.MessageCount,
			CreatedAt:    item.CreatedAt,
			UpdatedAt:    item.UpdatedAt,
		})
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	view, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	messages := make([]transport.MessageResponse, 0, len(view.Messages))
	for _, msg := range view.Messages {
		item := transport.MessageResponse{Role: msg.Role, Content: msg.Content}
		if !msg.At.IsZero() {
			at := msg.At
			item.At = &at
		}
		messages = append(messages, item)
	}

	httpkit.OK(c, transport.ConversationResponse{
		ID:        view.ID,
		Status:    view.Status,
		Stage:     string(view.Stage),
		LeadID:    view.LeadID,
		Messages:  messages,
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
	})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateConversationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	if err := h.svc.SetStatus(c.Request.Context(), id, req.Status); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"id": id, "status": req.Status})
}
