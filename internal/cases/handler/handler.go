package handler

import (
	"net/http"

	"legal_intake_backend/internal/cases/management"
	"legal_intake_backend/internal/cases/promotion"
	"legal_intake_backend/internal/cases/repository"
	"legal_intake_backend/internal/cases/transport"
	"legal_intake_backend/platform/httpkit"
	"legal_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	promotion *promotion.Service
	mgmt      *management.Service
	val       *validator.Validator
}

func New(promo *promotion.Service, mgmt *management.Service, val *validator.Validator) *Handler {
	return &Handler{promotion: promo, mgmt: mgmt, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Promote)
	rg.GET("/event-types", h.EventTypes)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.GET("/:id/events", h.ListEvents)
	rg.POST("/:id/events", h.AddEvent)
}

// Promote opens a case for a lead: 201 when created, 200 when the lead
// already had one.
func (h *Handler) Promote(c *gin.Context) {
	var req transport.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.promotion.Promote(c.Request.Context(), req.LeadID)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.PromoteResponse{CaseID: result.CaseID, ShortCode: result.ShortCode, Created: result.Created}
	if result.Created {
		httpkit.Created(c, resp)
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListCasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	filter := management.ListFilter{Status: req.Status, Search: req.Search, Page: req.Page, PageSize: req.PageSize}
	if req.AssignedTo != "" {
		assignee := uuid.MustParse(req.AssignedTo)
		filter.AssignedTo = &assignee
	}

	result, err := h.mgmt.List(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.CaseListResponse{
		Items:    make([]transport.CaseResponse, 0, len(result.Items)),
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	}
	for _, item := range result.Items {
		resp.Items = append(resp.Items, toCaseResponse(item))
	}
	httpkit.OK(c, resp)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	detail, err := h.mgmt.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.CaseDetailResponse{
		CaseResponse: toCaseResponse(detail.Case),
		Events:       make([]transport.EventResponse, 0, len(detail.Events)),
	}
	for _, ev := range detail.Events {
		resp.Events = append(resp.Events, toEventResponse(ev))
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	updated, err := h.mgmt.Update(c.Request.Context(), id, management.UpdateInput{
		Status:        req.Status,
		AssignedTo:    req.AssignedTo,
		ClearAssignee: req.Unassign,
		Description:   req.Description,
		InternalNote:  req.InternalNote,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toCaseResponse(repository.ListItem{Case: updated}))
}

func (h *Handler) ListEvents(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	evs, err := h.mgmt.ListEvents(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	items := make([]transport.EventResponse, 0, len(evs))
	for _, ev := range evs {
		items = append(items, toEventResponse(ev))
	}
	httpkit.OK(c, gin.H{"items": items})
}

func (h *Handler) AddEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.AddEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	ev, err := h.mgmt.AddEvent(c.Request.Context(), id, management.EventInput{
		Type:      req.Type,
		Detail:    req.Detail,
		EventDate: req.EventDate,
		Data:      req.Data,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toEventResponse(ev))
}

func (h *Handler) EventTypes(c *gin.Context) {
	httpkit.OK(c, gin.H{"items": repository.EventTypes()})
}

func toCaseResponse(item repository.ListItem) transport.CaseResponse {
	return transport.CaseResponse{
		ID:            item.ID,
		ShortCode:     item.ShortCode,
		LeadID:        item.LeadID,
		LeadShortCode: item.LeadShortCode,
		LeadName:      item.LeadName,
		AssignedTo:    item.AssignedTo,
		Status:        item.Status,
		Description:   item.Description,
		InternalNote:  item.InternalNote,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func toEventResponse(ev repository.Event) transport.EventResponse {
	return transport.EventResponse{
		ID:        ev.ID,
		Type:      ev.Type,
		Detail:    ev.Detail,
		Data:      ev.Data,
		EventDate: ev.EventDate,
		CreatedAt: ev.CreatedAt,
	}
}
