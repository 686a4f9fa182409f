package handler

import (
	"net/http"

	"legal_intake_backend/internal/leads/ingestion"
	"legal_intake_backend/internal/leads/management"
	"legal_intake_backend/internal/leads/repository"
	"legal_intake_backend/internal/leads/transport"
	"legal_intake_backend/platform/httpkit"
	"legal_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler serves staff lead triage.
type Handler struct {
	mgmt      *management.Service
	ingestion *ingestion.Service
	val       *validator.Validator
}

func New(mgmt *management.Service, ing *ingestion.Service, val *validator.Validator) *Handler {
	return &Handler{mgmt: mgmt, ingestion: ing, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.CreateManual)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.POST("/:id/activities", h.AddActivity)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.mgmt.List(c.Request.Context(), management.ListFilter{
		Status:   req.Status,
		Channel:  req.Channel,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.LeadListResponse{
		Items:    make([]transport.LeadResponse, 0, len(result.Items)),
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	}
	for _, lead := range result.Items {
		resp.Items = append(resp.Items, toLeadResponse(lead))
	}
	httpkit.OK(c, resp)
}

// CreateManual records a lead taken over the phone or at the front desk.
func (h *Handler) CreateManual(c *gin.Context) {
	var req transport.CreateManualLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.ingestion.Ingest(c.Request.Context(), ingestion.Candidate{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Matter: req.Matter,
	}, ingestion.Provenance{Source: repository.SourceForm, Channel: repository.ChannelManual})
	if httpkit.HandleError(c, err) {
		return
	}
	if result.Status == ingestion.StatusRejected {
		httpkit.Error(c, http.StatusBadRequest, result.Reason, nil)
		return
	}
	httpkit.Created(c, transport.CreateLeadResponse{ID: result.LeadID, ShortCode: result.ShortCode, Status: result.Status})
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

	resp := transport.LeadDetailResponse{
		LeadResponse: toLeadResponse(detail.Lead),
		Activities:   make([]transport.ActivityResponse, 0, len(detail.Activities)),
	}
	for _, a := range detail.Activities {
		resp.Activities = append(resp.Activities, toActivityResponse(a))
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	lead, err := h.mgmt.Update(c.Request.Context(), id, management.UpdateInput{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Matter: req.Matter,
		Status: req.Status,
		Notes:  req.Notes,
	}, httpkit.ActorID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toLeadResponse(lead))
}

func (h *Handler) AddActivity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.AddActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	activity, err := h.mgmt.AddActivity(c.Request.Context(), id, req.Kind, req.Summary, httpkit.ActorID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toActivityResponse(activity))
}
