package handler

import (
	"net/http"
	"strings"

	"legal_intake_backend/internal/leads/ingestion"
	"legal_intake_backend/internal/leads/repository"
	"legal_intake_backend/internal/leads/transport"
	"legal_intake_backend/platform/httpkit"
	"legal_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the anonymous intake form.
type PublicHandler struct {
	ingestion *ingestion.Service
	val       *validator.Validator
}

func NewPublicHandler(ing *ingestion.Service, val *validator.Validator) *PublicHandler {
	return &PublicHandler{ingestion: ing, val: val}
}

func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
}

// Create stores a form lead. A candidate without a name or a valid
// contact method is answered with 400 and the rejection reason.
func (h *PublicHandler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
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
	}, ingestion.Provenance{Source: repository.SourceForm, Channel: publicChannel(req.Channel)})
	if httpkit.HandleError(c, err) {
		return
	}
	if result.Status == ingestion.StatusRejected {
		httpkit.Error(c, http.StatusBadRequest, result.Reason, nil)
		return
	}

	httpkit.Created(c, transport.CreateLeadResponse{ID: result.LeadID, ShortCode: result.ShortCode, Status: result.Status})
}

// publicChannel keeps the channels an anonymous form may claim. Anything
// else is left blank and ingestion falls back to landing.
func publicChannel(raw string) string {
	switch raw = strings.ToLower(strings.TrimSpace(raw)); raw {
	case "":
		return repository.ChannelForm
	case repository.ChannelForm, repository.ChannelLanding:
		return raw
	}
	return ""
}
