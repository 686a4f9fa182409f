package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"legal_intake_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	errInvalidBody   = "unable to parse form data"
	errEmptyForm     = "no form data received"
	errIncomplete    = "incomplete submission"
	maxBodyBytes     = 1 << 20
	maxMultipartSize = 1 << 20
)

// LeadInput is a landing-page submission reduced to lead fields.
type LeadInput struct {
	Name   string
	Email  string
	Phone  string
	Matter string
}

// LeadResult reports what lead ingestion did with a submission.
type LeadResult struct {
	LeadID    uuid.UUID
	ShortCode string
	// Rejected is set when the candidate failed contact validation.
	Rejected bool
	Reason   string
}

// LeadCreator turns a submission into a lead.
type LeadCreator interface {
	CreateLandingLead(ctx context.Context, input LeadInput) (LeadResult, error)
}

// SubmissionResponse is returned for accepted submissions.
type SubmissionResponse struct {
	ID        uuid.UUID `json:"id"`
	ShortCode string    `json:"shortCode"`
}

// Handler handles webhook HTTP requests.
type Handler struct {
	leads LeadCreator
}

// NewHandler creates a new webhook handler.
func NewHandler(leads LeadCreator) *Handler {
	return &Handler{leads: leads}
}

// HandleFormSubmission processes an inbound landing-page form.
// POST /api/v1/webhook/forms
func (h *Handler) HandleFormSubmission(c *gin.Context) {
	fields, ok := parseFields(c)
	if !ok {
		return
	}

	extracted := ExtractFields(fields)
	if missing := extracted.Missing(); len(missing) > 0 {
		httpkit.Error(c, http.StatusBadRequest, errIncomplete, gin.H{"missing": missing})
		return
	}

	result, err := h.leads.CreateLandingLead(c.Request.Context(), LeadInput{
		Name:   extracted.Name,
		Email:  extracted.Email,
		Phone:  extracted.Phone,
		Matter: extracted.Matter,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	if result.Rejected {
		httpkit.Error(c, http.StatusBadRequest, errIncomplete, gin.H{"reason": result.Reason})
		return
	}

	httpkit.Created(c, SubmissionResponse{ID: result.LeadID, ShortCode: result.ShortCode})
}

// parseFields reads a JSON object or a url-encoded/multipart form into a
// flat map. Only the first value of a repeated form field is kept.
func parseFields(c *gin.Context) (map[string]string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var (
		fields map[string]string
		err    error
	)
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		fields, err = jsonFields(c.Request.Body)
	} else {
		fields, err = formFields(c.Request)
	}
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidBody, nil)
		return nil, false
	}
	if len(fields) == 0 {
		httpkit.Error(c, http.StatusBadRequest, errEmptyForm, nil)
		return nil, false
	}
	return fields, true
}

func jsonFields(body io.Reader) (map[string]string, error) {
	var raw map[string]any
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case float64:
			// Phone numbers typed into numeric inputs arrive as numbers.
			fields[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			fields[key] = strconv.FormatBool(v)
		}
	}
	return fields, nil
}

func formFields(r *http.Request) (map[string]string, error) {
	if err := r.ParseMultipartForm(maxMultipartSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	if r.PostForm == nil {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
	}

	fields := make(map[string]string)
	if r.MultipartForm != nil {
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}
	}
	for key, values := range r.PostForm {
		if _, exists := fields[key]; !exists && len(values) > 0 {
			fields[key] = values[0]
		}
	}
	return fields, nil
}
