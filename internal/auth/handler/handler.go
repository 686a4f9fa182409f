package handler

import (
	"net/http"
	"time"

	"legal_intake_backend/internal/auth/repository"
	"legal_intake_backend/internal/auth/service"
	"legal_intake_backend/internal/auth/transport"
	"legal_intake_backend/platform/config"
	"legal_intake_backend/platform/httpkit"
	"legal_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	cookiePath          = "/"
)

type Handler struct {
	svc *service.Service
	cfg config.AuthConfig
	val *validator.Validator
}

func New(svc *service.Service, cfg config.AuthConfig, val *validator.Validator) *Handler {
	return &Handler{svc: svc, cfg: cfg, val: val}
}

func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	session, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	h.setSessionCookie(c, session.AccessToken, int(time.Until(session.ExpiresAt)/time.Second))
	httpkit.OK(c, transport.LoginResponse{
		AccessToken: session.AccessToken,
		ExpiresAt:   session.ExpiresAt,
		User:        toStaffResponse(session.User),
	})
}

// Logout clears the session cookie. Access tokens are stateless and stay
// valid until they expire.
func (h *Handler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	httpkit.OK(c, gin.H{"message": "signed out"})
}

func (h *Handler) Me(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	user, err := h.svc.Me(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toStaffResponse(user))
}

// ListStaff backs the assignee picker in case triage.
func (h *Handler) ListStaff(c *gin.Context) {
	users, err := h.svc.ListStaff(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	resp := transport.StaffListResponse{Items: make([]transport.StaffResponse, 0, len(users))}
	for _, u := range users {
		resp.Items = append(resp.Items, toStaffResponse(u))
	}
	httpkit.OK(c, resp)
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(h.cfg.GetSessionCookieSameSite())
	c.SetCookie(
		h.cfg.GetSessionCookieName(),
		value,
		maxAge,
		cookiePath,
		h.cfg.GetSessionCookieDomain(),
		h.cfg.GetSessionCookieSecure(),
		true,
	)
}

func toStaffResponse(u repository.StaffUser) transport.StaffResponse {
	return transport.StaffResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
	}
}
