package httpkit

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"legal_intake_backend/platform/apperr"
	"legal_intake_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const testSecret = "test-secret"

type jwtCfg struct{}

func (jwtCfg) GetJWTAccessSecret() string   { return testSecret }
func (jwtCfg) GetSessionCookieName() string { return "admin_session" }

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AuthRequired(jwtCfg{}), RequireRole("admin"), func(c *gin.Context) {
		OK(c, gin.H{"user": GetIdentity(c).UserID().String()})
	})
	return r
}

func TestAuthRequiredAcceptsCookieAndBearer(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, jwt.MapClaims{
		"sub":   userID.String(),
		"type":  "access",
		"roles": []string{"admin"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	r := newAuthEngine()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "admin_session", Value: token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("cookie auth: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("bearer auth: expected 200, got %d", rec.Code)
	}
}

func TestAuthRequiredRejectsWrongTokenTypeAndMissingRole(t *testing.T) {
	r := newAuthEngine()

	refresh := signToken(t, jwt.MapClaims{"sub": uuid.NewString(), "type": "refresh", "roles": []string{"admin"}})
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-access token, got %d", rec.Code)
	}

	staff := signToken(t, jwt.MapClaims{"sub": uuid.NewString(), "type": "access", "roles": []string{"staff"}})
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+staff)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without admin role, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestIPRateLimiterIsPerIP(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.001), 2, nil)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	if !limiter.Allow("1.1.1.1") || !limiter.Allow("1.1.1.1") {
		t.Fatalf("expected burst of 2 to be allowed")
	}
	if limiter.Allow("1.1.1.1") {
		t.Fatalf("expected third request to be limited")
	}
	if !limiter.Allow("2.2.2.2") {
		t.Fatalf("expected other IP to have its own bucket")
	}
}

func TestHandleErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		want int
	}{
		{apperr.NotFound("lead not found"), http.StatusNotFound},
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.Unavailable("provider down"), http.StatusServiceUnavailable},
		{http.ErrBodyNotAllowed, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		HandleError(c, tc.err)
		if rec.Code != tc.want {
			t.Fatalf("HandleError(%v) status = %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

func TestRequestLoggerTagsRequestsAndLogsServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(logger.NewWithWriter("production", &buf)))
	r.GET("/boom", func(c *gin.Context) {
		HandleError(c, errors.New("db down"))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "req-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
	logged := buf.String()
	if !strings.Contains(logged, `"request_id":"req-123"`) || !strings.Contains(logged, "http_error") || !strings.Contains(logged, "db down") {
		t.Fatalf("unexpected log output: %s", logged)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if _, err := uuid.Parse(w.Header().Get(RequestIDHeader)); err != nil {
		t.Fatalf("expected generated request id, got %q", w.Header().Get(RequestIDHeader))
	}
}
