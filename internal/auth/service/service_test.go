package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"legal_intake_backend/internal/auth/repository"
	"legal_intake_backend/platform/apperr"
	"legal_intake_backend/platform/httpkit"
	"legal_intake_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	testSecret    = "test-secret"
	testPassword  = "correct horse battery"
	msgUnexpected = "unexpected error: %v"
	msgWantKind   = "expected kind %v, got %v (%v)"
)

type authCfg struct{}

func (authCfg) GetJWTAccessSecret() string              { return testSecret }
func (authCfg) GetSessionCookieName() string            { return "admin_session" }
func (authCfg) GetAccessTokenTTL() time.Duration        { return time.Hour }
func (authCfg) GetSessionCookieDomain() string          { return "" }
func (authCfg) GetSessionCookieSecure() bool            { return false }
func (authCfg) GetSessionCookieSameSite() http.SameSite { return http.SameSiteLaxMode }

type fakeStaff struct {
	users map[string]repository.StaffUser
}

func newFakeStaff() *fakeStaff {
	return &fakeStaff{users: map[string]repository.StaffUser{}}
}

func (f *fakeStaff) Create(_ context.Context, email, hash, name, role string) (repository.StaffUser, error) {
	if _, ok := f.users[email]; ok {
		return repository.StaffUser{}, repository.ErrEmailTaken
	}
	u := repository.StaffUser{ID: uuid.New(), Email: email, PasswordHash: hash, DisplayName: name, Role: role, CreatedAt: time.Now()}
	f.users[email] = u
	return u, nil
}

func (f *fakeStaff) GetByEmail(_ context.Context, email string) (repository.StaffUser, error) {
	u, ok := f.users[email]
	if !ok {
		return repository.StaffUser{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeStaff) GetByID(_ context.Context, id uuid.UUID) (repository.StaffUser, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return repository.StaffUser{}, repository.ErrNotFound
}

func (f *fakeStaff) List(context.Context) ([]repository.StaffUser, error) {
	out := make([]repository.StaffUser, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := New(newFakeStaff(), authCfg{}, logger.Nop())
	if _, err := svc.CreateStaff(context.Background(), CreateStaffInput{
		Email: " Abogada@Estudio.CL ", DisplayName: "Abogada", Password: testPassword, Role: httpkit.RoleAdmin,
	}); err != nil {
		t.Fatalf(msgUnexpected, err)
	}
	return svc
}

func TestLoginIssuesAccessToken(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.Login(context.Background(), "abogada@estudio.cl", testPassword)
	if err != nil {
		t.Fatalf(msgUnexpected, err)
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(session.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims["type"] != "access" || claims["sub"] != session.User.ID.String() {
		t.Fatalf("unexpected claims %v", claims)
	}
	roles, _ := claims["roles"].([]interface{})
	if len(roles) != 2 {
		t.Fatalf("expected admin to carry staff and admin roles, got %v", claims["roles"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "abogada@estudio.cl", "wrong password!"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf(msgWantKind, apperr.KindUnauthorized, apperr.GetKind(err), err)
	}
	if _, err := svc.Login(ctx, "nadie@estudio.cl", testPassword); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf(msgWantKind, apperr.KindUnauthorized, apperr.GetKind(err), err)
	}
}

func TestCreateStaffValidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateStaffInput
		kind apperr.Kind
	}{
		{"bad email", CreateStaffInput{Email: "no-at-sign", Password: testPassword}, apperr.KindValidation},
		{"short password", CreateStaffInput{Email: "a@b.cl", Password: "short"}, apperr.KindValidation},
		{"unknown role", CreateStaffInput{Email: "a@b.cl", Password: testPassword, Role: "owner"}, apperr.KindValidation},
		{"duplicate", CreateStaffInput{Email: "ABOGADA@estudio.cl", Password: testPassword}, apperr.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateStaff(ctx, tt.in)
			if !apperr.Is(err, tt.kind) {
				t.Fatalf(msgWantKind, tt.kind, apperr.GetKind(err), err)
			}
		})
	}

	u, err := svc.CreateStaff(ctx, CreateStaffInput{Email: "asistente@estudio.cl", Password: testPassword})
	if err != nil {
		t.Fatalf(msgUnexpected, err)
	}
	if u.Role != httpkit.RoleStaff {
		t.Fatalf("expected default role staff, got %q", u.Role)
	}
}
