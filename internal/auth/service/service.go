package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"legal_intake_backend/internal/auth/repository"
	"legal_intake_backend/platform/apperr"
	"legal_intake_backend/platform/config"
	"legal_intake_backend/platform/httpkit"
	"legal_intake_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenType   = "access"
	minPasswordRunes  = 10
	msgInvalidCreds   = "invalid credentials"
	msgStaffNotFound  = "staff user not found"
	msgEmailTaken     = "email already registered"
	msgInvalidRole    = "role must be staff or admin"
	msgShortPassword  = "password must be at least 10 characters"
	msgInvalidEmail   = "invalid email"
	msgTokenIssueFail = "failed to issue session"
)

// StaffStore is the staff persistence the service needs.
type StaffStore interface {
	Create(ctx context.Context, email, passwordHash, displayName, role string) (repository.StaffUser, error)
	GetByEmail(ctx context.Context, email string) (repository.StaffUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.StaffUser, error)
	List(ctx context.Context) ([]repository.StaffUser, error)
}

type Service struct {
	store StaffStore
	cfg   config.AuthConfig
	log   *logger.Logger
	now   func() time.Time
}

// New creates the auth service. cfg may be nil when the service only
// manages staff accounts, as the operator CLI does.
func New(store StaffStore, cfg config.AuthConfig, log *logger.Logger) *Service {
	return &Service{store: store, cfg: cfg, log: log, now: time.Now}
}

// Session is an issued access token.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        repository.StaffUser
}

// Login checks the password and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		_ = comparePassword(string(dummyHash), password)
		if errors.Is(err, repository.ErrNotFound) {
			s.log.AuthEvent("login", email, false, "unknown email")
			return Session{}, apperr.Unauthorized(msgInvalidCreds)
		}
		return Session{}, apperr.Wrap(apperr.KindInternal, "failed to load staff user", err)
	}
	if err := comparePassword(user.PasswordHash, password); err != nil {
		s.log.AuthEvent("login", email, false, "wrong password")
		return Session{}, apperr.Unauthorized(msgInvalidCreds)
	}

	expiresAt := s.now().Add(s.cfg.GetAccessTokenTTL())
	token, err := s.signAccessToken(user, expiresAt)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.KindInternal, msgTokenIssueFail, err)
	}

	s.log.AuthEvent("login", email, true, "")
	return Session{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *Service) Me(ctx context.Context, id uuid.UUID) (repository.StaffUser, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.StaffUser{}, apperr.NotFound(msgStaffNotFound)
		}
		return repository.StaffUser{}, apperr.Wrap(apperr.KindInternal, "failed to load staff user", err)
	}
	return user, nil
}

func (s *Service) ListStaff(ctx context.Context) ([]repository.StaffUser, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list staff", err)
	}
	return users, nil
}

type CreateStaffInput struct {
	Email       string
	DisplayName string
	Password    string
	Role        string
}

// CreateStaff registers a staff account. An empty role means staff.
func (s *Service) CreateStaff(ctx context.Context, in CreateStaffInput) (repository.StaffUser, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return repository.StaffUser{}, apperr.Validation(msgInvalidEmail)
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = httpkit.RoleStaff
	}
	if role != httpkit.RoleStaff && role != httpkit.RoleAdmin {
		return repository.StaffUser{}, apperr.Validation(msgInvalidRole)
	}
	if utf8.RuneCountInString(in.Password) < minPasswordRunes {
		return repository.StaffUser{}, apperr.Validation(msgShortPassword)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return repository.StaffUser{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	user, err := s.store.Create(ctx, email, hash, strings.TrimSpace(in.DisplayName), role)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return repository.StaffUser{}, apperr.Conflict(msgEmailTaken)
		}
		return repository.StaffUser{}, apperr.Wrap(apperr.KindInternal, "failed to create staff user", err)
	}
	return user, nil
}

func (s *Service) signAccessToken(user repository.StaffUser, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"type":  accessTokenType,
		"roles": rolesFor(user.Role),
		"exp":   expiresAt.Unix(),
		"iat":   s.now().Unix(),
	}
	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

// rolesFor expands a stored role into token roles. Admins are staff too.
func rolesFor(role string) []string {
	if role == httpkit.RoleAdmin {
		return []string{httpkit.RoleStaff, httpkit.RoleAdmin}
	}
	return []string{httpkit.RoleStaff}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
