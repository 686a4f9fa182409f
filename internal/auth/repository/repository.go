package repository

import (
	"context"
	"errors"
	"time"

	"legal_intake_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("staff user not found")
	// ErrEmailTaken is returned when the email already belongs to a staff user.
	ErrEmailTaken = errors.New("email already registered")
)

const emailConstraint = "staff_users_email_key"

type StaffUser struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	DisplayName  string
	Role         string
	CreatedAt    time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const staffColumns = `id, email, password_hash, display_name, role, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStaff(row rowScanner) (StaffUser, error) {
	var u StaffUser
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StaffUser{}, ErrNotFound
	}
	return u, err
}

func (r *Repository) Create(ctx context.Context, email, passwordHash, displayName, role string) (StaffUser, error) {
	user, err := scanStaff(r.pool.QueryRow(ctx, `
		INSERT INTO staff_users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+staffColumns,
		email, passwordHash, displayName, role,
	))
	if db.IsUniqueViolation(err, emailConstraint) {
		return StaffUser{}, ErrEmailTaken
	}
	return user, err
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (StaffUser, error) {
	return scanStaff(r.pool.QueryRow(ctx,
		`SELECT `+staffColumns+` FROM staff_users WHERE email = $1`, email))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (StaffUser, error) {
	return scanStaff(r.pool.QueryRow(ctx,
		`SELECT `+staffColumns+` FROM staff_users WHERE id = $1`, id))
}

func (r *Repository) List(ctx context.Context) ([]StaffUser, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+staffColumns+` FROM staff_users ORDER BY display_name, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]StaffUser, 0)
	for rows.Next() {
		u, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
