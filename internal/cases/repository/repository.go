package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"legal_intake_backend/platform/db"
	"legal_intake_backend/platform/shortcode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("case not found")
	// ErrLeadHasCase is returned when another case already holds the lead.
	ErrLeadHasCase = errors.New("lead already has a case")
	// ErrInvalidAssignee is returned when assigned_to references no staff user.
	ErrInvalidAssignee = errors.New("assignee does not exist")
)

const (
	leadUniqueIndex     = "uq_cases_lead_id"
	shortCodeConstraint = "cases_short_code_key"
	foreignKeyViolation = "23503"
)

// Case statuses.
const (
	StatusNew        = "nuevo"
	StatusInProgress = "en_proceso"
	StatusClosed     = "cerrado"
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

type Case struct {
	ID           uuid.UUID
	ShortCode    string
	LeadID       uuid.UUID
	AssignedTo   *uuid.UUID
	Status       string
	Description  string
	InternalNote string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UpdateParams struct {
	Status        *string
	AssignedTo    *uuid.UUID
	AssignedToSet bool
	Description   *string
	InternalNote  *string
}

type ListParams struct {
	Status     *string
	AssignedTo *uuid.UUID
	Search     string
	Offset     int
	Limit      int
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const caseColumns = `c.id, c.short_code, c.lead_id, c.assigned_to, c.status, c.description,
	c.internal_note, c.created_at, c.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (Case, error) {
	var c Case
	err := row.Scan(&c.ID, &c.ShortCode, &c.LeadID, &c.AssignedTo, &c.Status, &c.Description,
		&c.InternalNote, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateWithIntakeEvent inserts a case for leadID together with its first
// timeline entry in one transaction. ErrLeadHasCase means a concurrent
// promotion won; nothing was written.
func (r *Repository) CreateWithIntakeEvent(ctx context.Context, leadID uuid.UUID, description string, intake NewEvent) (Case, error) {
	var lastErr error
	for range shortcode.MaxAttempts {
		created, err := r.createOnce(ctx, leadID, description, intake)
		if err == nil {
			return created, nil
		}
		if db.IsUniqueViolation(err, leadUniqueIndex) {
			return Case{}, ErrLeadHasCase
		}
		if !db.IsUniqueViolation(err, shortCodeConstraint) {
			return Case{}, err
		}
		lastErr = err
	}
	return Case{}, fmt.Errorf("insert case: short code retries exhausted: %w", lastErr)
}

func (r *Repository) createOnce(ctx context.Context, leadID uuid.UUID, description string, intake NewEvent) (Case, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Case{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanCase(tx.QueryRow(ctx, `
		INSERT INTO cases AS c (short_code, lead_id, status, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+caseColumns,
		shortcode.New(shortcode.PrefixCase), leadID, StatusNew, description,
	))
	if err != nil {
		return Case{}, err
	}

	if _, err := insertEvent(ctx, tx, created.ID, intake); err != nil {
		return Case{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Case{}, err
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Case, error) {
	c, err := scanCase(r.pool.QueryRow(ctx, `SELECT `+caseColumns+` FROM cases c WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Case{}, ErrNotFound
	}
	return c, err
}

func (r *Repository) GetByLeadID(ctx context.Context, leadID uuid.UUID) (Case, error) {
	c, err := scanCase(r.pool.QueryRow(ctx, `SELECT `+caseColumns+` FROM cases c WHERE c.lead_id = $1`, leadID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Case{}, ErrNotFound
	}
	return c, err
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (Case, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{params.Status != nil, "status", derefString(params.Status)},
		{params.AssignedToSet, "assigned_to", params.AssignedTo},
		{params.Description != nil, "description", derefString(params.Description)},
		{params.InternalNote != nil, "internal_note", derefString(params.InternalNote)},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE cases AS c SET %s WHERE c.id = $%d RETURNING `+caseColumns,
		strings.Join(setClauses, ", "), argIdx)

	updated, err := scanCase(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Case{}, ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return Case{}, ErrInvalidAssignee
	}
	return updated, err
}

// ListItem is a case row joined with its lead's display fields.
type ListItem struct {
	Case
	LeadShortCode string
	LeadName      string
}

// GetWithLead returns a case with its lead's display fields.
func (r *Repository) GetWithLead(ctx context.Context, id uuid.UUID) (ListItem, error) {
	var item ListItem
	c := &item.Case
	err := r.pool.QueryRow(ctx, `
		SELECT `+caseColumns+`, l.short_code, l.name
		FROM cases c
		JOIN leads l ON l.id = c.lead_id
		WHERE c.id = $1
	`, id).Scan(&c.ID, &c.ShortCode, &c.LeadID, &c.AssignedTo, &c.Status, &c.Description,
		&c.InternalNote, &c.CreatedAt, &c.UpdatedAt, &item.LeadShortCode, &item.LeadName)
	if errors.Is(err, pgx.ErrNoRows) {
		return ListItem{}, ErrNotFound
	}
	return item, err
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]ListItem, int, error) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if params.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("c.status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.AssignedTo != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("c.assigned_to = $%d", argIdx))
		args = append(args, *params.AssignedTo)
		argIdx++
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(c.short_code ILIKE $%d OR l.short_code ILIKE $%d OR l.name ILIKE $%d OR c.description ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	whereClause := strings.Join(whereClauses, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM cases c JOIN leads l ON l.id = c.lead_id WHERE " + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s, l.short_code, l.name
		FROM cases c
		JOIN leads l ON l.id = c.lead_id
		WHERE %s
		ORDER BY c.created_at DESC
		LIMIT $%d OFFSET $%d
	`, caseColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]ListItem, 0)
	for rows.Next() {
		var item ListItem
		c := &item.Case
		if err := rows.Scan(&c.ID, &c.ShortCode, &c.LeadID, &c.AssignedTo, &c.Status, &c.Description,
			&c.InternalNote, &c.CreatedAt, &c.UpdatedAt, &item.LeadShortCode, &item.LeadName); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return items, total, nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
