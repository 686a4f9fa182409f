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
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

const shortCodeConstraint = "leads_short_code_key"

// Lead statuses.
const (
	StatusNew       = "nuevo"
	StatusContacted = "contactado"
	StatusDiscarded = "descartado"
	StatusQualified = "valido"
)

// Sources and channels.
const (
	SourceBot  = "bot"
	SourceForm = "form"

	ChannelBot     = "bot"
	ChannelForm    = "form"
	ChannelLanding = "landing"
	ChannelManual  = "manual"
)

// IsValidStatus reports whether s is a known lead status.
func IsValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusContacted, StatusDiscarded, StatusQualified:
		return true
	}
	return false
}

type Lead struct {
	ID             uuid.UUID
	ShortCode      string
	Name           string
	Email          *string
	Phone          *string
	Matter         *string
	Source         string
	Channel        string
	Status         string
	ConversationID *uuid.UUID
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type InsertParams struct {
	Name           string
	Email          *string
	Phone          *string
	Matter         *string
	Source         string
	Channel        string
	ConversationID *uuid.UUID
}

type UpdateParams struct {
	Name   *string
	Email  *string
	Phone  *string
	Matter *string
	Status *string
	Notes  *string
	// ClearEmail and ClearPhone null the column; the table check still
	// requires one of the two to remain.
	ClearEmail bool
	ClearPhone bool
}

type ListParams struct {
	Status  *string
	Channel *string
	Search  string
	Offset  int
	Limit   int
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, short_code, name, email, phone, matter, source, channel, status,
	conversation_id, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.ShortCode, &l.Name, &l.Email, &l.Phone, &l.Matter, &l.Source, &l.Channel, &l.Status,
		&l.ConversationID, &l.Notes, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// Insert stores a new lead with a fresh short code, retrying when the
// random code collides with an existing one.
func (r *Repository) Insert(ctx context.Context, params InsertParams) (Lead, error) {
	var lastErr error
	for range shortcode.MaxAttempts {
		row := r.pool.QueryRow(ctx, `
			INSERT INTO leads (short_code, name, email, phone, matter, source, channel, conversation_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+leadColumns,
			shortcode.New(shortcode.PrefixLead), params.Name, params.Email, params.Phone, params.Matter,
			params.Source, params.Channel, params.ConversationID,
		)
		lead, err := scanLead(row)
		if err == nil {
			return lead, nil
		}
		if !db.IsUniqueViolation(err, shortCodeConstraint) {
			return Lead{}, err
		}
		lastErr = err
	}
	return Lead{}, fmt.Errorf("insert lead: short code retries exhausted: %w", lastErr)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// GetByConversation returns the lead created from a chat conversation.
func (r *Repository) GetByConversation(ctx context.Context, conversationID uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE conversation_id = $1
		ORDER BY created_at ASC
		LIMIT 1
	`, conversationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (Lead, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{params.Name != nil, "name", derefString(params.Name)},
		{params.Email != nil, "email", derefString(params.Email)},
		{params.ClearEmail && params.Email == nil, "email", nil},
		{params.Phone != nil, "phone", derefString(params.Phone)},
		{params.ClearPhone && params.Phone == nil, "phone", nil},
		{params.Matter != nil, "matter", derefString(params.Matter)},
		{params.Status != nil, "status", derefString(params.Status)},
		{params.Notes != nil, "notes", derefString(params.Notes)},
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

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d RETURNING `+leadColumns,
		strings.Join(setClauses, ", "), argIdx)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// SetStatusIfDifferent moves a lead to status unless it is already there.
// It reports whether a row changed.
func (r *Repository) SetStatusIfDifferent(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1 AND status <> $2
	`, id, status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args, argIdx := buildListWhere(params)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads l WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM leads l
		WHERE %s
		ORDER BY l.created_at DESC
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

func buildListWhere(params ListParams) (string, []interface{}, int) {
	whereClauses := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if params.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Channel != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.channel = $%d", argIdx))
		args = append(args, *params.Channel)
		argIdx++
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(l.name ILIKE $%d OR l.email ILIKE $%d OR l.phone ILIKE $%d OR l.short_code ILIKE $%d OR l.matter ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}
