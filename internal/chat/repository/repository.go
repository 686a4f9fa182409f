package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("conversation not found")

// Conversation statuses.
const (
	StatusActive    = "active"
	StatusSuccess   = "success"
	StatusAbandoned = "abandoned"
	StatusSpam      = "spam"
)

// Message roles. The system policy is never stored as a message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one stored turn. Order in the slice is conversational order.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at,omitzero"`
}

type Conversation struct {
	ID        uuid.UUID
	Messages  []Message
	Status    string
	LeadID    *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is a list row without the transcript body.
type Summary struct {
	ID           uuid.UUID
	Status       string
	LeadID       *uuid.UUID
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ListParams struct {
	Status *string
	Limit  int
	Offset int
}

// IsValidStatus reports whether s is a known conversation status.
func IsValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusSuccess, StatusAbandoned, StatusSpam:
		return true
	}
	return false
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (Conversation, error) {
	var conv Conversation
	var raw []byte
	if err := row.Scan(&conv.ID, &raw, &conv.Status, &conv.LeadID, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
		return Conversation{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &conv.Messages); err != nil {
			return Conversation{}, fmt.Errorf("decode conversation messages: %w", err)
		}
	}
	if conv.Messages == nil {
		conv.Messages = []Message{}
	}
	return conv, nil
}

func encodeMessages(messages []Message) ([]byte, error) {
	if messages == nil {
		messages = []Message{}
	}
	return json.Marshal(messages)
}

// Create inserts a new active conversation and returns it with its new id.
func (r *Repository) Create(ctx context.Context, messages []Message) (Conversation, error) {
	raw, err := encodeMessages(messages)
	if err != nil {
		return Conversation{}, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (messages, status)
		VALUES ($1, $2)
		RETURNING id, messages, status, lead_id, created_at, updated_at
	`, raw, StatusActive)
	return scanConversation(row)
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Conversation, error) {
	conv, err := scanConversation(r.pool.QueryRow(ctx, `
		SELECT id, messages, status, lead_id, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, ErrNotFound
	}
	return conv, err
}

// AppendMessages adds turns to the end of the stored transcript. Concurrent
// turns of one conversation both land; their relative order is commit order.
func (r *Repository) AppendMessages(ctx context.Context, id uuid.UUID, messages []Message) error {
	raw, err := encodeMessages(messages)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE conversations SET messages = messages || $2::jsonb, updated_at = now()
		WHERE id = $1
	`, id, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE conversations SET status = $2, updated_at = now()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkLeadCaptured links the conversation to its lead and closes it as success.
func (r *Repository) MarkLeadCaptured(ctx context.Context, id uuid.UUID, leadID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE conversations SET status = $2, lead_id = $3, updated_at = now()
		WHERE id = $1
	`, id, StatusSuccess, leadID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Summary, int, error) {
	where := "TRUE"
	args := []interface{}{}
	if params.Status != nil {
		where = "status = $1"
		args = append(args, *params.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM conversations WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT id, status, lead_id, jsonb_array_length(messages), created_at, updated_at
		FROM conversations
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]Summary, 0)
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Status, &s.LeadID, &s.MessageCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return items, total, nil
}
