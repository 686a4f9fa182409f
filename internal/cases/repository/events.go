package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Event types, the usual milestones of a civil or labour proceeding.
const (
	EventIntake       = "ingreso"
	EventClaimFiled   = "demanda_presentada"
	EventNotification = "notificacion"
	EventAnswer       = "contestacion"
	EventHearing      = "audiencia"
	EventEvidence     = "prueba"
	EventClosingArgs  = "alegatos"
	EventJudgment     = "sentencia"
	EventAppeal       = "recurso"
	EventSettlement   = "acuerdo"
	EventArchived     = "archivo"
	EventOther        = "otro"
)

var eventTypes = []string{
	EventIntake, EventClaimFiled, EventNotification, EventAnswer, EventHearing, EventEvidence,
	EventClosingArgs, EventJudgment, EventAppeal, EventSettlement, EventArchived, EventOther,
}

// EventTypes lists every accepted event type in procedural order.
func EventTypes() []string {
	return append([]string(nil), eventTypes...)
}

func IsValidEventType(t string) bool {
	for _, known := range eventTypes {
		if known == t {
			return true
		}
	}
	return false
}

type Event struct {
	ID        uuid.UUID
	CaseID    uuid.UUID
	Type      string
	Detail    string
	Data      map[string]any
	EventDate time.Time
	CreatedAt time.Time
}

type NewEvent struct {
	Type   string
	Detail string
	Data   map[string]any
	// EventDate defaults to now when zero.
	EventDate time.Time
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertEvent(ctx context.Context, q querier, caseID uuid.UUID, ev NewEvent) (Event, error) {
	data := ev.Data
	if data == nil {
		data = map[string]any{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	eventDate := ev.EventDate
	if eventDate.IsZero() {
		eventDate = time.Now().UTC()
	}

	var out Event
	var raw []byte
	err = q.QueryRow(ctx, `
		INSERT INTO case_events (case_id, type, detail, data, event_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, case_id, type, detail, data, event_date, created_at
	`, caseID, ev.Type, ev.Detail, encoded, eventDate).Scan(
		&out.ID, &out.CaseID, &out.Type, &out.Detail, &raw, &out.EventDate, &out.CreatedAt,
	)
	if err != nil {
		return Event{}, err
	}
	if err := json.Unmarshal(raw, &out.Data); err != nil {
		return Event{}, err
	}
	return out, nil
}

// AddEvent appends to a case timeline. Events are never updated or deleted.
func (r *Repository) AddEvent(ctx context.Context, caseID uuid.UUID, ev NewEvent) (Event, error) {
	return insertEvent(ctx, r.pool, caseID, ev)
}

// ListEvents returns the timeline newest first.
func (r *Repository) ListEvents(ctx context.Context, caseID uuid.UUID) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, case_id, type, detail, data, event_date, created_at
		FROM case_events
		WHERE case_id = $1
		ORDER BY event_date DESC, created_at DESC
	`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Event, 0)
	for rows.Next() {
		var ev Event
		var raw []byte
		if err := rows.Scan(&ev.ID, &ev.CaseID, &ev.Type, &ev.Detail, &raw, &ev.EventDate, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &ev.Data); err != nil {
			return nil, err
		}
		items = append(items, ev)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
