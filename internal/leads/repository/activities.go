package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Activity kinds.
const (
	ActivityCall         = "call"
	ActivityEmail        = "email"
	ActivityWhatsApp     = "whatsapp"
	ActivityMeeting      = "meeting"
	ActivityNote         = "note"
	ActivityStatusChange = "status_change"
	ActivitySystem       = "system"
)

// IsStaffActivityKind reports whether kind may be logged by staff.
// status_change and system entries are written by the application.
func IsStaffActivityKind(kind string) bool {
	switch kind {
	case ActivityCall, ActivityEmail, ActivityWhatsApp, ActivityMeeting, ActivityNote:
		return true
	}
	return false
}

type Activity struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Kind      string
	Summary   string
	ActorID   *uuid.UUID
	CreatedAt time.Time
}

func (r *Repository) AddActivity(ctx context.Context, leadID uuid.UUID, kind, summary string, actorID *uuid.UUID) (Activity, error) {
	var a Activity
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_activities (lead_id, kind, summary, actor_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_id, kind, summary, actor_id, created_at
	`, leadID, kind, summary, actorID).Scan(&a.ID, &a.LeadID, &a.Kind, &a.Summary, &a.ActorID, &a.CreatedAt)
	return a, err
}

// ListActivities returns a lead's activity log, newest first.
func (r *Repository) ListActivities(ctx context.Context, leadID uuid.UUID) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, kind, summary, actor_id, created_at
		FROM lead_activities
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.Kind, &a.Summary, &a.ActorID, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
