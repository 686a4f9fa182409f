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
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateKey is returned when a file key is registered twice.
	ErrDuplicateKey = errors.New("file key already registered")
)

const fileKeyConstraint = "documents_file_key_key"

// Owner types.
const (
	OwnerLead = "lead"
	OwnerCase = "case"
)

type Document struct {
	ID          uuid.UUID
	OwnerType   string
	OwnerID     uuid.UUID
	FileKey     string
	FileName    string
	ContentType string
	SizeBytes   int64
	UploadedBy  *uuid.UUID
	CreatedAt   time.Time
}

type InsertParams struct {
	OwnerType   string
	OwnerID     uuid.UUID
	FileKey     string
	FileName    string
	ContentType string
	SizeBytes   int64
	UploadedBy  *uuid.UUID
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const documentColumns = `id, owner_type, owner_id, file_key, file_name, content_type, size_bytes, uploaded_by, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.OwnerType, &d.OwnerID, &d.FileKey, &d.FileName, &d.ContentType,
		&d.SizeBytes, &d.UploadedBy, &d.CreatedAt)
	return d, err
}

func (r *Repository) Insert(ctx context.Context, params InsertParams) (Document, error) {
	doc, err := scanDocument(r.pool.QueryRow(ctx, `
		INSERT INTO documents (owner_type, owner_id, file_key, file_name, content_type, size_bytes, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+documentColumns,
		params.OwnerType, params.OwnerID, params.FileKey, params.FileName, params.ContentType,
		params.SizeBytes, params.UploadedBy,
	))
	if db.IsUniqueViolation(err, fileKeyConstraint) {
		return Document{}, ErrDuplicateKey
	}
	return doc, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Document, error) {
	doc, err := scanDocument(r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return doc, err
}

// ListByOwner returns an owner's documents, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerType string, ownerID uuid.UUID) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE owner_type = $1 AND owner_id = $2
		ORDER BY created_at DESC`, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
