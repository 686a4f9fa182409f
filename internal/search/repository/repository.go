package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type SearchResult struct {
	ID           uuid.UUID
	Type         string
	Title        string
	Subtitle     string
	Preview      string
	Status       string
	MatchedField string
	Score        float32
	CreatedAt    time.Time
	Total        int64
}

// Search ranks leads and cases against a websearch-style query. Short codes
// match exactly regardless of the text ranking. Cases also surface when
// their lead matches, at a reduced rank.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	querySQL := `
		WITH search_query AS (
			SELECT
				websearch_to_tsquery('simple',  intake_unaccent($1)) ||
				websearch_to_tsquery('spanish', intake_unaccent($1)) AS q,
				upper(trim($1)) AS code
		),
		matching_leads AS (
			SELECT
				l.id AS lead_id,
				CASE WHEN l.short_code = sq.code THEN 1.0 ELSE 0 END
				+ ts_rank(
					setweight(to_tsvector('simple', intake_unaccent(coalesce(l.name, ''))), 'A') ||
					setweight(to_tsvector('simple', coalesce(l.email, '')), 'B') ||
					setweight(to_tsvector('simple', coalesce(l.phone, '')), 'B') ||
					setweight(to_tsvector('spanish', intake_unaccent(coalesce(l.matter, ''))), 'D'),
					sq.q
				) AS lead_rank
			FROM leads l
			CROSS JOIN search_query sq
			WHERE l.short_code = sq.code
				OR (
					setweight(to_tsvector('simple', intake_unaccent(coalesce(l.name, ''))), 'A') ||
					setweight(to_tsvector('simple', coalesce(l.email, '')), 'B') ||
					setweight(to_tsvector('simple', coalesce(l.phone, '')), 'B') ||
					setweight(to_tsvector('spanish', intake_unaccent(coalesce(l.matter, ''))), 'D')
				) @@ sq.q
		),
		results AS (
			-- 1) LEADS
			SELECT
				l.id,
				'lead'::text AS type,
				l.name AS title,
				concat_ws(' • ', l.short_code, NULLIF(l.email, ''), NULLIF(l.phone, '')) AS subtitle,
				CASE
					WHEN to_tsvector('spanish', intake_unaccent(coalesce(l.matter, ''))) @@ sq.q THEN ts_headline(
						'spanish',
						coalesce(l.matter, ''),
						sq.q,
						'MaxWords=18, MinWords=6, ShortWord=2, StartSel=[, StopSel=]'
					)
					ELSE left(coalesce(l.matter, ''), 160)
				END AS preview,
				l.status,
				CASE
					WHEN l.short_code = sq.code THEN 'short_code'
					WHEN to_tsvector('simple', intake_unaccent(coalesce(l.name, ''))) @@ sq.q THEN 'name'
					WHEN to_tsvector('simple', coalesce(l.email, '')) @@ sq.q THEN 'email'
					WHEN to_tsvector('simple', coalesce(l.phone, '')) @@ sq.q THEN 'phone'
					ELSE 'matter'
				END AS matched_field,
				ml.lead_rank AS rank,
				l.created_at
			FROM matching_leads ml
			JOIN leads l ON l.id = ml.lead_id
			, search_query sq
			UNION ALL
			-- 2) CASES
			SELECT
				c.id,
				'case'::text AS type,
				c.short_code AS title,
				l.name AS subtitle,
				CASE
					WHEN to_tsvector('spanish', intake_unaccent(coalesce(c.description, ''))) @@ sq.q THEN ts_headline(
						'spanish',
						coalesce(c.description, ''),
						sq.q,
						'MaxWords=18, MinWords=6, ShortWord=2, StartSel=[, StopSel=]'
					)
					ELSE left(coalesce(c.description, ''), 160)
				END AS preview,
				c.status,
				CASE
					WHEN c.short_code = sq.code THEN 'short_code'
					WHEN to_tsvector('spanish', intake_unaccent(coalesce(c.description, ''))) @@ sq.q THEN 'description'
					ELSE 'lead'
				END AS matched_field,
				(
					CASE WHEN c.short_code = sq.code THEN 1.0 ELSE 0 END
					+ ts_rank(to_tsvector('spanish', intake_unaccent(coalesce(c.description, ''))), sq.q)
					+ COALESCE(ml.lead_rank * 0.20, 0)
				) AS rank,
				c.created_at
			FROM cases c
			JOIN leads l ON l.id = c.lead_id
			LEFT JOIN matching_leads ml ON ml.lead_id = c.lead_id
			, search_query sq
			WHERE c.short_code = sq.code
				OR to_tsvector('spanish', intake_unaccent(coalesce(c.description, ''))) @@ sq.q
				OR ml.lead_id IS NOT NULL
		)
		SELECT id, type, title, subtitle, preview, status, matched_field, rank::real, created_at,
			COUNT(*) OVER() AS total
		FROM results
		ORDER BY rank DESC, created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, querySQL, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var res SearchResult
		if err := rows.Scan(
			&res.ID,
			&res.Type,
			&res.Title,
			&res.Subtitle,
			&res.Preview,
			&res.Status,
			&res.MatchedField,
			&res.Score,
			&res.CreatedAt,
			&res.Total,
		); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
