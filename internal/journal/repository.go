// Package journal persists a record of every upload attempt.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one recorded upload attempt.
type Entry struct {
	ID           string    `json:"id"           example:"e7eedc79-0707-4fe4-8734-526b7ef13a7b"`
	OriginalName string    `json:"originalName" example:"cat.png"`
	ObjectName   string    `json:"objectName"   example:"4f0c2a9e-5b1d-4c7e-9a39-0d7f3c1b2e11.png"`
	ContentType  string    `json:"contentType"  example:"image/png"`
	SizeBytes    int64     `json:"sizeBytes"    example:"20480"`
	Success      bool      `json:"success"      example:"true"`
	URL          string    `json:"url,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"createdAt"    example:"2026-02-27T14:48:34Z"`
}

// Repository handles journal persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new journal Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Record inserts e, assigning an ID when it has none.
func (r *Repository) Record(ctx context.Context, e Entry) error {
	id := uuid.New()
	if e.ID != "" {
		parsed, err := uuid.Parse(e.ID)
		if err != nil {
			return fmt.Errorf("parse upload id %q: %w", e.ID, err)
		}
		id = parsed
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO uploads (id, original_name, object_name, content_type, size_bytes, success, url, error)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))`,
		id, e.OriginalName, e.ObjectName, e.ContentType, e.SizeBytes, e.Success, e.URL, e.Error,
	)
	if err != nil {
		return fmt.Errorf("insert upload %q: %w", e.ObjectName, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id::text, original_name, object_name, content_type, size_bytes, success,
		        COALESCE(url, ''), COALESCE(error, ''), created_at
		 FROM uploads
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.OriginalName, &e.ObjectName, &e.ContentType, &e.SizeBytes,
			&e.Success, &e.URL, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploads: %w", err)
	}
	return entries, nil
}
