package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"faceindex/internal/model"
	"faceindex/internal/repository"
)

// PersonPostgres is a PostgreSQL implementation of repository.PersonRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type PersonPostgres struct {
	db *sql.DB
}

// NewPersonPostgres creates a new PersonPostgres repository.
func NewPersonPostgres(db *sql.DB) *PersonPostgres {
	return &PersonPostgres{db: db}
}

var _ repository.PersonRepository = (*PersonPostgres)(nil)

// newID is swapped in tests for deterministic row ids.
var newID = uuid.NewString

// Insert appends a person row. Rows get a surrogate id; face ids are not unique.
func (r *PersonPostgres) Insert(ctx context.Context, rec *model.PersonRecord) error {
	const q = `
		INSERT INTO persons (id, name, image, face_id, external_image_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, q,
		newID(),
		rec.Name,
		rec.Image,
		rec.FaceID,
		rec.ExternalImageID,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert person: %w", repository.ErrStore, err)
	}
	return nil
}

// FindByFaceID returns persons with the given face id in insertion order.
func (r *PersonPostgres) FindByFaceID(ctx context.Context, faceID string) ([]model.PersonRecord, error) {
	const q = `
		SELECT name, image, face_id, external_image_id, created_at
		FROM persons
		WHERE face_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, faceID)
	if err != nil {
		return nil, fmt.Errorf("%w: query persons: %w", repository.ErrStore, err)
	}
	defer rows.Close()

	items := make([]model.PersonRecord, 0)
	for rows.Next() {
		var p model.PersonRecord
		if err := rows.Scan(
			&p.Name,
			&p.Image,
			&p.FaceID,
			&p.ExternalImageID,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan person: %w", repository.ErrStore, err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate persons: %w", repository.ErrStore, err)
	}
	return items, nil
}

// Ping checks database connectivity.
func (r *PersonPostgres) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrStore, err)
	}
	return nil
}
