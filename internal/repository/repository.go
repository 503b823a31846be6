package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (dynamo, postgres) inside this directory.

import (
	"context"
	"errors"

	"faceindex/internal/model"
)

// ErrStore marks a transport, permission or query failure in the record store.
var ErrStore = errors.New("record store error")

// PersonRepository persists person records. No business logic here.
type PersonRepository interface {
	// Insert appends a record. There is no existence check; duplicates are stored as-is.
	Insert(ctx context.Context, rec *model.PersonRecord) error

	// FindByFaceID returns every record whose face id equals faceID, in store order.
	FindByFaceID(ctx context.Context, faceID string) ([]model.PersonRecord, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
