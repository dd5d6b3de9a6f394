package record

import (
	"context"
	"time"
)

type Repository interface {
	// ListActive returns the owner's non-deleted records of one entity type.
	ListActive(ctx context.Context, ownerID, entityType string) ([]Record, error)

	// Find returns the record regardless of its deleted flag.
	Find(ctx context.Context, ownerID, entityType, id string) (Record, error)

	// Save upserts the record by (owner, entity type, id).
	Save(ctx context.Context, rec Record) error

	// MarkDeleted soft-deletes; missing records are not an error.
	MarkDeleted(ctx context.Context, ownerID, entityType, id string, at time.Time) error
}
