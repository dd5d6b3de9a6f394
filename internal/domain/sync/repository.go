package sync

import (
	"context"
	"encoding/json"
	"time"
)

// LocalStore is the owner-scoped cache of records. Upsert is last-write-wins
// at this layer; all conflict logic lives above it. Implementations wrap I/O
// failures in *StorageError.
type LocalStore interface {
	Get(ctx context.Context, entityType, id string) (*Record, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
	ListPending(ctx context.Context, ownerID string) ([]Record, error)
	Upsert(ctx context.Context, rec Record) error
	Delete(ctx context.Context, entityType, id string) error

	// MarkSynced flips the record to clean, but only while it still holds the
	// pushed version. A record mutated again since the push was drained stays
	// dirty; the call reports ErrNotFound and the newer intent settles later.
	MarkSynced(ctx context.Context, entityType, id string, version int64, at time.Time) error

	// ConfirmDelete removes the record after the remote delete succeeded, but
	// only while it is still pending-delete at the pushed version. A record
	// re-created or re-mutated mid-push survives.
	ConfirmDelete(ctx context.Context, entityType, id string, version int64) error

	// ApplyMerge writes a pull-merge result in a single transaction, so the
	// cache is always either the old consistent snapshot or the new one.
	ApplyMerge(ctx context.Context, ownerID string, res MergeResult) error
}

// OperationQueue is the persistent log of pending remote mutations. Enqueue
// applies the supersede rule; Drain returns operations in priority order,
// FIFO within equal priority, stable across restarts.
//
// Acknowledge, Requeue and Drop settle against the drained snapshot: they
// match the stored row on id, version and action, so a row superseded by a
// newer intent while its old snapshot was in flight is left untouched and
// drains on the next cycle.
type OperationQueue interface {
	Enqueue(ctx context.Context, op Operation) error
	Drain(ctx context.Context, ownerID string) ([]Operation, error)
	Acknowledge(ctx context.Context, op Operation) error
	Requeue(ctx context.Context, op Operation, flagged bool) error
	Drop(ctx context.Context, op Operation) error

	// OldestPending returns the enqueue time of the oldest pending operation
	// for the owner, or nil when the queue is empty. Used for escalation.
	OldestPending(ctx context.Context, ownerID string) (*time.Time, error)
}

// MutationStore binds a record write and its queued operation into one
// transactional boundary: both succeed or both fail, so a dirty record always
// has a matching queued intent.
type MutationStore interface {
	SaveWithIntent(ctx context.Context, rec Record, op Operation) error
}

// Gateway is the remote authoritative store. Implementations return
// ErrCredentialExpired, ErrConflict and ErrValidation as sentinel errors and
// wrap transport failures in *NetworkError; they never signal errors through
// response bodies alone.
type Gateway interface {
	FetchAll(ctx context.Context, ownerID, entityType string) ([]Record, error)
	Upsert(ctx context.Context, entityType string, rec Record) (*Record, error)
	Delete(ctx context.Context, entityType, id string) error
	CallProcedure(ctx context.Context, name string, args any) (json.RawMessage, error)
}

// Refresher exchanges an expired credential for a fresh one. Safe to call
// concurrently; implementations serialize internally and are idempotent.
type Refresher interface {
	Refresh(ctx context.Context, force bool) error
}
