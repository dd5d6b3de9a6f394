package sync

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status describes how a locally cached record relates to the remote store.
type Status string

const (
	StatusClean         Status = "clean"
	StatusPendingUpload Status = "pending_upload"
	StatusPendingDelete Status = "pending_delete"
)

// Record is one cached instance of a domain entity. IDs are client-generated
// and stable across devices; Version increases on every local mutation and is
// carried on pushes as the optimistic-concurrency token.
type Record struct {
	ID           string          `json:"id"`
	EntityType   string          `json:"entity_type"`
	OwnerID      string          `json:"owner_id"`
	Payload      json.RawMessage `json:"payload"`
	Version      int64           `json:"version"`
	Status       Status          `json:"sync_status"`
	UpdatedAt    time.Time       `json:"updated_at"`
	LastSyncedAt *time.Time      `json:"last_synced_at,omitempty"`
}

// Dirty reports whether the record carries unacknowledged local mutations.
func (r Record) Dirty() bool {
	return r.Status != StatusClean
}

// Key identifies the entity a record or operation refers to.
type Key struct {
	EntityType string
	EntityID   string
}

func (r Record) Key() Key {
	return Key{EntityType: r.EntityType, EntityID: r.ID}
}

// Action is the kind of mutation a pending operation applies remotely.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Operation priorities. Deletions drain ahead of uploads within a batch;
// ordering within equal priority is FIFO, stable across restarts.
const (
	PriorityNormal = 0
	PriorityDelete = 10
)

// Operation is one queued intent to mutate the remote store. At most one
// effective operation exists per (owner, entity type, entity id); later
// enqueues supersede earlier ones.
type Operation struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Action     Action          `json:"action"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Version    int64           `json:"version"`
	Priority   int             `json:"priority"`
	Attempts   int             `json:"attempts"`
	Flagged    bool            `json:"flagged"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (o Operation) Key() Key {
	return Key{EntityType: o.EntityType, EntityID: o.EntityID}
}

// NewOperation builds the queued intent for a record mutation. Delete
// operations carry no payload snapshot and drain first.
func NewOperation(rec Record, action Action) Operation {
	op := Operation{
		ID:         uuid.NewString(),
		OwnerID:    rec.OwnerID,
		EntityType: rec.EntityType,
		EntityID:   rec.ID,
		Action:     action,
		Version:    rec.Version,
		Priority:   PriorityNormal,
		CreatedAt:  time.Now().UTC(),
	}
	if action == ActionDelete {
		op.Priority = PriorityDelete
	} else {
		op.Payload = rec.Payload
	}
	return op
}

// Supersede collapses a newly enqueued operation with the effective one
// already queued for the same key, so the queue never holds two intents for
// one entity. A delete replaces anything before it. An update over a create
// the remote has never seen stays a create, with the fresh snapshot. The
// earlier operation's identity and queue position are kept and the attempt
// counter restarts, since the result is a new intent.
func Supersede(prev *Operation, next Operation) Operation {
	if prev == nil {
		return next
	}
	merged := next
	merged.ID = prev.ID
	merged.CreatedAt = prev.CreatedAt
	merged.Attempts = 0
	merged.Flagged = false
	if prev.Action == ActionCreate && next.Action == ActionUpdate {
		merged.Action = ActionCreate
		merged.Priority = PriorityNormal
	}
	return merged
}
