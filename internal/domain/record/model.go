package record

import (
	"encoding/json"
	"time"
)

// Record is the authoritative copy of one synced entity. Deletion is a soft
// flag: deleted records keep their row for auditing but never appear in
// fetches, which is how clients learn about deletions (by absence).
type Record struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	EntityType string          `json:"entity_type"`
	Payload    json.RawMessage `json:"payload"`
	Version    int64           `json:"version"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Deleted    bool            `json:"-"`
}

// EntityTypes the server accepts from clients. Company links are created by
// the invitation procedure only.
var writableEntityTypes = map[string]bool{
	"trip":    true,
	"expense": true,
	"vehicle": true,
}

var readableEntityTypes = map[string]bool{
	"trip":         true,
	"expense":      true,
	"vehicle":      true,
	"company_link": true,
}

func IsWritableEntityType(entityType string) bool { return writableEntityTypes[entityType] }

func IsEntityType(entityType string) bool { return readableEntityTypes[entityType] }
