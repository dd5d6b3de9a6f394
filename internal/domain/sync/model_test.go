package sync

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOperation(t *testing.T) {
	r := Record{
		ID:         "t1",
		EntityType: "trip",
		OwnerID:    "owner-a",
		Payload:    json.RawMessage(`{"purpose":"business"}`),
		Version:    2,
	}

	t.Run("update carries snapshot", func(t *testing.T) {
		op := NewOperation(r, ActionUpdate)
		assert.NotEmpty(t, op.ID)
		assert.Equal(t, "t1", op.EntityID)
		assert.Equal(t, int64(2), op.Version)
		assert.Equal(t, PriorityNormal, op.Priority)
		assert.JSONEq(t, `{"purpose":"business"}`, string(op.Payload))
	})

	t.Run("delete has no snapshot and drains first", func(t *testing.T) {
		op := NewOperation(r, ActionDelete)
		assert.Nil(t, op.Payload)
		assert.Equal(t, PriorityDelete, op.Priority)
	})
}

func TestSupersede(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := Operation{
		ID:         "op-1",
		EntityType: "trip",
		EntityID:   "t1",
		Action:     ActionUpdate,
		Payload:    json.RawMessage(`{"v":1}`),
		Attempts:   3,
		Flagged:    true,
		CreatedAt:  base,
	}

	t.Run("nil previous keeps next as-is", func(t *testing.T) {
		next := Operation{ID: "op-2", Action: ActionCreate}
		got := Supersede(nil, next)
		assert.Equal(t, next, got)
	})

	t.Run("delete replaces update", func(t *testing.T) {
		next := Operation{ID: "op-2", Action: ActionDelete, Priority: PriorityDelete}
		got := Supersede(&prev, next)
		assert.Equal(t, ActionDelete, got.Action)
		assert.Equal(t, PriorityDelete, got.Priority)
		// Queue position and identity stay with the earlier slot.
		assert.Equal(t, "op-1", got.ID)
		assert.Equal(t, base, got.CreatedAt)
		assert.Zero(t, got.Attempts)
		assert.False(t, got.Flagged)
	})

	t.Run("update over unpushed create stays a create", func(t *testing.T) {
		created := prev
		created.Action = ActionCreate
		next := Operation{
			ID:      "op-2",
			Action:  ActionUpdate,
			Payload: json.RawMessage(`{"v":2}`),
			Version: 2,
		}
		got := Supersede(&created, next)
		require.Equal(t, ActionCreate, got.Action)
		assert.JSONEq(t, `{"v":2}`, string(got.Payload))
		assert.Equal(t, int64(2), got.Version)
	})

	t.Run("later update replaces earlier update", func(t *testing.T) {
		next := Operation{ID: "op-2", Action: ActionUpdate, Payload: json.RawMessage(`{"v":9}`)}
		got := Supersede(&prev, next)
		assert.Equal(t, ActionUpdate, got.Action)
		assert.JSONEq(t, `{"v":9}`, string(got.Payload))
	})
}
