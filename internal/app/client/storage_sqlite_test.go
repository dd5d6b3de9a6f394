package client

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripkeeper/internal/domain/sync"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	storage, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func makeRecord(ownerID, entityType, id string, version int64, status sync.Status) sync.Record {
	return sync.Record{
		ID:         id,
		EntityType: entityType,
		OwnerID:    ownerID,
		Payload:    json.RawMessage(`{"distance_km":12.5}`),
		Version:    version,
		Status:     status,
		UpdatedAt:  time.Now().UTC(),
	}
}

func TestSQLiteStorage_RecordRoundtrip(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	rec := makeRecord("owner-1", "trip", "trip-1", 3, sync.StatusPendingUpload)
	require.NoError(t, storage.Upsert(ctx, rec))

	got, err := storage.Get(ctx, "trip", "trip-1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.OwnerID, got.OwnerID)
	assert.Equal(t, int64(3), got.Version)
	assert.Equal(t, sync.StatusPendingUpload, got.Status)
	assert.JSONEq(t, string(rec.Payload), string(got.Payload))
	assert.Nil(t, got.LastSyncedAt)
	assert.WithinDuration(t, rec.UpdatedAt, got.UpdatedAt, time.Millisecond)

	_, err = storage.Get(ctx, "trip", "missing")
	assert.ErrorIs(t, err, sync.ErrNotFound)
}

func TestSQLiteStorage_SaveWithIntent(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	rec := makeRecord("owner-1", "trip", "trip-1", 1, sync.StatusPendingUpload)
	require.NoError(t, storage.SaveWithIntent(ctx, rec, sync.NewOperation(rec, sync.ActionCreate)))

	got, err := storage.Get(ctx, "trip", "trip-1")
	require.NoError(t, err)
	assert.True(t, got.Dirty())

	ops, err := storage.Drain(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, sync.ActionCreate, ops[0].Action)
	assert.Equal(t, "trip-1", ops[0].EntityID)
	assert.JSONEq(t, string(rec.Payload), string(ops[0].Payload))
}

func TestSQLiteStorage_EnqueueSupersede(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	rec := makeRecord("owner-1", "trip", "trip-1", 1, sync.StatusPendingUpload)

	t.Run("delete replaces queued update", func(t *testing.T) {
		update := sync.NewOperation(rec, sync.ActionUpdate)
		require.NoError(t, storage.Enqueue(ctx, update))

		rec2 := rec
		rec2.Version = 2
		require.NoError(t, storage.Enqueue(ctx, sync.NewOperation(rec2, sync.ActionDelete)))

		ops, err := storage.Drain(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, ops, 1)
		assert.Equal(t, update.ID, ops[0].ID)
		assert.Equal(t, sync.ActionDelete, ops[0].Action)
		assert.Equal(t, sync.PriorityDelete, ops[0].Priority)
		assert.Nil(t, ops[0].Payload)

		require.NoError(t, storage.Drop(ctx, ops[0]))
	})

	t.Run("update over unpushed create stays create", func(t *testing.T) {
		create := sync.NewOperation(rec, sync.ActionCreate)
		require.NoError(t, storage.Enqueue(ctx, create))

		rec2 := rec
		rec2.Version = 2
		rec2.Payload = json.RawMessage(`{"distance_km":99}`)
		require.NoError(t, storage.Enqueue(ctx, sync.NewOperation(rec2, sync.ActionUpdate)))

		ops, err := storage.Drain(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, ops, 1)
		assert.Equal(t, create.ID, ops[0].ID)
		assert.Equal(t, sync.ActionCreate, ops[0].Action)
		assert.Equal(t, int64(2), ops[0].Version)
		assert.JSONEq(t, `{"distance_km":99}`, string(ops[0].Payload))
	})
}

func TestSQLiteStorage_DrainOrdering(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	first := makeRecord("owner-1", "trip", "trip-1", 1, sync.StatusPendingUpload)
	second := makeRecord("owner-1", "expense", "exp-1", 1, sync.StatusPendingUpload)
	third := makeRecord("owner-1", "trip", "trip-2", 2, sync.StatusPendingDelete)

	require.NoError(t, storage.Enqueue(ctx, sync.NewOperation(first, sync.ActionCreate)))
	require.NoError(t, storage.Enqueue(ctx, sync.NewOperation(second, sync.ActionCreate)))
	require.NoError(t, storage.Enqueue(ctx, sync.NewOperation(third, sync.ActionDelete)))

	ops, err := storage.Drain(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, ops, 3)

	// The delete drains first even though it was queued last; the two
	// uploads keep their enqueue order.
	assert.Equal(t, "trip-2", ops[0].EntityID)
	assert.Equal(t, "trip-1", ops[1].EntityID)
	assert.Equal(t, "exp-1", ops[2].EntityID)
}

func TestSQLiteStorage_SupersedeKeepsQueuePosition(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	first := makeRecord("owner-1", "trip", "trip-1", 1, sync.StatusPendingUpload)
	second := makeRecord("owner-1", "trip", "trip-2", 1, sync.StatusPendingUpload)

	require.NoError(t, storage.Enqueue(ctx, sync.NewOperation(first, sync.ActionCreate)))
	require.NoError(t, storage.Enqueue(ctx, sync.NewOperation(second, sync.ActionCreate)))

	// Superseding the first operation must not move it behind the second.
	first.Version = 2
	require.NoError(t, storage.Enqueue(ctx, sync.NewOperation(first, sync.ActionUpdate)))

	ops, err := storage.Drain(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "trip-1", ops[0].EntityID)
	assert.Equal(t, int64(2), ops[0].Version)
	assert.Equal(t, "trip-2", ops[1].EntityID)
}

func TestSQLiteStorage_RequeueAndAcknowledge(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	rec := makeRecord("owner-1", "trip", "trip-1", 1, sync.StatusPendingUpload)
	op := sync.NewOperation(rec, sync.ActionCreate)
	require.NoError(t, storage.Enqueue(ctx, op))

	require.NoError(t, storage.Requeue(ctx, op, false))
	require.NoError(t, storage.Requeue(ctx, op, true))

	ops, err := storage.Drain(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, 2, ops[0].Attempts)
	assert.True(t, ops[0].Flagged)

	require.NoError(t, storage.Acknowledge(ctx, op))

	ops, err = storage.Drain(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestSQLiteStorage_AcknowledgeSkipsSupersededOperation(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	rec := makeRecord("owner-1", "trip", "trip-1", 1, sync.StatusPendingUpload)
	drained := sync.NewOperation(rec, sync.ActionCreate)
	require.NoError(t, storage.Enqueue(ctx, drained))

	// A fresh edit supersedes the row while the v1 snapshot is in flight.
	rec.Version = 2
	rec.Payload = json.RawMessage(`{"distance_km":77}`)
	require.NoError(t, storage.Enqueue(ctx, sync.NewOperation(rec, sync.ActionUpdate)))

	// Acknowledging the drained v1 snapshot must leave the v2 intent queued.
	require.NoError(t, storage.Acknowledge(ctx, drained))

	ops, err := storage.Drain(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, int64(2), ops[0].Version)
	assert.JSONEq(t, `{"distance_km":77}`, string(ops[0].Payload))
}

func TestSQLiteStorage_OwnerIsolation(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	mine := makeRecord("owner-1", "trip", "trip-1", 1, sync.StatusPendingUpload)
	theirs := makeRecord("owner-2", "trip", "trip-2", 1, sync.StatusPendingUpload)
	require.NoError(t, storage.SaveWithIntent(ctx, mine, sync.NewOperation(mine, sync.ActionCreate)))
	require.NoError(t, storage.SaveWithIntent(ctx, theirs, sync.NewOperation(theirs, sync.ActionCreate)))

	records, err := storage.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "trip-1", records[0].ID)

	ops, err := storage.Drain(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "trip-1", ops[0].EntityID)
}

func TestSQLiteStorage_MarkSynced(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	rec := makeRecord("owner-1", "trip", "trip-1", 1, sync.StatusPendingUpload)
	require.NoError(t, storage.Upsert(ctx, rec))

	at := time.Now().UTC()
	require.NoError(t, storage.MarkSynced(ctx, "trip", "trip-1", 1, at))

	got, err := storage.Get(ctx, "trip", "trip-1")
	require.NoError(t, err)
	assert.Equal(t, sync.StatusClean, got.Status)
	require.NotNil(t, got.LastSyncedAt)
	assert.WithinDuration(t, at, *got.LastSyncedAt, time.Millisecond)

	assert.ErrorIs(t, storage.MarkSynced(ctx, "trip", "missing", 1, at), sync.ErrNotFound)
}

func TestSQLiteStorage_MarkSyncedSkipsNewerVersion(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	rec := makeRecord("owner-1", "trip", "trip-1", 3, sync.StatusPendingUpload)
	require.NoError(t, storage.Upsert(ctx, rec))

	// The push carried version 2; the record has moved on to version 3 since.
	err := storage.MarkSynced(ctx, "trip", "trip-1", 2, time.Now().UTC())
	assert.ErrorIs(t, err, sync.ErrNotFound)

	got, err := storage.Get(ctx, "trip", "trip-1")
	require.NoError(t, err)
	assert.Equal(t, sync.StatusPendingUpload, got.Status)
}

func TestSQLiteStorage_ConfirmDelete(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	t.Run("removes the awaited delete", func(t *testing.T) {
		rec := makeRecord("owner-1", "trip", "trip-1", 2, sync.StatusPendingDelete)
		require.NoError(t, storage.Upsert(ctx, rec))

		require.NoError(t, storage.ConfirmDelete(ctx, "trip", "trip-1", 2))
		_, err := storage.Get(ctx, "trip", "trip-1")
		assert.ErrorIs(t, err, sync.ErrNotFound)
	})

	t.Run("keeps a record re-created mid-push", func(t *testing.T) {
		rec := makeRecord("owner-1", "trip", "trip-2", 3, sync.StatusPendingUpload)
		require.NoError(t, storage.Upsert(ctx, rec))

		require.NoError(t, storage.ConfirmDelete(ctx, "trip", "trip-2", 2))
		got, err := storage.Get(ctx, "trip", "trip-2")
		require.NoError(t, err)
		assert.Equal(t, sync.StatusPendingUpload, got.Status)
	})
}

func TestSQLiteStorage_ApplyMerge(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	clean := makeRecord("owner-1", "trip", "gone-remotely", 1, sync.StatusClean)
	dirty := makeRecord("owner-1", "trip", "dirty-local", 2, sync.StatusPendingUpload)
	require.NoError(t, storage.Upsert(ctx, clean))
	require.NoError(t, storage.Upsert(ctx, dirty))

	incoming := makeRecord("owner-1", "trip", "from-remote", 5, sync.StatusClean)
	res := sync.MergeResult{
		Upserts: []sync.Record{incoming},
		Deletes: []sync.Key{
			{EntityType: "trip", EntityID: "gone-remotely"},
			// A dirty record must survive even if it slips into the delete
			// set; the status guard rejects it at commit time.
			{EntityType: "trip", EntityID: "dirty-local"},
		},
	}
	require.NoError(t, storage.ApplyMerge(ctx, "owner-1", res))

	_, err := storage.Get(ctx, "trip", "gone-remotely")
	assert.ErrorIs(t, err, sync.ErrNotFound)

	got, err := storage.Get(ctx, "trip", "dirty-local")
	require.NoError(t, err)
	assert.Equal(t, sync.StatusPendingUpload, got.Status)

	got, err = storage.Get(ctx, "trip", "from-remote")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Version)
}

func TestSQLiteStorage_OldestPending(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	oldest, err := storage.OldestPending(ctx, "owner-1")
	require.NoError(t, err)
	assert.Nil(t, oldest)

	rec := makeRecord("owner-1", "trip", "trip-1", 1, sync.StatusPendingUpload)
	op := sync.NewOperation(rec, sync.ActionCreate)
	require.NoError(t, storage.Enqueue(ctx, op))

	oldest, err = storage.OldestPending(ctx, "owner-1")
	require.NoError(t, err)
	require.NotNil(t, oldest)
	assert.WithinDuration(t, op.CreatedAt, *oldest, time.Millisecond)
}

func TestSQLiteStorage_ListPending(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Upsert(ctx, makeRecord("owner-1", "trip", "clean", 1, sync.StatusClean)))
	require.NoError(t, storage.Upsert(ctx, makeRecord("owner-1", "trip", "upload", 1, sync.StatusPendingUpload)))
	require.NoError(t, storage.Upsert(ctx, makeRecord("owner-1", "trip", "delete", 1, sync.StatusPendingDelete)))

	pending, err := storage.ListPending(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, rec := range pending {
		assert.True(t, rec.Dirty())
	}
}
