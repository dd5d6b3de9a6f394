package sync

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string, version int64, status Status) Record {
	return Record{
		ID:         id,
		EntityType: "trip",
		OwnerID:    "owner-a",
		Payload:    json.RawMessage(`{"distance_km":12.5}`),
		Version:    version,
		Status:     status,
		UpdatedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestMerge_RemoteWinsOverCleanLocal(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	local := []Record{rec("t1", 1, StatusClean)}
	remote := []Record{rec("t1", 3, StatusClean)}
	remote[0].Payload = json.RawMessage(`{"distance_km":20}`)

	res := Merge(local, remote, now)

	require.Len(t, res.Upserts, 1)
	assert.Empty(t, res.Deletes)
	adopted := res.Upserts[0]
	assert.Equal(t, int64(3), adopted.Version)
	assert.Equal(t, StatusClean, adopted.Status)
	assert.JSONEq(t, `{"distance_km":20}`, string(adopted.Payload))
	require.NotNil(t, adopted.LastSyncedAt)
	assert.Equal(t, now, *adopted.LastSyncedAt)
}

func TestMerge_DirtyLocalPreserved(t *testing.T) {
	// Local edit (version 2, pending) concurrent with a stale remote copy
	// (version 1): the merge must leave the local record untouched.
	local := []Record{rec("t1", 2, StatusPendingUpload)}
	remote := []Record{rec("t1", 1, StatusClean)}

	res := Merge(local, remote, time.Now())

	assert.Empty(t, res.Upserts)
	assert.Empty(t, res.Deletes)
}

func TestMerge_PendingDeletePreserved(t *testing.T) {
	local := []Record{rec("t1", 2, StatusPendingDelete)}
	remote := []Record{rec("t1", 2, StatusClean)}

	res := Merge(local, remote, time.Now())

	assert.Empty(t, res.Upserts)
	assert.Empty(t, res.Deletes)
}

func TestMerge_CleanLocalAbsentRemotely(t *testing.T) {
	// Remote set omits t2: the clean local copy is treated as remotely
	// deleted.
	local := []Record{rec("t1", 1, StatusClean), rec("t2", 1, StatusClean)}
	remote := []Record{rec("t1", 1, StatusClean)}

	res := Merge(local, remote, time.Now())

	require.Len(t, res.Upserts, 1)
	require.Len(t, res.Deletes, 1)
	assert.Equal(t, Key{EntityType: "trip", EntityID: "t2"}, res.Deletes[0])
}

func TestMerge_DirtyLocalAbsentRemotely(t *testing.T) {
	// A not-yet-pushed creation must survive a pull that does not know it.
	local := []Record{rec("t3", 1, StatusPendingUpload)}

	res := Merge(local, nil, time.Now())

	assert.True(t, res.Empty())
}

func TestMerge_NewRemoteRecordAdopted(t *testing.T) {
	remote := []Record{rec("t9", 4, StatusClean)}

	res := Merge(nil, remote, time.Now())

	require.Len(t, res.Upserts, 1)
	assert.Equal(t, "t9", res.Upserts[0].ID)
	assert.Empty(t, res.Deletes)
}

func TestMerge_KeysDistinguishEntityTypes(t *testing.T) {
	// Same id in different entity types must not collide.
	tripRec := rec("x1", 1, StatusClean)
	expRec := rec("x1", 1, StatusPendingUpload)
	expRec.EntityType = "expense"

	res := Merge([]Record{tripRec, expRec}, []Record{tripRec}, time.Now())

	require.Len(t, res.Upserts, 1)
	assert.Equal(t, "trip", res.Upserts[0].EntityType)
	assert.Empty(t, res.Deletes)
}
