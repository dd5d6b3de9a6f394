package sync

import "time"

// MergeResult is the outcome of a pull-time merge. Upserts are remote records
// adopted verbatim (marked clean); Deletes are ids of clean local records the
// remote no longer has. Dirty local records appear in neither list: pending
// local intent always wins over remote state for the same id until the next
// successful push.
type MergeResult struct {
	Upserts []Record
	Deletes []Key
}

// Empty reports whether the merge changes nothing.
func (m MergeResult) Empty() bool {
	return len(m.Upserts) == 0 && len(m.Deletes) == 0
}

// Merge reconciles the owner-scoped local set against the authoritative
// remote set. Pure function; callers apply the result transactionally.
//
// Policy, per record id:
//   - remote present, local clean or absent: adopt remote, status clean.
//   - remote present, local dirty: keep local untouched; the pending push
//     resolves it.
//   - remote absent, local clean: remotely deleted, remove locally. This
//     infers deletion from absence, so it must only run against a complete,
//     successfully fetched remote set.
//   - remote absent, local dirty: keep; likely a not-yet-pushed creation.
func Merge(local, remote []Record, now time.Time) MergeResult {
	dirty := make(map[Key]struct{})
	clean := make(map[Key]struct{})
	for _, rec := range local {
		if rec.Dirty() {
			dirty[rec.Key()] = struct{}{}
		} else {
			clean[rec.Key()] = struct{}{}
		}
	}

	var res MergeResult
	remoteSeen := make(map[Key]struct{}, len(remote))
	syncedAt := now.UTC()
	for _, rec := range remote {
		key := rec.Key()
		remoteSeen[key] = struct{}{}
		if _, ok := dirty[key]; ok {
			continue
		}
		adopted := rec
		adopted.Status = StatusClean
		at := syncedAt
		adopted.LastSyncedAt = &at
		res.Upserts = append(res.Upserts, adopted)
	}

	for _, rec := range local {
		key := rec.Key()
		if _, ok := remoteSeen[key]; ok {
			continue
		}
		if _, ok := clean[key]; ok {
			res.Deletes = append(res.Deletes, key)
		}
	}

	return res
}
