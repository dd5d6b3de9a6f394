package client

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tripkeeper/internal/domain/sync"
)

// SQLiteStorage is the on-device cache. It backs both the record store and
// the pending-operation queue with one database file so a record mutation and
// its queued operation share a transaction, and so queued operations survive
// process restarts independent of in-memory state.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, &sync.StorageError{Op: "open database", Err: err}
	}

	s := &SQLiteStorage{db: db}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, &sync.StorageError{Op: "init tables", Err: err}
	}

	return s, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			id TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			sync_status TEXT NOT NULL DEFAULT 'clean',
			updated_at TEXT NOT NULL,
			last_synced_at TEXT,
			PRIMARY KEY (entity_type, id)
		);

		CREATE INDEX IF NOT EXISTS idx_records_owner ON records(owner_id);
		CREATE INDEX IF NOT EXISTS idx_records_status ON records(owner_id, sync_status);

		CREATE TABLE IF NOT EXISTS pending_operations (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			owner_id TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			action TEXT NOT NULL,
			payload TEXT,
			version INTEGER NOT NULL DEFAULT 1,
			priority INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			flagged INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			UNIQUE (owner_id, entity_type, entity_id)
		);
	`)
	return err
}

const recordColumns = `id, entity_type, owner_id, payload, version, sync_status, updated_at, last_synced_at`

func (s *SQLiteStorage) Get(ctx context.Context, entityType, id string) (*sync.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE entity_type = ? AND id = ?
	`, entityType, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sync.ErrNotFound
	}
	if err != nil {
		return nil, &sync.StorageError{Op: "get record", Err: err}
	}
	return rec, nil
}

func (s *SQLiteStorage) ListByOwner(ctx context.Context, ownerID string) ([]sync.Record, error) {
	return s.listRecords(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE owner_id = ?
		ORDER BY updated_at DESC
	`, ownerID)
}

func (s *SQLiteStorage) ListPending(ctx context.Context, ownerID string) ([]sync.Record, error) {
	return s.listRecords(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE owner_id = ? AND sync_status != ?
		ORDER BY updated_at ASC
	`, ownerID, sync.StatusClean)
}

func (s *SQLiteStorage) listRecords(ctx context.Context, query string, args ...any) ([]sync.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &sync.StorageError{Op: "list records", Err: err}
	}
	defer rows.Close()

	var records []sync.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, &sync.StorageError{Op: "scan record", Err: err}
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &sync.StorageError{Op: "list records", Err: err}
	}
	return records, nil
}

func (s *SQLiteStorage) Upsert(ctx context.Context, rec sync.Record) error {
	if err := upsertRecord(ctx, s.db, rec); err != nil {
		return &sync.StorageError{Op: "upsert record", Err: err}
	}
	return nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, entityType, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE entity_type = ? AND id = ?`, entityType, id); err != nil {
		return &sync.StorageError{Op: "delete record", Err: err}
	}
	return nil
}

// MarkSynced is guarded on version: a record edited again while its previous
// snapshot was in flight keeps its dirty status and newer version.
func (s *SQLiteStorage) MarkSynced(ctx context.Context, entityType, id string, version int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE records
		SET sync_status = ?, last_synced_at = ?
		WHERE entity_type = ? AND id = ? AND version = ?
	`, sync.StatusClean, at.UTC().Format(time.RFC3339Nano), entityType, id, version)
	if err != nil {
		return &sync.StorageError{Op: "mark synced", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sync.ErrNotFound
	}
	return nil
}

// ConfirmDelete removes the row only while it still awaits the delete that
// just succeeded remotely. A record re-created mid-push stays.
func (s *SQLiteStorage) ConfirmDelete(ctx context.Context, entityType, id string, version int64) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM records
		WHERE entity_type = ? AND id = ? AND sync_status = ? AND version = ?
	`, entityType, id, sync.StatusPendingDelete, version); err != nil {
		return &sync.StorageError{Op: "confirm delete", Err: err}
	}
	return nil
}

// SaveWithIntent writes the mutated record and its queued operation in one
// transaction, so a dirty record can never exist without a matching intent or
// the other way around.
func (s *SQLiteStorage) SaveWithIntent(ctx context.Context, rec sync.Record, op sync.Operation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &sync.StorageError{Op: "begin mutation", Err: err}
	}
	defer tx.Rollback()

	if err := upsertRecord(ctx, tx, rec); err != nil {
		return &sync.StorageError{Op: "save record", Err: err}
	}
	if err := enqueueOperation(ctx, tx, op); err != nil {
		return &sync.StorageError{Op: "enqueue operation", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &sync.StorageError{Op: "commit mutation", Err: err}
	}
	return nil
}

// ApplyMerge commits a pull-merge result atomically. Deletes are guarded on
// sync_status so a record dirtied between merge computation and commit is
// never lost.
func (s *SQLiteStorage) ApplyMerge(ctx context.Context, ownerID string, res sync.MergeResult) error {
	if res.Empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &sync.StorageError{Op: "begin merge", Err: err}
	}
	defer tx.Rollback()

	for _, rec := range res.Upserts {
		if rec.OwnerID != ownerID {
			continue
		}
		if err := upsertRecord(ctx, tx, rec); err != nil {
			return &sync.StorageError{Op: "apply merge upsert", Err: err}
		}
	}
	for _, key := range res.Deletes {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM records
			WHERE entity_type = ? AND id = ? AND owner_id = ? AND sync_status = ?
		`, key.EntityType, key.EntityID, ownerID, sync.StatusClean); err != nil {
			return &sync.StorageError{Op: "apply merge delete", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &sync.StorageError{Op: "commit merge", Err: err}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertRecord(ctx context.Context, db execer, rec sync.Record) error {
	var lastSynced any
	if rec.LastSyncedAt != nil {
		lastSynced = rec.LastSyncedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO records (id, entity_type, owner_id, payload, version, sync_status, updated_at, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (entity_type, id) DO UPDATE SET
			owner_id = excluded.owner_id,
			payload = excluded.payload,
			version = excluded.version,
			sync_status = excluded.sync_status,
			updated_at = excluded.updated_at,
			last_synced_at = excluded.last_synced_at
	`, rec.ID, rec.EntityType, rec.OwnerID, string(rec.Payload), rec.Version,
		rec.Status, rec.UpdatedAt.UTC().Format(time.RFC3339Nano), lastSynced)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*sync.Record, error) {
	var rec sync.Record
	var payload, updatedAt string
	var lastSynced sql.NullString

	if err := row.Scan(&rec.ID, &rec.EntityType, &rec.OwnerID, &payload,
		&rec.Version, &rec.Status, &updatedAt, &lastSynced); err != nil {
		return nil, err
	}

	rec.Payload = []byte(payload)
	ts, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, err
	}
	rec.UpdatedAt = ts

	if lastSynced.Valid {
		ls, err := time.Parse(time.RFC3339Nano, lastSynced.String)
		if err != nil {
			return nil, err
		}
		rec.LastSyncedAt = &ls
	}
	return &rec, nil
}

// ==================== Pending operation queue ====================

const operationColumns = `id, owner_id, entity_type, entity_id, action, payload, version, priority, attempts, flagged, created_at`

// Enqueue inserts the operation, superseding any effective operation already
// queued for the same (owner, entity type, entity id).
func (s *SQLiteStorage) Enqueue(ctx context.Context, op sync.Operation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &sync.StorageError{Op: "begin enqueue", Err: err}
	}
	defer tx.Rollback()

	if err := enqueueOperation(ctx, tx, op); err != nil {
		return &sync.StorageError{Op: "enqueue operation", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &sync.StorageError{Op: "commit enqueue", Err: err}
	}
	return nil
}

type queryExecer interface {
	execer
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func enqueueOperation(ctx context.Context, db queryExecer, op sync.Operation) error {
	row := db.QueryRowContext(ctx, `
		SELECT `+operationColumns+`
		FROM pending_operations
		WHERE owner_id = ? AND entity_type = ? AND entity_id = ?
	`, op.OwnerID, op.EntityType, op.EntityID)

	prev, err := scanOperation(row)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	merged := sync.Supersede(prev, op)
	var payload any
	if merged.Payload != nil {
		payload = string(merged.Payload)
	}

	if prev == nil {
		_, err = db.ExecContext(ctx, `
			INSERT INTO pending_operations (id, owner_id, entity_type, entity_id, action, payload, version, priority, attempts, flagged, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, merged.ID, merged.OwnerID, merged.EntityType, merged.EntityID, merged.Action,
			payload, merged.Version, merged.Priority, merged.Attempts, merged.Flagged,
			merged.CreatedAt.UTC().Format(time.RFC3339Nano))
		return err
	}

	// The superseded operation keeps its row, and with it its position in
	// the FIFO order.
	_, err = db.ExecContext(ctx, `
		UPDATE pending_operations
		SET action = ?, payload = ?, version = ?, priority = ?, attempts = ?, flagged = ?
		WHERE id = ?
	`, merged.Action, payload, merged.Version, merged.Priority, merged.Attempts, merged.Flagged, merged.ID)
	return err
}

func (s *SQLiteStorage) Drain(ctx context.Context, ownerID string) ([]sync.Operation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+operationColumns+`
		FROM pending_operations
		WHERE owner_id = ?
		ORDER BY priority DESC, seq ASC
	`, ownerID)
	if err != nil {
		return nil, &sync.StorageError{Op: "drain queue", Err: err}
	}
	defer rows.Close()

	var ops []sync.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, &sync.StorageError{Op: "scan operation", Err: err}
		}
		ops = append(ops, *op)
	}
	if err := rows.Err(); err != nil {
		return nil, &sync.StorageError{Op: "drain queue", Err: err}
	}
	return ops, nil
}

// Acknowledge, Requeue and Drop all match on version and action besides the
// id: a row superseded by a newer intent after draining keeps that intent.

func (s *SQLiteStorage) Acknowledge(ctx context.Context, op sync.Operation) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM pending_operations
		WHERE id = ? AND version = ? AND action = ?
	`, op.ID, op.Version, op.Action); err != nil {
		return &sync.StorageError{Op: "acknowledge operation", Err: err}
	}
	return nil
}

func (s *SQLiteStorage) Requeue(ctx context.Context, op sync.Operation, flagged bool) error {
	if _, err := s.db.ExecContext(ctx, `
		UPDATE pending_operations
		SET attempts = attempts + 1, flagged = flagged OR ?
		WHERE id = ? AND version = ? AND action = ?
	`, flagged, op.ID, op.Version, op.Action); err != nil {
		return &sync.StorageError{Op: "requeue operation", Err: err}
	}
	return nil
}

func (s *SQLiteStorage) Drop(ctx context.Context, op sync.Operation) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM pending_operations
		WHERE id = ? AND version = ? AND action = ?
	`, op.ID, op.Version, op.Action); err != nil {
		return &sync.StorageError{Op: "drop operation", Err: err}
	}
	return nil
}

func (s *SQLiteStorage) OldestPending(ctx context.Context, ownerID string) (*time.Time, error) {
	var created sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(created_at) FROM pending_operations WHERE owner_id = ?`, ownerID).Scan(&created)
	if err != nil {
		return nil, &sync.StorageError{Op: "oldest pending", Err: err}
	}
	if !created.Valid {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, created.String)
	if err != nil {
		return nil, &sync.StorageError{Op: "oldest pending", Err: err}
	}
	return &ts, nil
}

func scanOperation(row rowScanner) (*sync.Operation, error) {
	var op sync.Operation
	var payload sql.NullString
	var createdAt string

	if err := row.Scan(&op.ID, &op.OwnerID, &op.EntityType, &op.EntityID, &op.Action,
		&payload, &op.Version, &op.Priority, &op.Attempts, &op.Flagged, &createdAt); err != nil {
		return nil, err
	}

	if payload.Valid {
		op.Payload = []byte(payload.String)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, err
	}
	op.CreatedAt = ts
	return &op, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
