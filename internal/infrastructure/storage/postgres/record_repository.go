package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"tripkeeper/internal/domain/record"
)

type RecordRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewRecordRepository(db *Storage, log *slog.Logger) *RecordRepository {
	return &RecordRepository{
		db:  db,
		log: log,
	}
}

func (r *RecordRepository) ListActive(ctx context.Context, ownerID, entityType string) ([]record.Record, error) {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT id, owner_id, entity_type, payload, version, updated_at
		FROM records
		WHERE owner_id = $1 AND entity_type = $2 AND NOT deleted
		ORDER BY updated_at DESC
	`, ownerID, entityType)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []record.Record
	for rows.Next() {
		var rec record.Record
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.EntityType, &rec.Payload,
			&rec.Version, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (r *RecordRepository) Find(ctx context.Context, ownerID, entityType, id string) (record.Record, error) {
	var rec record.Record
	err := r.db.Pool().QueryRow(ctx, `
		SELECT id, owner_id, entity_type, payload, version, updated_at, deleted
		FROM records
		WHERE owner_id = $1 AND entity_type = $2 AND id = $3
	`, ownerID, entityType, id).
		Scan(&rec.ID, &rec.OwnerID, &rec.EntityType, &rec.Payload,
			&rec.Version, &rec.UpdatedAt, &rec.Deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, record.ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("find record: %w", err)
	}
	return rec, nil
}

func (r *RecordRepository) Save(ctx context.Context, rec record.Record) error {
	_, err := r.db.Pool().Exec(ctx, `
		INSERT INTO records (id, owner_id, entity_type, payload, version, updated_at, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		ON CONFLICT (owner_id, entity_type, id) DO UPDATE SET
			payload = excluded.payload,
			version = excluded.version,
			updated_at = excluded.updated_at,
			deleted = FALSE
	`, rec.ID, rec.OwnerID, rec.EntityType, rec.Payload, rec.Version, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

func (r *RecordRepository) MarkDeleted(ctx context.Context, ownerID, entityType, id string, at time.Time) error {
	_, err := r.db.Pool().Exec(ctx, `
		UPDATE records
		SET deleted = TRUE, updated_at = $4
		WHERE owner_id = $1 AND entity_type = $2 AND id = $3
	`, ownerID, entityType, id, at)
	if err != nil {
		return fmt.Errorf("mark record deleted: %w", err)
	}
	return nil
}
