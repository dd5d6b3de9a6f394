package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

type Servicer interface {
	List(ctx context.Context, ownerID, entityType string) ([]Record, error)
	Upsert(ctx context.Context, ownerID, entityType, id string, payload json.RawMessage, version int64) (Record, error)
	Delete(ctx context.Context, ownerID, entityType, id string) error
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "record_service"),
	}
}

func (s *Service) List(ctx context.Context, ownerID, entityType string) ([]Record, error) {
	if !IsEntityType(entityType) {
		return nil, ErrUnknownEntity
	}
	return s.repo.ListActive(ctx, ownerID, entityType)
}

// Upsert applies a client push under optimistic concurrency: the incoming
// version must move past the stored one, otherwise the client is working from
// stale state and has to pull first. An upsert over a soft-deleted record
// revives it under the same rule.
func (s *Service) Upsert(ctx context.Context, ownerID, entityType, id string, payload json.RawMessage, version int64) (Record, error) {
	if !IsEntityType(entityType) {
		return Record{}, ErrUnknownEntity
	}
	if !IsWritableEntityType(entityType) {
		return Record{}, ErrReadOnlyEntity
	}
	if id == "" || version < 1 || len(payload) == 0 || !json.Valid(payload) {
		return Record{}, ErrInvalidPayload
	}

	existing, err := s.repo.Find(ctx, ownerID, entityType, id)
	switch {
	case err == nil:
		if version <= existing.Version {
			s.log.Debug("stale push rejected", "entity_type", entityType, "id", id,
				"incoming", version, "stored", existing.Version)
			return Record{}, ErrVersionConflict
		}
	case errors.Is(err, ErrNotFound):
	default:
		return Record{}, fmt.Errorf("find record: %w", err)
	}

	rec := Record{
		ID:         id,
		OwnerID:    ownerID,
		EntityType: entityType,
		Payload:    payload,
		Version:    version,
		UpdatedAt:  time.Now(),
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("save record: %w", err)
	}
	return rec, nil
}

// Delete is idempotent: deleting a record that never existed, or one already
// deleted, succeeds. Clients retry deletes after network failures, and the
// second attempt must not turn into an error.
func (s *Service) Delete(ctx context.Context, ownerID, entityType, id string) error {
	if !IsEntityType(entityType) {
		return ErrUnknownEntity
	}
	if err := s.repo.MarkDeleted(ctx, ownerID, entityType, id, time.Now()); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}
