package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"tripkeeper/internal/domain/session"
)

type SessionRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewSessionRepository(db *Storage, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		db:  db,
		log: log,
	}
}

func (r *SessionRepository) Create(ctx context.Context, userID, accessHash, refreshHash string, accessExpiresAt, refreshExpiresAt time.Time) (string, error) {
	var id string
	err := r.db.Pool().QueryRow(ctx, `
		INSERT INTO sessions (user_id, access_hash, refresh_hash, access_expires_at, refresh_expires_at)
		VALUES ($1, decode($2, 'hex'), decode($3, 'hex'), $4, $5)
		RETURNING id
	`, userID, accessHash, refreshHash, accessExpiresAt, refreshExpiresAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return id, nil
}

func (r *SessionRepository) FindByAccessHash(ctx context.Context, hash string) (session.Session, error) {
	return r.find(ctx, `access_hash = decode($1, 'hex')`, hash)
}

func (r *SessionRepository) FindByRefreshHash(ctx context.Context, hash string) (session.Session, error) {
	return r.find(ctx, `refresh_hash = decode($1, 'hex')`, hash)
}

func (r *SessionRepository) find(ctx context.Context, where, hash string) (session.Session, error) {
	var s session.Session
	err := r.db.Pool().QueryRow(ctx, `
		SELECT id, user_id, access_expires_at, refresh_expires_at
		FROM sessions
		WHERE `+where, hash).
		Scan(&s.ID, &s.UserID, &s.AccessExpiresAt, &s.RefreshExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, session.ErrTokenInvalid
	}
	if err != nil {
		return s, fmt.Errorf("find session: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) Rotate(ctx context.Context, sessionID, accessHash, refreshHash string, accessExpiresAt, refreshExpiresAt time.Time) error {
	tag, err := r.db.Pool().Exec(ctx, `
		UPDATE sessions
		SET access_hash = decode($2, 'hex'),
		    refresh_hash = decode($3, 'hex'),
		    access_expires_at = $4,
		    refresh_expires_at = $5
		WHERE id = $1
	`, sessionID, accessHash, refreshHash, accessExpiresAt, refreshExpiresAt)
	if err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrTokenInvalid
	}
	return nil
}
