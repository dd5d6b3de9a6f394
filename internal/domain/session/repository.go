package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, userID, accessHash, refreshHash string, accessExpiresAt, refreshExpiresAt time.Time) (string, error)
	FindByAccessHash(ctx context.Context, hash string) (Session, error)
	FindByRefreshHash(ctx context.Context, hash string) (Session, error)

	// Rotate swaps both token hashes of an existing session, invalidating the
	// old pair in the same statement.
	Rotate(ctx context.Context, sessionID, accessHash, refreshHash string, accessExpiresAt, refreshExpiresAt time.Time) error
}
