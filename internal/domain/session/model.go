package session

import (
	"errors"
	"time"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Session is one issued credential pair. Only token hashes are stored; the
// tokens themselves exist client-side only.
type Session struct {
	ID               string
	UserID           string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Tokens is the credential pair handed to the client.
type Tokens struct {
	Access  string
	Refresh string
}
