package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 30 * 24 * time.Hour
)

type Servicer interface {
	Create(ctx context.Context, userID string) (Tokens, error)
	Validate(ctx context.Context, accessToken string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "session_service"),
	}
}

// Create issues a fresh token pair for the user.
func (s *Service) Create(ctx context.Context, userID string) (Tokens, error) {
	tokens, err := newTokens()
	if err != nil {
		return Tokens{}, err
	}

	now := time.Now()
	_, err = s.repo.Create(ctx, userID, hashToken(tokens.Access), hashToken(tokens.Refresh),
		now.Add(accessTTL), now.Add(refreshTTL))
	if err != nil {
		return Tokens{}, fmt.Errorf("save session: %w", err)
	}

	return tokens, nil
}

// Validate resolves an access token to its user. An expired token is reported
// distinctly so the API layer can tell the client to refresh.
func (s *Service) Validate(ctx context.Context, accessToken string) (string, error) {
	sess, err := s.repo.FindByAccessHash(ctx, hashToken(accessToken))
	if err != nil {
		return "", ErrTokenInvalid
	}

	if time.Now().After(sess.AccessExpiresAt) {
		return "", ErrTokenExpired
	}

	return sess.UserID, nil
}

// Refresh exchanges a valid refresh token for a new pair, rotating both so a
// replayed old pair stops working.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	sess, err := s.repo.FindByRefreshHash(ctx, hashToken(refreshToken))
	if err != nil {
		return Tokens{}, ErrTokenInvalid
	}

	if time.Now().After(sess.RefreshExpiresAt) {
		return Tokens{}, ErrTokenExpired
	}

	tokens, err := newTokens()
	if err != nil {
		return Tokens{}, err
	}

	now := time.Now()
	err = s.repo.Rotate(ctx, sess.ID, hashToken(tokens.Access), hashToken(tokens.Refresh),
		now.Add(accessTTL), now.Add(refreshTTL))
	if err != nil {
		return Tokens{}, fmt.Errorf("rotate session: %w", err)
	}

	s.log.Debug("session refreshed", "user_id", sess.UserID)
	return tokens, nil
}

func newTokens() (Tokens, error) {
	access, err := randomToken()
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := randomToken()
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{Access: access, Refresh: refresh}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
