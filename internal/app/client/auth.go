package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"tripkeeper/internal/app/client/config"
	"tripkeeper/internal/domain/sync"
)

// Session is the persisted credential state for the signed-in owner.
type Session struct {
	OwnerID      string    `json:"owner_id"`
	Login        string    `json:"login"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	RefreshedAt  time.Time `json:"refreshed_at"`
}

// SessionStore holds the current session in memory and mirrors it to disk so
// a restart keeps the user signed in.
type SessionStore struct {
	mu      gosync.RWMutex
	path    string
	session Session
}

func NewSessionStore(path string) (*SessionStore, error) {
	s := &SessionStore{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(data, &s.session); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return s, nil
}

func (s *SessionStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken
}

func (s *SessionStore) OwnerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.OwnerID
}

func (s *SessionStore) Login() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Login
}

func (s *SessionStore) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken != "" && s.session.OwnerID != ""
}

// Set replaces the whole session, e.g. after login.
func (s *SessionStore) Set(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	return s.persist()
}

// UpdateTokens swaps in refreshed credentials, keeping the owner identity.
func (s *SessionStore) UpdateTokens(access, refresh string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.AccessToken = access
	if refresh != "" {
		s.session.RefreshToken = refresh
	}
	s.session.RefreshedAt = at
	return s.persist()
}

// Clear wipes the session on logout.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *SessionStore) refreshToken() (string, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.RefreshToken, s.session.RefreshedAt
}

func (s *SessionStore) persist() error {
	data, err := json.MarshalIndent(s.session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// AuthRefresher exchanges the refresh token for a fresh access token over the
// auth endpoint. Calls are serialized; a non-forced refresh right after a
// successful one is a no-op, which makes concurrent retries idempotent.
type AuthRefresher struct {
	mu      gosync.Mutex
	client  *http.Client
	session *SessionStore
	log     *slog.Logger
	baseURL string

	// minInterval suppresses duplicate refreshes racing for the same
	// expired credential.
	minInterval time.Duration
}

func NewAuthRefresher(cfg *config.Config, session *SessionStore, log *slog.Logger) *AuthRefresher {
	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}
	return &AuthRefresher{
		client:      &http.Client{Timeout: 15 * time.Second},
		session:     session,
		log:         log.With("component", "auth_refresher"),
		baseURL:     scheme + cfg.ServerAddress,
		minInterval: 5 * time.Second,
	}
}

func (r *AuthRefresher) Refresh(ctx context.Context, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	refresh, refreshedAt := r.session.refreshToken()
	if refresh == "" {
		return sync.ErrCredentialExpired
	}
	if !force && time.Since(refreshedAt) < r.minInterval {
		return nil
	}

	body, err := json.Marshal(struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refresh})
	if err != nil {
		return fmt.Errorf("marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/v1/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return &sync.NetworkError{Op: "refresh credential", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// The refresh token itself is gone; only a fresh login helps.
		return sync.ErrCredentialExpired
	}
	if resp.StatusCode != http.StatusOK {
		return &sync.NetworkError{Op: "refresh credential", Err: fmt.Errorf("server returned status %d", resp.StatusCode)}
	}

	var out struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}

	if err := r.session.UpdateTokens(out.Token, out.RefreshToken, time.Now()); err != nil {
		return err
	}

	r.log.Debug("credential refreshed")
	return nil
}
