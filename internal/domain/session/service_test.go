package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// memoryRepository is an in-memory Repository for service tests.
type memoryRepository struct {
	sessions map[string]Session
	byAccess map[string]string
	byRefr   map[string]string
	nextID   int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		sessions: map[string]Session{},
		byAccess: map[string]string{},
		byRefr:   map[string]string{},
	}
}

func (m *memoryRepository) Create(_ context.Context, userID, accessHash, refreshHash string, accessExp, refreshExp time.Time) (string, error) {
	m.nextID++
	id := string(rune('a' + m.nextID))
	m.sessions[id] = Session{ID: id, UserID: userID, AccessExpiresAt: accessExp, RefreshExpiresAt: refreshExp}
	m.byAccess[accessHash] = id
	m.byRefr[refreshHash] = id
	return id, nil
}

func (m *memoryRepository) FindByAccessHash(_ context.Context, hash string) (Session, error) {
	id, ok := m.byAccess[hash]
	if !ok {
		return Session{}, ErrTokenInvalid
	}
	return m.sessions[id], nil
}

func (m *memoryRepository) FindByRefreshHash(_ context.Context, hash string) (Session, error) {
	id, ok := m.byRefr[hash]
	if !ok {
		return Session{}, ErrTokenInvalid
	}
	return m.sessions[id], nil
}

func (m *memoryRepository) Rotate(_ context.Context, sessionID, accessHash, refreshHash string, accessExp, refreshExp time.Time) error {
	sess := m.sessions[sessionID]
	for h, id := range m.byAccess {
		if id == sessionID {
			delete(m.byAccess, h)
		}
	}
	for h, id := range m.byRefr {
		if id == sessionID {
			delete(m.byRefr, h)
		}
	}
	sess.AccessExpiresAt = accessExp
	sess.RefreshExpiresAt = refreshExp
	m.sessions[sessionID] = sess
	m.byAccess[accessHash] = sessionID
	m.byRefr[refreshHash] = sessionID
	return nil
}

func newTestService() (*Service, *memoryRepository) {
	repo := newMemoryRepository()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, log), repo
}

func TestService_CreateAndValidate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tokens, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.Access)
	assert.NotEmpty(t, tokens.Refresh)
	assert.NotEqual(t, tokens.Access, tokens.Refresh)

	userID, err := svc.Validate(ctx, tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = svc.Validate(ctx, "forged-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestService_ValidateExpired(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	tokens, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	// Age the access token past its TTL.
	for id, sess := range repo.sessions {
		sess.AccessExpiresAt = time.Now().Add(-time.Minute)
		repo.sessions[id] = sess
	}

	_, err = svc.Validate(ctx, tokens.Access)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestService_Refresh(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tokens, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, tokens.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.Access, fresh.Access)

	// The new access token works, the rotated-out pair does not.
	userID, err := svc.Validate(ctx, fresh.Access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = svc.Validate(ctx, tokens.Access)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Refresh(ctx, tokens.Refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestService_RefreshExpired(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	tokens, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	for id, sess := range repo.sessions {
		sess.RefreshExpiresAt = time.Now().Add(-time.Minute)
		repo.sessions[id] = sess
	}

	_, err = svc.Refresh(ctx, tokens.Refresh)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
