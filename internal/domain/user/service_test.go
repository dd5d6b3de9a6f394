package user

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, login, passwordHash string) (string, error) {
	args := m.Called(ctx, login, passwordHash)
	return args.String(0), args.Error(1)
}

func (m *mockRepository) FindByLogin(ctx context.Context, login string) (User, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(User), args.Error(1)
}

func newTestService(repo Repository) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, NewPasswordValidator(), log)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("Create", ctx, "driver", mock.AnythingOfType("string")).Return("user-1", nil)

		id, err := newTestService(repo).Register(ctx, "driver", "Sup3rSecret")
		require.NoError(t, err)
		assert.Equal(t, "user-1", id)

		// The repository must receive a bcrypt hash, never the password.
		hash := repo.Calls[0].Arguments.String(2)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Sup3rSecret")))
	})

	t.Run("rejects weak password", func(t *testing.T) {
		repo := &mockRepository{}

		_, err := newTestService(repo).Register(ctx, "driver", "short")
		assert.ErrorIs(t, err, ErrInvalidInput)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects bad login", func(t *testing.T) {
		repo := &mockRepository{}

		_, err := newTestService(repo).Register(ctx, "a b", "Sup3rSecret")
		assert.ErrorIs(t, err, ErrInvalidInput)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("taken login surfaces as sentinel", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("Create", ctx, "driver", mock.AnythingOfType("string")).Return("", ErrLoginTaken)

		_, err := newTestService(repo).Register(ctx, "driver", "Sup3rSecret")
		assert.ErrorIs(t, err, ErrLoginTaken)
	})
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := User{ID: "user-1", Login: "driver", PasswordHash: string(hash)}

	t.Run("success", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("FindByLogin", ctx, "driver").Return(stored, nil)

		u, err := newTestService(repo).Authenticate(ctx, "driver", "Sup3rSecret")
		require.NoError(t, err)
		assert.Equal(t, "user-1", u.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("FindByLogin", ctx, "driver").Return(stored, nil)

		_, err := newTestService(repo).Authenticate(ctx, "driver", "WrongPass1")
		assert.ErrorIs(t, err, ErrInvalidAuth)
	})

	t.Run("unknown login gives same error as wrong password", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("FindByLogin", ctx, "nobody").Return(User{}, ErrNotFound)

		_, err := newTestService(repo).Authenticate(ctx, "nobody", "Sup3rSecret")
		assert.ErrorIs(t, err, ErrInvalidAuth)
	})
}
