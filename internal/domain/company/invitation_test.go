package company

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type mockInvitationRepo struct {
	mock.Mock
}

func (m *mockInvitationRepo) Activate(ctx context.Context, code, ownerID string) (Link, error) {
	args := m.Called(ctx, code, ownerID)
	return args.Get(0).(Link), args.Error(1)
}

func TestService_ActivateInvitation(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("success", func(t *testing.T) {
		repo := &mockInvitationRepo{}
		repo.On("Activate", ctx, "INV-123", "owner-1").
			Return(Link{CompanyID: "c-1", CompanyName: "Acme Logistics", Status: StatusActive}, nil)

		link, err := NewService(repo, log).ActivateInvitation(ctx, "owner-1", ActivateArgs{Code: "INV-123"})
		require.NoError(t, err)
		assert.Equal(t, StatusActive, link.Status)
	})

	t.Run("empty code never reaches the repository", func(t *testing.T) {
		repo := &mockInvitationRepo{}

		_, err := NewService(repo, log).ActivateInvitation(ctx, "owner-1", ActivateArgs{})
		assert.ErrorIs(t, err, ErrMissingInvitationCode)
		repo.AssertNotCalled(t, "Activate")
	})

	t.Run("used code surfaces as sentinel", func(t *testing.T) {
		repo := &mockInvitationRepo{}
		repo.On("Activate", ctx, "INV-123", "owner-1").Return(Link{}, ErrCodeUsed)

		_, err := NewService(repo, log).ActivateInvitation(ctx, "owner-1", ActivateArgs{Code: "INV-123"})
		assert.ErrorIs(t, err, ErrCodeUsed)
	})
}
