package company

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"
)

var (
	ErrCodeNotFound = errors.New("invitation code not found")
	ErrCodeUsed     = errors.New("invitation code already used")
)

// InvitationRepository consumes invitation codes. Activate must burn the code
// and create the owner's company link in one transaction, so a code is spent
// exactly once no matter how often the call is retried concurrently.
type InvitationRepository interface {
	Activate(ctx context.Context, code, ownerID string) (Link, error)
}

type Servicer interface {
	ActivateInvitation(ctx context.Context, ownerID string, args ActivateArgs) (Link, error)
}

type Service struct {
	repo InvitationRepository
	log  *slog.Logger
}

func NewService(repo InvitationRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "company_service"),
	}
}

func (s *Service) ActivateInvitation(ctx context.Context, ownerID string, args ActivateArgs) (Link, error) {
	if err := args.Validate(); err != nil {
		return Link{}, err
	}

	link, err := s.repo.Activate(ctx, args.Code, ownerID)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) || errors.Is(err, ErrCodeUsed) {
			return Link{}, err
		}
		return Link{}, fmt.Errorf("activate invitation: %w", err)
	}

	s.log.Info("invitation activated", "owner_id", ownerID, "company_id", link.CompanyID)
	return link, nil
}
