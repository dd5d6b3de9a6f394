package client

import (
	"context"
	"errors"

	"tripkeeper/internal/domain/sync"
)

// withAuthRetry runs one gateway call, and on an expired credential forces a
// refresh and re-issues the call exactly once. A failed refresh, or a second
// expiry, propagates to the caller; there is no retry loop here.
func withAuthRetry(ctx context.Context, refresher sync.Refresher, call func(ctx context.Context) error) error {
	err := call(ctx)
	if !errors.Is(err, sync.ErrCredentialExpired) {
		return err
	}

	if refreshErr := refresher.Refresh(ctx, true); refreshErr != nil {
		return refreshErr
	}

	return call(ctx)
}
