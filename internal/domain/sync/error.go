package sync

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the gateway and the local store. Callers branch
// on these with errors.Is; nothing in the engine inspects error strings.
var (
	// ErrNotFound means the record does not exist in the local store.
	ErrNotFound = errors.New("record not found")

	// ErrCredentialExpired means the remote rejected the call because the
	// access credential is no longer valid. Handled by the auth-retry
	// wrapper with exactly one refresh-and-retry.
	ErrCredentialExpired = errors.New("credential expired")

	// ErrConflict means the remote rejected a push because the carried
	// version does not match its expectation. The operation is requeued
	// flagged for resolution rather than blindly retried.
	ErrConflict = errors.New("record version conflict")

	// ErrValidation means the remote rejected the payload permanently.
	// The pending operation is dropped and logged; retrying a structurally
	// invalid payload can never succeed.
	ErrValidation = errors.New("payload rejected by remote")

	// ErrSyncInProgress means a sync cycle for the owner is already running.
	ErrSyncInProgress = errors.New("sync already in progress")
)

// StorageError wraps a local persistence failure. It is never retried
// automatically: a lost local write would desynchronize version counters, so
// it surfaces to the caller immediately.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NetworkError wraps a transient transport failure, including timeouts. The
// pending operation stays queued with an incremented attempt counter.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsStorage reports whether err is, or wraps, a local storage failure.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsNetwork reports whether err is, or wraps, a transient transport failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
