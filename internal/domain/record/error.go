package record

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("record version conflict")
	ErrInvalidPayload  = errors.New("invalid record payload")
	ErrUnknownEntity   = errors.New("unknown entity type")
	ErrReadOnlyEntity  = errors.New("entity type is not writable by clients")
)
