package types

import "errors"

// Store lifecycle and lookup errors.
var (
	ErrStoreClosed     = errors.New("store is closed")
	ErrAlreadyOpen     = errors.New("store is already open")
	ErrNotFound        = errors.New("not found")
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidData     = errors.New("invalid data")
	ErrUnknownCategory = errors.New("unknown service category")
)
