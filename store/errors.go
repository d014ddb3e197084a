package store

import "errors"

var (
	ErrNotFound      = errors.New("key not found")
	ErrAlreadyExists = errors.New("key already exists")
	ErrStoreClosed   = errors.New("store is closed")
)

// CorruptValueError reports a stored value that could not be decoded back
// into its original shape: a truncated write, a foreign key sharing our
// prefix, or a bit-rotted database page. Sentry captures every occurrence
// since, unlike ErrNotFound, it signals the store itself may be damaged.
type CorruptValueError struct {
	Reason string
}

func (e *CorruptValueError) Error() string {
	return "store: corrupt value: " + e.Reason
}
