package models

import "errors"

// Error kinds surfaced by the record keeper. All are recoverable: callers are
// expected to report them and re-prompt rather than abort.
var (
	ErrValidation = errors.New("validation failed")
	ErrPermission = errors.New("permission denied")
	ErrNotFound   = errors.New("not found")
)
