package errs

import "errors"

// Domain sentinel errors, mapped to HTTP status codes in handlers.
var (
	ErrAuthRejected     = errors.New("session not resolvable")
	ErrInvalidThreshold = errors.New("alert threshold must be an integer >= 1")
	ErrFaceNotFound     = errors.New("face not found")
	ErrDuplicateFace    = errors.New("face name already registered")
)
