package apperr

import "errors"

// The three error kinds the service layer distinguishes. Handlers map them
// onto HTTP statuses; everything else is treated as an internal error.
var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid request")
)
