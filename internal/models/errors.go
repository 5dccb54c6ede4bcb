package models

import "errors"

// Domain error taxonomy. Repositories translate storage-level failures
// (unique/FK violations, missing rows) into these; anything that does not
// wrap one of them is an infrastructure failure and may be retried.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("forbidden")
)
