package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound          = errors.New("not found")
	ErrOrphanedReference = errors.New("orphaned resource reference")
	ErrInvalidSnapshot   = errors.New("invalid snapshot")
)
