// Package common defines sentinel errors shared by the storage, sync and
// service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Category-specific errors. A system category is never mutated or
	// hard-deleted through the ordinary (non-admin) paths.
	ErrSystemCategory = errors.New("system category is read-only")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")
)
