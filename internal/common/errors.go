// Package common defines shared constants and sentinel errors used across
// the timerocket server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Placement / showcase errors.
	ErrorCapacityExceeded = errors.New("capacity exceeded")
	ErrorInvalidState     = errors.New("invalid state")

	// Boundary validation errors (malformed category, sort field, etc).
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
