// Package common defines shared constants and sentinel errors used across
// QuickPad components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Input errors (empty note, malformed username, unknown export format).
	ErrorValidation    = errors.New("validation error")
	ErrorInvalidFormat = errors.New("invalid format")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")
)
