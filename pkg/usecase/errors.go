package usecase

import "errors"

// Sentinel errors for the use case layer
var (
	// ErrInvalidInput covers the only rejected request class: missing or
	// malformed required fields. Everything else degrades.
	ErrInvalidInput = errors.New("invalid input")
)

// Context keys for error values
const (
	UserIDKey    = "user_id"
	SessionIDKey = "session_id"
)
