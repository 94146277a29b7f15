package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// UserID represents an opaque user identifier supplied by the caller
type UserID string

// Validate checks if the UserID is valid
func (u UserID) Validate() error {
	if u == "" {
		return goerr.New("user ID cannot be empty")
	}
	return nil
}

// String returns the string representation of UserID
func (u UserID) String() string {
	return string(u)
}

// SessionID represents a unique identifier for a single pipeline run
type SessionID string

// NewSessionID generates a new time-ordered session ID
func NewSessionID() SessionID {
	return SessionID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of SessionID
func (s SessionID) String() string {
	return string(s)
}

// ContentID represents a unique identifier of a curated content item
type ContentID string

// Validate checks if the ContentID is valid
func (c ContentID) Validate() error {
	if c == "" {
		return goerr.New("content ID cannot be empty")
	}
	return nil
}

// String returns the string representation of ContentID
func (c ContentID) String() string {
	return string(c)
}
