package backend

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("backend unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrNoSession    = errors.New("no session")
	// ErrSessionEnded reports a grant dropped because the session it
	// belonged to was signed out or replaced while the request ran.
	ErrSessionEnded = errors.New("session ended")
)

// APIError is a non-2xx response the backend explained with a message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}
