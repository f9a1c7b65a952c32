package kickapi

import (
	"errors"
	"fmt"
)

// ErrTokenRequired is returned before any I/O when an endpoint needs an
// OAuth token and the client was built without one.
var ErrTokenRequired = errors.New("kickapi: OAuth token required for this endpoint")

// APIError is a non-success response from the API.
type APIError struct {
	// Status is the HTTP status code.
	Status int

	// Message is the server-provided error message, when one was returned.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("kickapi: HTTP %d", e.Status)
	}
	return fmt.Sprintf("kickapi: HTTP %d: %s", e.Status, e.Message)
}
