package backend

import (
	"errors"
	"fmt"
)

// Sentinel errors for backend responses the workflow cares about
var (
	ErrUnauthorized = errors.New("backend rejected the session credential")
	ErrNotFound     = errors.New("backend resource not found")
)

// StatusError carries an unexpected upstream status for logging.
// The body snippet never reaches API clients, only logs.
type StatusError struct {
	Status int    // HTTP status code returned upstream
	Body   string // Truncated response body
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}
