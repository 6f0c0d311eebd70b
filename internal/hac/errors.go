package hac

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication is returned when the console sends the client back to
	// its login page.
	ErrAuthentication = errors.New("hac: authentication failed")

	// ErrCSRFTokenNotFound is returned when a page carries no _csrf meta tag.
	ErrCSRFTokenNotFound = errors.New("hac: csrf token not found")
)

// StatusError reports a response with a 4xx or 5xx status code.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hac: %s returned status %d", e.URL, e.StatusCode)
}
