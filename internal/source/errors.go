// internal/source/errors.go
package source

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey     = errors.New("source: API key is not configured")
	ErrMalformedResponse = errors.New("source: malformed response")
)

// StatusError is returned for any non-2xx upstream response that survived
// the transport's retries.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("source: %s %s: http status %d", e.Method, e.URL, e.StatusCode)
}

// IsStatus reports whether err wraps a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
