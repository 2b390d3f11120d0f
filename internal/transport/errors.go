package transport

import (
	"errors"
	"fmt"
)

// ErrNoRefreshToken signals that an authorization failure could not be
// recovered because no refresh token exists.
var ErrNoRefreshToken = errors.New("transport: no refresh token")

// AuthError is the original authorization failure surfaced to callers when
// the refresh path is exhausted. The refresh call's own error is never
// returned in its place, so call sites handle one error shape.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("transport: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("transport: request failed with status %d: %s", e.StatusCode, e.Body)
}

// IsAuthError reports whether err is an exhausted authorization failure.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
