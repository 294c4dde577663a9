package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure classes returned by the gateway
var (
	ErrTransport          = errors.New("network error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrRemote             = errors.New("remote failure")
	ErrGraphQL            = errors.New("graphql error")
	ErrMalformed          = errors.New("malformed response")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// RemoteError is a failure reported by the API itself (as opposed to a
// transport failure that never reached it)
type RemoteError struct {
	Status  int    // HTTP status, 0 when the status was 2xx
	Message string // first GraphQL error message or response body excerpt
	Err     error  // one of ErrUnauthorized, ErrRemote, ErrGraphQL, ErrMalformed
}

func (e *RemoteError) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("%v (%d): %s", e.Err, e.Status, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%v: %s", e.Err, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%v (%d)", e.Err, e.Status)
	default:
		return e.Err.Error()
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsSessionInvalidating reports whether the status must drop the session
func IsSessionInvalidating(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
