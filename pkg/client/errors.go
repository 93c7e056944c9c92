package client

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned for calls made with a nil or logged-out Session.
// No request is sent.
var ErrNoSession = errors.New("no active session")

const (
	msgRequestFailed = "Request failed"
	msgNetworkError  = "Network error"
)

// APIError is a non-2xx answer from the server. Message is the server's
// "error" field when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notekeeper: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
