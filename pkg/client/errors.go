package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrNotAuthenticated is returned by API calls made before a session
	// was loaded or obtained.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotFound is returned by exact lookups that match nothing.
	ErrNotFound = errors.New("not found")
)

// RemoteRequestError is an explicit rejection by the remote service. Message
// and Code are the remote's own, untranslated.
type RemoteRequestError struct {
	Operation  string
	StatusCode int
	Message    string
	Code       string
}

// Error implements the error interface.
func (e *RemoteRequestError) Error() string {
	return fmt.Sprintf("cirrus %s rejected (status %d): %s [%s]",
		e.Operation, e.StatusCode, e.Message, e.Code)
}

// TransportError is a network-level failure: connection errors, timeouts,
// cancelled contexts and truncated responses. Callers may retry these.
type TransportError struct {
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("cirrus %s transport error: %v", e.Operation, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRemote reports whether err is a RemoteRequestError.
func IsRemote(err error) bool {
	var remote *RemoteRequestError
	return errors.As(err, &remote)
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}
