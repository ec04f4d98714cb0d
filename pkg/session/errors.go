package session

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed is wrapped by every login failure: network
	// errors, a missing sign-in form, or tokens absent from the player page.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNoCredentials is returned by a Store that holds no session.
	ErrNoCredentials = errors.New("no stored credentials")

	// ErrIncompleteCredentials is returned when a stored session lacks one
	// of the four tokens.
	ErrIncompleteCredentials = errors.New("incomplete credentials")
)

func authFailed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthenticationFailed, fmt.Sprintf(format, args...))
}
