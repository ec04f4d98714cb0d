package session

import (
	"strings"
)

// DefaultAccount names the session when no account is given.
const DefaultAccount = "default"

// StoreKey identifies one stored session in a shared store.
type StoreKey struct {
	// Account is the login the session belongs to (usually the e-mail).
	Account string
}

// String generates the Redis key.
// Format: cloudplaya:session:<account>
//
// Example:
//
//	cloudplaya:session:user@example.com
func (k StoreKey) String() string {
	account := strings.ToLower(strings.TrimSpace(k.Account))
	if account == "" {
		account = DefaultAccount
	}
	return "cloudplaya:session:" + account
}
