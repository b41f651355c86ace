// Package common defines shared constants and sentinel errors used across
// the store, cache and session layers of agentdesk. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound = errors.New("not found")
	ErrStorage  = errors.New("storage error")

	// Network failure classification used by the offline cache.
	ErrNetwork = errors.New("network error")
	ErrTimeout = errors.New("network timeout")

	// Session / auth errors.
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidLoginPassword = errors.New("invalid login/password")
	ErrLoginAlreadyExists   = errors.New("login already exists")
)
