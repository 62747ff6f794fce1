package errors

import (
	"errors"
)

// Sentinel errors for different categories
var (
	// ErrNotFound - resource not found (unknown persona, unknown tool, unknown model)
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput - invalid input (malformed request body, bad tool arguments)
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable - upstream provider failure (auth, rate limit, timeout).
	// The chat proxy translates this into a spoken fallback, never a raw 5xx.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrTransient - transient error worth retrying on a later turn
	ErrTransient = errors.New("transient error")

	// ErrInternal - internal error
	ErrInternal = errors.New("internal error")
)
