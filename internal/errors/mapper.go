package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MapUpstream maps errors from the upstream LLM or telephony APIs into the
// Frontdesk taxonomy. Auth failures, rate limits, timeouts, and network
// errors all collapse into ErrProviderUnavailable: to a live phone call they
// are the same condition, and the caller only needs to know whether a safe
// fallback utterance is required.
func MapUpstream(err error) error {
	if err == nil {
		return nil
	}

	// Propagate caller cancellation as-is
	if errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timeout: %w", ErrProviderUnavailable)
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "unauthorized"), strings.Contains(errStr, "invalid api key"),
		strings.Contains(errStr, "incorrect api key"), strings.Contains(errStr, "401"):
		return fmt.Errorf("authentication failed: %w", ErrProviderUnavailable)

	case strings.Contains(errStr, "rate limit"), strings.Contains(errStr, "quota"),
		strings.Contains(errStr, "too many requests"), strings.Contains(errStr, "429"):
		return fmt.Errorf("rate limited: %w", ErrProviderUnavailable)

	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return fmt.Errorf("request timeout: %w", ErrProviderUnavailable)

	case strings.Contains(errStr, "connection"), strings.Contains(errStr, "network"),
		strings.Contains(errStr, "unreachable"), strings.Contains(errStr, "no such host"):
		return fmt.Errorf("network error: %w", ErrProviderUnavailable)

	case strings.Contains(errStr, "not found"), strings.Contains(errStr, "does not exist"):
		return fmt.Errorf("resource not found: %w", ErrNotFound)

	case strings.Contains(errStr, "invalid input"), strings.Contains(errStr, "invalid request"),
		strings.Contains(errStr, "bad request"):
		return fmt.Errorf("invalid request: %w", ErrInvalidInput)

	default:
		return fmt.Errorf("upstream error: %w", ErrProviderUnavailable)
	}
}

// Category returns the taxonomy label for an error, for structured logging.
func Category(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return "ErrNotFound"
	case errors.Is(err, ErrInvalidInput):
		return "ErrInvalidInput"
	case errors.Is(err, ErrProviderUnavailable):
		return "ErrProviderUnavailable"
	case errors.Is(err, ErrTransient):
		return "ErrTransient"
	case errors.Is(err, ErrInternal):
		return "ErrInternal"
	default:
		return "Unknown"
	}
}

// Wrap wraps an error with context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsCategory checks if error belongs to a specific category.
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

// NotFound wraps a message as not found.
func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

// InvalidInput wraps a message as invalid input.
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// ProviderUnavailable wraps a message as provider unavailable.
func ProviderUnavailable(message string) error {
	return fmt.Errorf("%s: %w", message, ErrProviderUnavailable)
}

// Internal wraps a message as internal.
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}
