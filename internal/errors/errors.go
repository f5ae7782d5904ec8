package errors

import (
	"errors"
	"fmt"
)

// Error Handling Guidelines:
//
// For the identity and backend transports:
//   - Return *ProviderError / *BackendRejection for failures the remote side reported
//   - Wrap transport failures with fmt.Errorf("context: %w", err) so Classify can see them
//   - Do not log errors that are returned (avoid double logging)
//
// For the auth client:
//   - Every public flow converts errors into a failed Outcome
//   - Log only best-effort paths whose errors are swallowed (rollback attempts, logout notify)

// ProviderError is a failure reported by the identity provider.
type ProviderError struct {
	Code    string // provider code, e.g. "auth/wrong-password"
	Message string // provider's raw message
	Status  int    // HTTP status of the provider response, 0 when local
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return fmt.Sprintf("Firebase: Error (%s).", e.Code)
}

// creates a provider error with the provider's default message for code
func NewProviderError(code string) *ProviderError {
	return &ProviderError{
		Code:    code,
		Message: fmt.Sprintf("Firebase: Error (%s).", code),
	}
}

// BackendRejection is a non-2xx answer from the backend verification API.
type BackendRejection struct {
	Status  int
	Message string // the body's message field, empty when absent
}

func (e *BackendRejection) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return fmt.Sprintf("backend responded with status %d", e.Status)
}

// RollbackError reports a compensation that could not delete the
// provider account created earlier in the same flow.
type RollbackError struct {
	UID string
	Err error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback of provider account %s failed: %v", e.UID, e.Err)
}

func (e *RollbackError) Unwrap() error {
	return e.Err
}

// returns the provider error in err's chain, if any
func AsProvider(err error) (*ProviderError, bool) {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr, true
	}

	return nil, false
}

// returns the backend rejection in err's chain, if any
func AsBackend(err error) (*BackendRejection, bool) {
	var rejection *BackendRejection
	if errors.As(err, &rejection) {
		return rejection, true
	}

	return nil, false
}

// returns the provider code carried by err, or ""
func ProviderCode(err error) string {
	if providerErr, ok := AsProvider(err); ok {
		return providerErr.Code
	}

	return ""
}

// reports whether err carries the given provider code
func HasCode(err error, code string) bool {
	return ProviderCode(err) == code
}
