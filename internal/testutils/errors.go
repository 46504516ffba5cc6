package testutils

import "github.com/ahrav/go-prospect/internal/ports"

// FakeProviderError is a scripted service error with explicit
// retryability, used to exercise orchestrator retry paths.
type FakeProviderError struct {
	// Msg is the error text.
	Msg string

	// Retryable marks the failure as transient.
	Retryable bool
}

var _ ports.RetryableError = (*FakeProviderError)(nil)

// Error implements the error interface.
func (e *FakeProviderError) Error() string { return e.Msg }

// IsRetryable reports the scripted retryability.
func (e *FakeProviderError) IsRetryable() bool { return e.Retryable }

// Transient returns a retryable scripted error.
func Transient(msg string) *FakeProviderError {
	return &FakeProviderError{Msg: msg, Retryable: true}
}

// Permanent returns a non-retryable scripted error.
func Permanent(msg string) *FakeProviderError {
	return &FakeProviderError{Msg: msg, Retryable: false}
}
