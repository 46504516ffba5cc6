package domain

import (
	"errors"
	"fmt"
)

// Common domain errors raised by the scoring and clustering engines.
// Engine-level structural errors abort the pipeline stage that raised
// them; they are never retried.
var (
	// ErrEmptyInput indicates that no data survived a filtering step.
	ErrEmptyInput = errors.New("empty input")

	// ErrNoClusters indicates that density clustering classified every
	// point as noise.
	ErrNoClusters = errors.New("no clusters formed")

	// ErrUnscoredSite indicates that a site reached a stage requiring a
	// score before the scoring engine assigned one.
	ErrUnscoredSite = errors.New("site has no score")
)

// ConfigError reports bad or missing configuration. It is fatal and
// surfaced immediately: it indicates a setup mistake, not a data
// condition.
type ConfigError struct {
	// Field names the configuration entry that is invalid.
	Field string

	// Reason describes why the value was rejected.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Reason)
}

// NewConfigError creates a ConfigError for the given field.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// EmptyInputError wraps ErrEmptyInput with enough context to diagnose
// which threshold emptied the set.
type EmptyInputError struct {
	// Stage names the pipeline stage whose filter produced no data.
	Stage string

	// Detail describes the filter and its threshold.
	Detail string
}

// Error implements the error interface.
func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Stage, ErrEmptyInput, e.Detail)
}

// Unwrap allows errors.Is(err, ErrEmptyInput).
func (e *EmptyInputError) Unwrap() error { return ErrEmptyInput }

// MalformedUnitError reports an evaluation unit that cannot be
// evaluated at all. It is isolated: the unit is recorded in the failure
// ledger and the rest of the batch continues.
type MalformedUnitError struct {
	// SubjectID identifies the unit, when known.
	SubjectID string

	// Err is the underlying construction failure.
	Err error
}

// Error implements the error interface.
func (e *MalformedUnitError) Error() string {
	return fmt.Sprintf("malformed unit %s: %v", e.SubjectID, e.Err)
}

// Unwrap returns the underlying error.
func (e *MalformedUnitError) Unwrap() error { return e.Err }
