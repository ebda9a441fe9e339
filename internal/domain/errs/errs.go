// Package errs defines the error taxonomy shared by every pipeline stage.
//
// Classification matters to callers:
//   - *ValidationError: a bad input parameter, raised before any I/O.
//   - ErrSourceUnavailable: an upstream fetch failed (network, non-2xx).
//   - ErrUnexpectedSchema: a fetched document violates the assumed shape.
//   - ErrUnmappedQuarterColumn: internal invariant violation in the
//     balance transform; reaching it is a defect, not a runtime condition.
//
// All errors are wrapped with %w so callers classify with errors.Is/As.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable marks network or service fetch failures.
	// Fatal to the run; there are no retries.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrUnexpectedSchema marks a fetched document whose shape violates
	// the structure an adapter assumes (missing columns, bad payload).
	ErrUnexpectedSchema = errors.New("unexpected schema")

	// ErrUnmappedQuarterColumn marks a quarter column that survived
	// filtering but has no ordinal mapping. Should be unreachable.
	ErrUnmappedQuarterColumn = errors.New("unmapped quarter column")
)

// ValidationError reports a malformed input parameter. It always names
// the offending parameter so the caller can point at it.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// Validation builds a ValidationError for the named parameter.
func Validation(param, reason string) error {
	return &ValidationError{Param: param, Reason: reason}
}

// Unavailable wraps err as a source fetch failure for the given upstream.
func Unavailable(upstream string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, upstream, err)
}

// Schema reports a structural violation in a fetched document.
func Schema(detail string) error {
	return fmt.Errorf("%w: %s", ErrUnexpectedSchema, detail)
}
