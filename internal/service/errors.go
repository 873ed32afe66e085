package service

import (
	"fmt"
	"strings"
)

// ValidationError reports a request that is malformed or violates the
// booking policy.  Handlers map it to 400.
type ValidationError struct {
	Reason  string
	Missing []string // required fields that were absent, if any
	Err     error
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConflictError reports that the requested slot is taken.  For a series in
// which no week could be booked, Failures carries every per-week reason.
// Handlers map it to 409.
type ConflictError struct {
	Reason   string
	Failures []WeekOutcome
	Err      error
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Unwrap() error { return e.Err }

// NotFoundError is returned when a booking does not exist or belongs to
// someone else.  The two cases are deliberately indistinguishable.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found or not authorized", e.Resource, e.ID)
}

// StorageError wraps a failure of the booking store.  It is never retried
// by the service.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// FormatError reports an unparsable clock time.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time %q: expected HH:MM", e.Value)
}
