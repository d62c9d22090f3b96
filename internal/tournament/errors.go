package tournament

import "fmt"

// The scheduler reports failures through a small typed taxonomy so callers
// can map them to user-facing behavior without string matching.

// ValidationError marks malformed or rule-violating input. No state is
// mutated when one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError marks an operation against an unknown player or match id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ConflictError marks an action that would violate mutual exclusion, e.g.
// assigning a busy court. It is reported as a soft failure; the operation
// simply does not apply.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Reason)
}

// StoreIOError marks a transient failure against the backing row store
// after retries were exhausted. State is unchanged.
type StoreIOError struct {
	Op  string
	Err error
}

func (e *StoreIOError) Error() string {
	return fmt.Sprintf("store io failure during %s: %v", e.Op, e.Err)
}

func (e *StoreIOError) Unwrap() error { return e.Err }

// ConsistencyError marks corrupted state (duplicate ids, malformed stored
// rows). It aborts the whole operation and must never be silently repaired.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency violation: %s", e.Reason)
}

// NewConsistencyError builds a ConsistencyError with a formatted reason.
func NewConsistencyError(format string, args ...any) error {
	return &ConsistencyError{Reason: fmt.Sprintf(format, args...)}
}
