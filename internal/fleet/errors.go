package fleet

import (
	"errors"
	"fmt"
)

// ErrNoChanges means an update would have written the values already
// stored, so nothing was persisted.
var ErrNoChanges = errors.New("no changes to apply")

// ValidationError carries a field-level message suitable for a 400
// response.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PartialFailureError is returned when a multi-step operation committed
// its first write but a later write failed. Completed and Failed name
// the steps so callers can tell the user exactly what state the system
// is in.
type PartialFailureError struct {
	Completed string
	Failed    string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s succeeded but %s failed: %v", e.Completed, e.Failed, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
