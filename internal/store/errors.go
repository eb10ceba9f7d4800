package store

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when caller input is rejected before any write.
	ErrValidation = errors.New("validation failed")

	// ErrReferentialConstraint is returned when a write references a row that
	// does not exist, or a delete would orphan dependent rows.
	ErrReferentialConstraint = errors.New("referential constraint violated")

	// ErrUniqueConstraint is returned for uniqueness violations that are not
	// handled as a soft conflict (e.g. a duplicate user email).
	ErrUniqueConstraint = errors.New("unique constraint violated")

	// ErrStorage wraps engine and I/O failures.
	ErrStorage = errors.New("storage fault")
)

// ValidationError describes a rejected field. When Reference is set the
// field is a foreign key that did not resolve, and the error also matches
// ErrReferentialConstraint.
type ValidationError struct {
	Field     string
	Value     any
	Reason    string
	Reference bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return e.Reference && target == ErrReferentialConstraint
}

func missingReference(field string, value any) error {
	return &ValidationError{Field: field, Value: value, Reason: "does not exist", Reference: true}
}

func requiredField(field string) error {
	return &ValidationError{Field: field, Value: "", Reason: "is required"}
}

func storageFault(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStorage, err)
}
