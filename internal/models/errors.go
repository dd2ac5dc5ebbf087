package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input. It is raised before any store call.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means the referenced complaint does not exist.
	ErrNotFound = errors.New("complaint not found")
	// ErrStoreUnavailable means the persistence service is unreachable or failed.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrUpload means the blob store rejected or failed an image upload.
	ErrUpload = errors.New("image upload failed")

	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidDepartment  = errors.New("invalid department")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidContentType = errors.New("unsupported image content type")
	ErrMissingField       = errors.New("missing required field")
)

// ValidationError describes a rejected input value.
// It matches both ErrValidation and its specific Kind with errors.Is.
type ValidationError struct {
	Field   string
	Value   string
	Kind    error
	Allowed string
}

func (e *ValidationError) Error() string {
	kind := ErrValidation
	if e.Kind != nil {
		kind = e.Kind
	}
	if e.Allowed != "" {
		return fmt.Sprintf("%v %q for %s (must be one of: %s)", kind, e.Value, e.Field, e.Allowed)
	}
	if e.Value == "" {
		return fmt.Sprintf("%v: %s", kind, e.Field)
	}
	return fmt.Sprintf("%v %q for %s", kind, e.Value, e.Field)
}

func (e *ValidationError) Unwrap() []error {
	if e.Kind == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Kind}
}

// MissingField builds the ValidationError for an absent or blank required field.
func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field, Kind: ErrMissingField}
}
