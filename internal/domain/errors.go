package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// Import pipeline taxonomy.
	ErrMalformedRecord     = errors.New("malformed record")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrMissingPartOfSpeech = errors.New("missing part of speech")
	ErrNetworkFailure      = errors.New("network failure")
	ErrUnrecognizedForm    = errors.New("unrecognized form")
	ErrUnknownLanguage     = errors.New("no such installable language")
)

// MalformedRecordError describes a record of the export that could not be
// turned into an Entry. Line is 1-based; zero means the line is unknown.
type MalformedRecordError struct {
	Line   int
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	var loc string
	if e.Line > 0 {
		loc = fmt.Sprintf("line %d: ", e.Line)
	}
	if e.Field != "" {
		return fmt.Sprintf("malformed record: %sfield %q %s", loc, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed record: %s%s", loc, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// NewMalformedRecordError creates a MalformedRecordError for a single field.
func NewMalformedRecordError(field, reason string) *MalformedRecordError {
	return &MalformedRecordError{Field: field, Reason: reason}
}

// FormError reports one element of a forms list that failed shape validation.
// It is always recovered locally: the element is treated as absent.
type FormError struct {
	Index  int
	Reason string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("form %d: %s", e.Index, e.Reason)
}

func (e *FormError) Unwrap() error { return ErrUnrecognizedForm }
