package model

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks missing or invalid backend configuration.
// It is fatal for the process.
var ErrConfiguration = errors.New("configuration error")

// ValidationError is a malformed or out-of-range input.
// Its message is reported verbatim to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error for a request field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// BackendError is an upstream call failure or timeout.
// The pipeline absorbs it and degrades the affected item.
type BackendError struct {
	Op  string // extract, retrieve, adjudicate, answer, rephrase
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ParseError is a backend reply that did not contain the expected JSON
type ParseError struct {
	Op  string
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s reply: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("parse %s reply: no JSON payload", e.Op)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
