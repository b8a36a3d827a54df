package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors shared across services and repositories. Handlers translate
// these into HTTP status codes at the boundary.
var (
	ErrNotFound        = errors.New("requested resource not found")
	ErrConflict        = errors.New("resource already exists or conflicts")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrBadRequest      = errors.New("invalid request")
)

// ValidationError reports every violated field of a payload together. A write
// guarded by validation is never partially applied.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = message
}

func (e *ValidationError) HasViolations() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrBadRequest }

// FieldViolation builds a single-field ValidationError, used for referential
// and uniqueness failures that surface with the validation shape.
func FieldViolation(field, message string) *ValidationError {
	v := NewValidationError()
	v.Add(field, message)
	return v
}

// ConflictError is a uniqueness violation reported by the persistence provider.
// It unwraps to ErrConflict and carries the field so handlers can surface it
// with the validation shape.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Message)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ReferentialError is raised when a payload references a record that does not
// exist (a creator username in referential mode). It is distinct from plain
// field validation but surfaces with the same response shape.
type ReferentialError struct {
	Field   string
	Message string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("referential failure on %s: %s", e.Field, e.Message)
}

func (e *ReferentialError) Unwrap() error { return ErrBadRequest }
