package services

import (
	"errors"
	"fmt"
)

// BackendError wraps a connectivity, query, or mutation failure surfaced
// from the backing store.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: backend error: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func backendErr(op string, err error) error {
	return &BackendError{Op: op, Err: err}
}

// NotFoundError reports a mutation or read that targeted a nonexistent id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ValidationError reports a required-field or shape violation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConflictError reports a mutation blocked by the current state of another
// entity, e.g. deleting a category that links still reference.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}
