// Package domain holds the error kinds shared by every aggregate and service.
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError so transports can map it to a status code.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindValidation   ErrorKind = "VALIDATION"
	KindConflict     ErrorKind = "CONFLICT"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindUnavailable  ErrorKind = "UNAVAILABLE"
)

// DomainError is a business-level error with a stable kind and optional code.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewValidationError reports invalid input.
func NewValidationError(msg string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: msg}
}

// NewConflictError reports a uniqueness or concurrency violation.
func NewConflictError(msg string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: msg}
}

// NewForbiddenError reports an authenticated caller acting outside its rights.
func NewForbiddenError(msg string) *DomainError {
	return &DomainError{Kind: KindForbidden, Message: msg}
}

// NewUnauthorizedError reports missing or bad credentials.
func NewUnauthorizedError(msg string) *DomainError {
	return &DomainError{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: msg}
}

// NewUnavailableError reports a dependency the request cannot proceed without.
func NewUnavailableError(msg string) *DomainError {
	return &DomainError{Kind: KindUnavailable, Message: msg}
}

// WithCode returns a copy of the error carrying a machine-readable code.
func (e *DomainError) WithCode(code string) *DomainError {
	cp := *e
	cp.Code = code
	return &cp
}

// IsKind reports whether err (or anything it wraps) is a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}
