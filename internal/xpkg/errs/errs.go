// Package errs defines the error taxonomy shared by every service.
//
// Each type follows the same pattern: a sentinel for errors.Is checks, a
// struct carrying details, a constructor, and Unwrap returning the sentinel.
// Synchronous handlers map these to HTTP status codes via HTTPStatus; consumer
// loops use the sentinels to decide between drop and requeue.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrExternalService = errors.New("external service error")
	ErrTransient       = errors.New("transient infrastructure error")
	ErrMalformedEvent  = errors.New("malformed event")
)

// ValidationError reports bad input or an illegal state transition. It is
// returned to the caller and never retried.
type ValidationError struct {
	Message string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return "validation error: " + e.Message }
func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports a missing aggregate.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ForbiddenError reports an ownership or permission failure.
type ForbiddenError struct {
	Message string
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func (e *ForbiddenError) Error() string { return "forbidden: " + e.Message }
func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// ExternalServiceError reports a collaborator that was unreachable or answered
// with a failure. Safe for the caller to retry.
type ExternalServiceError struct {
	Service string
	Cause   error
}

func NewExternalServiceError(service string, cause error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Cause: cause}
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s failed: %v", e.Service, e.Cause)
}
func (e *ExternalServiceError) Unwrap() error { return ErrExternalService }

// TransientError reports a bus or connection failure. Consumers retry it with
// backoff and never surface it as a permanent failure.
type TransientError struct {
	Cause error
}

func NewTransientError(cause error) *TransientError {
	return &TransientError{Cause: cause}
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient infrastructure error: %v", e.Cause)
}
func (e *TransientError) Unwrap() error { return ErrTransient }

// MalformedEventError reports an undecodable payload or a missing type tag.
// The message is logged and dropped, never retried.
type MalformedEventError struct {
	Cause error
}

func NewMalformedEventError(cause error) *MalformedEventError {
	return &MalformedEventError{Cause: cause}
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed event: %v", e.Cause)
}
func (e *MalformedEventError) Unwrap() error { return ErrMalformedEvent }

// HTTPStatus maps an error to the status code reported to synchronous callers.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the stable error tag used in response bodies.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrExternalService):
		return "EXTERNAL_SERVICE_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}
