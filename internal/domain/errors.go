package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is implemented by errors that carry their own status code.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors, matched with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Resource string
		Message  string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UpstreamError indicates a third-party service failed
	UpstreamError struct {
		Service string
		Err     error
	}
)

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Resource + " not found"
}

func (e *ValidationError) Error() string { return e.Message }

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }
func (e *UpstreamError) StatusCode() int   { return http.StatusBadGateway }

func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *UpstreamError) Is(target error) bool   { return target == ErrUpstreamUnavailable }

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewNotFound returns a NotFoundError for the named resource
func NewNotFound(resource string) error {
	return &NotFoundError{Resource: resource, Message: resource + " not found"}
}

// NewValidation returns a ValidationError with the given message
func NewValidation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
