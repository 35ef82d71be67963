package service

import (
	"errors"
	"fmt"
)

// Common service-level errors
var (
	// ErrNoQuestionsAvailable indicates the question pool for a subject is empty.
	ErrNoQuestionsAvailable = errors.New("no questions available for subject")

	// ErrQuestionNotInSession indicates the submitted question does not belong
	// to the session's subject pool.
	ErrQuestionNotInSession = errors.New("question does not belong to this session")

	// ErrNotOwned indicates the session or assessment belongs to a
	// different user than the caller.
	ErrNotOwned = errors.New("unauthorized access: resource not owned by user")
)

// ServiceError is a custom error type carrying the failed operation for
// logging and error mapping. It wraps the underlying error so callers can
// use errors.Is/errors.As.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
