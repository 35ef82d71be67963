package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/brightpath/adapt-api/internal/domain"
	"github.com/brightpath/adapt-api/internal/generation"
	"github.com/brightpath/adapt-api/internal/service"
	"github.com/brightpath/adapt-api/internal/service/auth"
	"github.com/brightpath/adapt-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrWrongAssessmentQuestion),
		errors.Is(err, service.ErrQuestionNotInSession):
		return http.StatusBadRequest

	// Ownership errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Lifecycle conflicts
	case errors.Is(err, domain.ErrAssessmentComplete),
		errors.Is(err, domain.ErrAssessmentNotComplete):
		return http.StatusConflict

	// Pool exhaustion is not a failure; the client is told there is
	// nothing left to serve.
	case errors.Is(err, service.ErrNoQuestionsAvailable):
		return http.StatusNotFound

	// Generation errors
	case errors.Is(err, generation.ErrGenerationDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusBadGateway
	case errors.Is(err, generation.ErrTransientFailure):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrQuestionNotFound):
		return "Question not found"

	case errors.Is(err, store.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, store.ErrAssessmentNotFound):
		return "Assessment not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username already taken"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, domain.ErrInvalidDifficulty):
		return "Invalid difficulty level"

	case errors.Is(err, domain.ErrWrongAssessmentQuestion):
		return "Question does not match the current assessment step"

	case errors.Is(err, domain.ErrAssessmentComplete):
		return "Assessment is already complete"

	case errors.Is(err, domain.ErrAssessmentNotComplete):
		return "Assessment is not complete yet"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this resource"

	case errors.Is(err, service.ErrQuestionNotInSession):
		return "Question does not belong to this session"

	case errors.Is(err, service.ErrNoQuestionsAvailable):
		return "No questions available"

	case errors.Is(err, generation.ErrGenerationDisabled):
		return "Question generation is not configured"

	case errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrTransientFailure):
		return "Question generation failed"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'LoginRequest.Login' Error:Field validation for
	// 'Login' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gt", "gte":
		return "value too small"
	case "lt", "lte":
		return "value too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
