package services

import (
	"errors"
	"fmt"

	apperrors "github.com/matelog-ae/course-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Catalog errors
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrContentNotFound  = errors.New("content block not found")
	ErrExerciseNotFound = errors.New("exercise not found")

	// Progress errors
	ErrTopicLocked      = errors.New("topic is locked for this learner")
	ErrProgressNotFound = errors.New("topic progress not found")
	ErrTopicNotStarted  = errors.New("topic has not been started")
	ErrExerciseNotInSet = errors.New("exercise is not part of the learner's set")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrLessonNotFound) ||
		errors.Is(err, ErrTopicNotFound) ||
		errors.Is(err, ErrContentNotFound) ||
		errors.Is(err, ErrExerciseNotFound) ||
		errors.Is(err, ErrProgressNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrExerciseNotInSet) ||
		errors.Is(err, ErrTopicNotStarted)
}

// IsLocked checks if error represents a lock gating failure
func IsLocked(err error) bool {
	return errors.Is(err, ErrTopicLocked)
}
