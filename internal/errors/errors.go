package errors

import "fmt"

// Error codes
const (
	ErrCodeInvalidGrade      = "INVALID_GRADE"
	ErrCodeInvalidPriorState = "INVALID_PRIOR_STATE"
	ErrCodeNoItemsAvailable  = "NO_ITEMS_AVAILABLE"
	ErrCodeUnknownItem       = "UNKNOWN_ITEM"
	ErrCodeNoActiveSession   = "NO_ACTIVE_SESSION"
	ErrCodeSessionBusy       = "SESSION_BUSY"
	ErrCodeProviderFailure   = "PROVIDER_FAILURE"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "UNKNOWN_ITEM", "PROVIDER_FAILURE")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code so callers can test with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewInvalidGradeError reports a grade outside the accepted 1..4 range.
func NewInvalidGradeError(grade int) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidGrade,
		Message: fmt.Sprintf("grade must be between 1 and 4, got %d", grade),
		Status:  400,
	}
}

// NewInvalidPriorStateError reports corrupt scheduling state fed to the scheduler.
func NewInvalidPriorStateError(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidPriorState,
		Message: fmt.Sprintf("invalid prior schedule state: %s", reason),
		Status:  422,
	}
}

// NewNoItemsAvailableError reports an empty due set at session start.
func NewNoItemsAvailableError() *AppError {
	return &AppError{
		Code:    ErrCodeNoItemsAvailable,
		Message: "no items are due for review",
		Status:  409,
	}
}

// NewUnknownItemError reports a grade submitted for an item not in the session.
func NewUnknownItemError(itemID string) *AppError {
	return &AppError{
		Code:    ErrCodeUnknownItem,
		Message: fmt.Sprintf("item not part of the active session: %s", itemID),
		Status:  404,
	}
}

// NewNoActiveSessionError reports a lifecycle call with no session started.
func NewNoActiveSessionError() *AppError {
	return &AppError{
		Code:    ErrCodeNoActiveSession,
		Message: "no active study session",
		Status:  409,
	}
}

// NewSessionBusyError reports a second mutation dispatched while one is in flight.
func NewSessionBusyError() *AppError {
	return &AppError{
		Code:    ErrCodeSessionBusy,
		Message: "a session operation is already in progress",
		Status:  409,
	}
}

// NewProviderFailureError wraps a transport/storage level failure from a collaborator.
func NewProviderFailureError(provider string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeProviderFailure,
		Message: fmt.Sprintf("%s provider failed", provider),
		Status:  502,
		Err:     err,
	}
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}
