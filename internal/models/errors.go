package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned in API responses. Codes are stable; messages are not.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeDuplicatePending = "DUPLICATE_PENDING"
	CodeAlreadyResolved  = "ALREADY_RESOLVED"
	CodeAlreadyConsumed  = "ALREADY_CONSUMED"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewDuplicatePendingError is returned when a submission targets a
// (resource, action) pair that already has a pending request.
func NewDuplicatePendingError(resourceID string, action ApprovalAction) *AppError {
	return &AppError{
		Code: CodeDuplicatePending,
		Message: fmt.Sprintf(
			"Approval already requested for %s on %s. Please wait for the L2 engineer to approve or reject the previous request before submitting again.",
			action, resourceID),
	}
}

// NewAlreadyResolvedError is returned for replayed approve/reject attempts
// on a request that has already left the pending state.
func NewAlreadyResolvedError(id string, status ApprovalStatus) *AppError {
	return &AppError{
		Code:    CodeAlreadyResolved,
		Message: fmt.Sprintf("Request %s has already been processed (status: %s)", id, status),
	}
}

// NewAlreadyConsumedError is returned when an approved request is popped
// from the executor queue a second time.
func NewAlreadyConsumedError(id string) *AppError {
	return &AppError{
		Code:    CodeAlreadyConsumed,
		Message: fmt.Sprintf("Approved request %s has already been consumed by the executor", id),
	}
}

// NewStoreUnavailableError wraps an underlying persistence failure.
func NewStoreUnavailableError(err error) *AppError {
	return &AppError{
		Code:    CodeStoreUnavailable,
		Message: "Approval store unavailable",
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
