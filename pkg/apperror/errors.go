package apperror

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// Reason codes let clients branch on an error without parsing the message
const (
	ReasonValidation             = "validation_failed"
	ReasonNotFound               = "not_found"
	ReasonDuplicateReceiptNumber = "duplicate_receipt_number"
	ReasonRenderFailed           = "render_failed"
	ReasonInternal               = "internal_error"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Reason  string       `json:"reason,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	// Err is the underlying cause. It is logged, never sent to clients.
	Err error `json:"-"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common errors
var (
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error", Reason: ReasonInternal}
	ErrTooManyRequest = &AppError{Code: http.StatusTooManyRequests, Message: "Rate limit exceeded. Please try again later."}
)

// NewValidationError creates a 400 whose message joins every field message
func NewValidationError(fieldErrors []FieldError) *AppError {
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fe.Message)
	}
	message := strings.Join(messages, ", ")
	if message == "" {
		message = "Validation failed"
	}
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Reason:  ReasonValidation,
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
		Reason:  ReasonNotFound,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// NewDuplicateSequenceError reports that a receipt number collided and
// the bounded retry gave up
func NewDuplicateSequenceError(cause error) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: "Receipt number already in use, please try again",
		Reason:  ReasonDuplicateReceiptNumber,
		Err:     cause,
	}
}

// NewRenderError wraps a document rendering failure
func NewRenderError(cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "Failed to generate receipt document",
		Reason:  ReasonRenderFailed,
		Err:     cause,
	}
}

// NewInternalError hides the cause behind a generic message
func NewInternalError(cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: ErrInternalServer.Message,
		Reason:  ReasonInternal,
		Err:     cause,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError. Unknown errors become a generic 500.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}
