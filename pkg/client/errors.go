package client

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// NetworkErrorMessage is shown when the server could not be reached at all
const NetworkErrorMessage = "Network error. Please check your connection and try again."

// ReasonDuplicateReceiptNumber is the reason the server gives when two
// receipts raced for the same number
const ReasonDuplicateReceiptNumber = "duplicate_receipt_number"

// FieldError is one rejected field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a response the server sent with a non-2xx status
type APIError struct {
	StatusCode int
	Message    string
	Reason     string
	Fields     []FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// NetworkError means no response was received
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsDuplicateReceiptNumber reports whether err is the server's "number
// already in use" answer, which is safe to retry
func IsDuplicateReceiptNumber(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Reason == ReasonDuplicateReceiptNumber
}

// UserMessage picks the sentence to show a person for err: the server's own
// message, the network notice, or fallback for anything else
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return NetworkErrorMessage
	}
	return fallback
}
