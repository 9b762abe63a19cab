package types

import (
	"fmt"
	"net/http"
)

const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeValidation     = "VALIDATION_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeDuplicateEntry = "DUPLICATE_ENTRY"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL_ERROR"
)

// FieldError is one entry of a VALIDATION_ERROR details list.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is an error that knows how it should be rendered to the client.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) HTTPStatus() int {
	return e.Status
}

func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

func BadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, CodeBadRequest, message)
}

func Validation(message string, fields []FieldError) *APIError {
	e := NewAPIError(http.StatusBadRequest, CodeValidation, message)
	e.Details = map[string]any{"errors": fields}
	return e
}

func Unauthorized(message string) *APIError {
	if message == "" {
		message = "Unauthorized"
	}
	return NewAPIError(http.StatusUnauthorized, CodeUnauthorized, message)
}

func Forbidden(message string) *APIError {
	if message == "" {
		message = "Forbidden"
	}
	return NewAPIError(http.StatusForbidden, CodeForbidden, message)
}

// NotFound renders as "<resource> not found".
func NotFound(resource string) *APIError {
	if resource == "" {
		resource = "Resource"
	}
	return NewAPIError(http.StatusNotFound, CodeNotFound, resource+" not found")
}

func Conflict(message string) *APIError {
	return NewAPIError(http.StatusConflict, CodeDuplicateEntry, message)
}

func TooManyRequests(message string) *APIError {
	return NewAPIError(http.StatusTooManyRequests, CodeRateLimited, message)
}

func Internal(err error) *APIError {
	e := NewAPIError(http.StatusInternalServerError, CodeInternal, "Internal server error")
	e.Err = err
	return e
}
