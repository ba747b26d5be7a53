package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrorKind is the closed set of failure categories the core exposes to
// the HTTP boundary.
type ErrorKind string

const (
	KindInvalidInput        ErrorKind = "invalid_input"
	KindProviderUnavailable ErrorKind = "provider_unavailable"
	KindStorageUnavailable  ErrorKind = "storage_unavailable"
	KindNotFound            ErrorKind = "not_found"
)

// AppError carries an ErrorKind alongside the wrapped cause.
type AppError struct {
	Kind    ErrorKind
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

// NewInvalidInput reports a request the caller should not retry.
func NewInvalidInput(message string) *AppError {
	return &AppError{Kind: KindInvalidInput, Message: message}
}

// WrapProvider marks an embedding or chat-model failure.
func WrapProvider(message string, err error) *AppError {
	return &AppError{Kind: KindProviderUnavailable, Message: message, Err: err}
}

// WrapStorage marks a vector-index failure.
func WrapStorage(message string, err error) *AppError {
	return &AppError{Kind: KindStorageUnavailable, Message: message, Err: err}
}

// KindOf extracts the ErrorKind from an error chain. Unclassified errors
// report as empty.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// ClassifyProviderError narrows a provider failure for the caller:
// "timeout" for connection-level problems, "quota" for rate limiting,
// "provider" for everything else.
func ClassifyProviderError(err error) string {
	if err == nil {
		return ""
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "timeout"
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection") || strings.Contains(msg, "timeout") {
		return "timeout"
	}
	if strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") {
		return "quota"
	}
	return "provider"
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithNotFound sends a 404 Not Found error
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, "not_found", message, nil)
}

// RespondWithInternalError sends a 500 Internal Server Error
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}

// RespondWithAppError maps the error taxonomy to HTTP statuses: input
// errors are 400, provider and storage outages are 503, missing resources
// are 404, anything unclassified is 500.
func RespondWithAppError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		RespondWithInternalError(c, err.Error(), nil)
		return
	}

	switch appErr.Kind {
	case KindInvalidInput:
		RespondWithError(c, http.StatusBadRequest, string(appErr.Kind), appErr.Message, nil)
	case KindProviderUnavailable:
		RespondWithError(c, http.StatusServiceUnavailable, string(appErr.Kind), appErr.Error(),
			gin.H{"category": ClassifyProviderError(appErr.Err)})
	case KindStorageUnavailable:
		RespondWithError(c, http.StatusServiceUnavailable, string(appErr.Kind), appErr.Error(), nil)
	case KindNotFound:
		RespondWithNotFound(c, appErr.Message)
	default:
		RespondWithInternalError(c, appErr.Error(), nil)
	}
}
