package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Throttling
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Kind classifies a domain error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindUnavailable
)

// Error is a typed domain error returned by services.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(message string) *Error   { return &Error{Kind: KindValidation, Message: message} }
func NotFound(message string) *Error     { return &Error{Kind: KindNotFound, Message: message} }
func Conflict(message string) *Error     { return &Error{Kind: KindConflict, Message: message} }
func Unauthorized(message string) *Error { return &Error{Kind: KindUnauthorized, Message: message} }
func Unavailable(message string) *Error  { return &Error{Kind: KindUnavailable, Message: message} }

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first domain error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindInternal
}

// APIError represents the error member of a failure envelope
type APIError struct {
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Envelope is the uniform response body.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      *APIError   `json:"error,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
}

// Debug controls whether internal error details reach the client.
// The composition root sets it from the gin mode.
var Debug = true

// RespondWithError sends a failure envelope
func RespondWithError(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, Envelope{
		Success: false,
		Message: message,
		Error:   &APIError{Code: code, Details: details},
	})
}

// Respond translates err into a status code and failure envelope.
func Respond(c *gin.Context, err error) {
	var domainErr *Error
	if !errors.As(err, &domainErr) {
		_ = c.Error(err)
		var details interface{}
		if Debug {
			details = err.Error()
		}
		RespondWithError(c, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error", details)
		return
	}

	switch domainErr.Kind {
	case KindValidation:
		BadRequest(c, domainErr.Message)
	case KindNotFound:
		NotFoundResponse(c, domainErr.Message)
	case KindConflict:
		ConflictResponse(c, domainErr.Message)
	case KindUnauthorized:
		UnauthorizedResponse(c, domainErr.Message)
	case KindUnavailable:
		ServiceUnavailable(c, domainErr.Message)
	default:
		InternalError(c, domainErr.Message)
	}
}

// Helper functions for common error responses

// UnauthorizedResponse sends a 401 response
func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, ErrCodeUnauthorized, message, nil)
}

// NotFoundResponse sends a 404 response
func NotFoundResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, ErrCodeNotFound, message, nil)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, ErrCodeInvalidInput, message, nil)
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	if !Debug {
		details = nil
	}
	RespondWithError(c, http.StatusBadRequest, ErrCodeInvalidInput, message, details)
}

// ConflictResponse sends a 409 response
func ConflictResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, ErrCodeConflict, message, nil)
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "Too many requests"
	}
	RespondWithError(c, http.StatusTooManyRequests, ErrCodeTooManyRequests, message, nil)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, ErrCodeInternalError, message, nil)
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message, nil)
}
