// Package response writes the JSON envelopes shared by every endpoint and maps
// service errors to HTTP statuses.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bcm-backend/shared/apperrors"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// Envelope is the success response format.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorBody is the error response format.
type ErrorBody struct {
	Success   bool        `json:"success"`
	Error     string      `json:"error"`
	Code      string      `json:"code"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// OK writes data with the given status.
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// Message writes a success envelope that only carries a message.
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: true, Message: message})
}

// Created writes data with 201.
func Created(c *gin.Context, data interface{}) {
	OK(c, http.StatusCreated, data)
}

// Error maps err to a status and writes the error body. Unknown errors are logged by
// the caller's logging middleware and hidden from the client.
func Error(c *gin.Context, err error) {
	status, body := Describe(err)
	body.RequestID = c.GetString(RequestIDKey)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

// Abort writes the error body and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// BadRequest reports a request that could not be bound, e.g. malformed JSON or ids.
func BadRequest(c *gin.Context, message string, details interface{}) {
	c.JSON(http.StatusBadRequest, ErrorBody{
		Error:     message,
		Code:      ErrorCode(http.StatusBadRequest),
		Details:   details,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Describe returns the status and body for err.
func Describe(err error) (int, ErrorBody) {
	var (
		validation *apperrors.ValidationError
		conflict   *apperrors.ConflictError
		notFound   *apperrors.NotFoundError
		authz      *apperrors.AuthorizationError
		tenancy    *apperrors.TenancyError
	)

	switch {
	case errors.As(err, &validation):
		var details interface{}
		switch {
		case len(validation.InvalidIDs) > 0:
			details = gin.H{"invalid_ids": validation.InvalidIDs}
		case len(validation.Fields) > 0:
			details = gin.H{"fields": validation.Fields}
		}
		return body(http.StatusUnprocessableEntity, validation.Error(), details)
	case errors.As(err, &conflict):
		return body(http.StatusConflict, conflict.Message, nil)
	case errors.As(err, &notFound):
		return body(http.StatusNotFound, notFound.Error(), nil)
	case errors.As(err, &tenancy):
		// cross-tenant rows are reported exactly like missing ones
		return body(http.StatusNotFound, "Resource not found", nil)
	case errors.As(err, &authz):
		return body(http.StatusForbidden, authz.Error(), gin.H{"reason": authz.Reason, "required": authz.Missing})
	case errors.Is(err, apperrors.ErrForbidden):
		return body(http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return body(http.StatusUnauthorized, err.Error(), nil)
	default:
		return body(http.StatusInternalServerError, "Internal server error", nil)
	}
}

func body(status int, message string, details interface{}) (int, ErrorBody) {
	return status, ErrorBody{Error: message, Code: ErrorCode(status), Details: details}
}

// ErrorCode returns the machine readable code for an HTTP status.
func ErrorCode(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusInternalServerError:
		return "INTERNAL_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}
