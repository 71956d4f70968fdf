// Package response defines consistent HTTP response structures.
// All API responses should use these types for consistency.
package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dtokit/src/core/domain"
	"dtokit/src/core/dto"
)

// Success represents a successful response with data.
type Success struct {
	Data any `json:"data"`
}

// Error represents an error response.
type Error struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Field is the field that caused the error (for single field errors)
	Field string `json:"field,omitempty"`

	// Fields maps input keys to their failure messages
	Fields map[string][]string `json:"fields,omitempty"`

	// RequestID is the request ID for debugging
	RequestID string `json:"request_id,omitempty"`
}

// Paginated represents a paginated list response.
type Paginated struct {
	Data   any   `json:"data"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Success{Data: data})
}

// Created sends a 201 response with the created resource.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Success{Data: data})
}

// Page sends a 200 response with one page of a listing.
func Page(c *gin.Context, data any, total int64, limit, offset int) {
	c.JSON(http.StatusOK, Paginated{Data: data, Total: total, Limit: limit, Offset: offset})
}

// NoContent sends a 204 response with no body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func abort(c *gin.Context, status int, detail ErrorDetail) {
	c.AbortWithStatusJSON(status, Error{Error: detail})
}

// BadRequest sends a 400 response.
func BadRequest(c *gin.Context, message string, requestID string) {
	abort(c, http.StatusBadRequest, ErrorDetail{
		Code:      "BAD_REQUEST",
		Message:   message,
		RequestID: requestID,
	})
}

// ValidationError sends a 400 response for validation failures.
func ValidationError(c *gin.Context, field, message, requestID string) {
	abort(c, http.StatusBadRequest, ErrorDetail{
		Code:      "VALIDATION_ERROR",
		Message:   message,
		Field:     field,
		RequestID: requestID,
	})
}

// FieldErrors sends a 400 response listing every failing input key.
func FieldErrors(c *gin.Context, code, message string, fields map[string][]string, requestID string) {
	abort(c, http.StatusBadRequest, ErrorDetail{
		Code:      code,
		Message:   message,
		Fields:    fields,
		RequestID: requestID,
	})
}

// NotFound sends a 404 response.
func NotFound(c *gin.Context, message, requestID string) {
	abort(c, http.StatusNotFound, ErrorDetail{
		Code:      "NOT_FOUND",
		Message:   message,
		RequestID: requestID,
	})
}

// Conflict sends a 409 response.
func Conflict(c *gin.Context, message, requestID string) {
	abort(c, http.StatusConflict, ErrorDetail{
		Code:      "CONFLICT",
		Message:   message,
		RequestID: requestID,
	})
}

// PayloadTooLarge sends a 413 response.
func PayloadTooLarge(c *gin.Context, limit int64, requestID string) {
	abort(c, http.StatusRequestEntityTooLarge, ErrorDetail{
		Code:      "PAYLOAD_TOO_LARGE",
		Message:   "request body exceeds " + humanBytes(limit),
		RequestID: requestID,
	})
}

// InternalError sends a 500 response.
func InternalError(c *gin.Context, requestID string) {
	abort(c, http.StatusInternalServerError, ErrorDetail{
		Code:      "INTERNAL_ERROR",
		Message:   "An unexpected error occurred",
		RequestID: requestID,
	})
}

// FromDomainError converts a domain or dto error to an appropriate HTTP
// response.
func FromDomainError(c *gin.Context, err error, requestID string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		PayloadTooLarge(c, maxErr.Limit, requestID)
		return
	}

	switch {
	case errors.Is(err, dto.ErrUnknownFields):
		FieldErrors(c, "UNKNOWN_FIELDS", "request contains unknown fields", dto.FieldMessages(err), requestID)
	case errors.Is(err, dto.ErrInputType):
		FieldErrors(c, "INVALID_TYPE", "request contains values of the wrong type", dto.FieldMessages(err), requestID)
	case errors.Is(err, dto.ErrValidation):
		FieldErrors(c, "VALIDATION_ERROR", "request failed validation", dto.FieldMessages(err), requestID)
	case domain.IsNotFound(err):
		NotFound(c, err.Error(), requestID)
	case domain.IsValidationError(err):
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			ValidationError(c, domainErr.Field, domainErr.Message, requestID)
		} else {
			BadRequest(c, err.Error(), requestID)
		}
	case domain.IsConflict(err):
		Conflict(c, err.Error(), requestID)
	default:
		InternalError(c, requestID)
	}
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return strconv.FormatInt(n>>20, 10) + " MiB"
	case n >= 1<<10 && n%(1<<10) == 0:
		return strconv.FormatInt(n>>10, 10) + " KiB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
