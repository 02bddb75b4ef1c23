// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint so that
// success and failure bodies keep one predictable shape.
//
// Conventions:
//   - Every error body is {"error": <string or object>} plus the request id.
//   - fail() centralizes error logging and formatting; 5xx responses are
//     logged with the request-scoped logger. The stable machine code from
//     errors.go travels in the X-Error-Code header.
//   - ok() writes success bodies.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	X-Error-Code: not_found
//	{
//	  "error": {"Not Found": "Sorry, we don't have a cafe at that location."},
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-cafe-api/internal/domain"
	"github.com/tbourn/go-cafe-api/internal/http/middleware"
)

// HeaderErrorCode carries the machine-readable error code of a failure.
const HeaderErrorCode = "X-Error-Code"

// ErrorResponse is the error envelope returned by all endpoints.
//
// Error is either a plain message or a one-entry object whose key names the
// kind of failure ("Not Found", "Invalid").
type ErrorResponse struct {
	Error any `json:"error" swaggertype:"object"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
}

// CafeResponse wraps a single cafe.
type CafeResponse struct {
	Cafe domain.Cafe `json:"cafe"`
}

// CafesResponse wraps a list of cafes. The key is singular for
// compatibility with existing clients.
type CafesResponse struct {
	Cafe []domain.Cafe `json:"cafe"`
}

// SuccessResponse is returned by successful writes:
// {"response": {"Success": "..."}}.
type SuccessResponse struct {
	Response map[string]string `json:"response"`
}

// fail aborts the request with the error envelope and logs server errors.
func fail(c *gin.Context, status int, code string, body any) {
	resp := ErrorResponse{
		Error:     body,
		RequestID: middleware.RequestIDFrom(c),
	}
	if resp.RequestID == "" {
		resp.RequestID = c.Writer.Header().Get("X-Request-ID")
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Interface("error", body).
			Msg("api error")
	}

	c.Header(HeaderErrorCode, code)
	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(), used by the router fallbacks.
func Fail(c *gin.Context, status int, code string, body any) { fail(c, status, code, body) }

// kind builds the one-entry error object, e.g. {"Not Found": msg}.
func kind(k, msg string) map[string]string {
	return map[string]string{k: msg}
}

// success builds the success envelope.
func success(msg string) SuccessResponse {
	return SuccessResponse{Response: map[string]string{"Success": msg}}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
