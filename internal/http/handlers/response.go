// Package handlers implements the HTTP endpoints of the rental API: auth,
// users, listings, rental requests, and payments. Handlers translate between
// the JSON surface and the service layer, and every endpoint answers with
// the same envelopes so clients can handle errors uniformly.
//
// An error always looks like:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "resource not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nesthunt/go-rental-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope shared by every endpoint. Code is a
// stable machine-readable string (see errors.go), Message is safe to show
// to end users, and RequestID ties the response to the server logs.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"resource not found"`
}

// fail aborts the request with a structured error. 5xx responses are also
// logged through the request-scoped logger so they show up with the
// correlation fields attached.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail lets code outside the package (router fallbacks, middleware wiring)
// emit the same envelope as the handlers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
