package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docshare/internal/http/middleware"
	"docshare/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID  string        `json:"request_id"`
	Error      errorEnvelope `json:"error"`
	RetryAfter *int          `json:"retry_after,omitempty"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "VALIDATION_ERROR", "NOT_FOUND")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeRateLimited writes the 429 response with the seconds-granular
// retry_after hint.
func writeRateLimited(c *fiber.Ctx, retryAfterSec int) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    "RATE_LIMITED",
			Message: "too many requests",
		},
		RetryAfter: &retryAfterSec,
	}
	return c.Status(fiber.StatusTooManyRequests).JSON(res)
}

// writeServiceError translates service-layer sentinels into HTTP responses.
// Anything unrecognized is reported as a generic internal error so repository
// or storage details never reach response bodies.
func writeServiceError(c *fiber.Ctx, err error) error {
	if denial, ok := service.AsShareDenial(err); ok {
		return writeError(c, fiber.StatusForbidden, denial.Reason, "share access denied")
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "access denied")
	case errors.Is(err, service.ErrUnauthorized):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	case errors.Is(err, service.ErrValidation):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrPasswordRequired):
		return writeError(c, fiber.StatusUnauthorized, "PASSWORD_REQUIRED", "password required")
	case errors.Is(err, service.ErrWrongPassword):
		return writeError(c, fiber.StatusUnauthorized, "INVALID_PASSWORD", "incorrect password")
	case errors.Is(err, service.ErrNoPasswordSet):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "share has no password")
	case errors.Is(err, service.ErrTokenInvalid):
		return writeError(c, fiber.StatusBadRequest, "TOKEN_INVALID", "token is invalid or already used")
	case errors.Is(err, service.ErrTokenExpired):
		return writeError(c, fiber.StatusBadRequest, "TOKEN_EXPIRED", "token has expired")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "unauthorized")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
