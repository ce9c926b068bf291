package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"pdfvault/internal/http/middleware"
	"pdfvault/internal/service"
)

// ErrorDetail carries the machine-readable failure code.
type ErrorDetail struct {
	Code string `json:"code" example:"NOT_FOUND"`
}

// ErrorResponse is the failure envelope. It never carries internal error text.
type ErrorResponse struct {
	Success   bool        `json:"success" example:"false"`
	Message   string      `json:"message" example:"document not found"`
	RequestID string      `json:"request_id,omitempty"`
	Error     ErrorDetail `json:"error"`
}

// writeError writes a failure envelope with a safe, human-readable message.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Success:   false,
		Message:   message,
		RequestID: middleware.GetRequestID(c),
		Error:     ErrorDetail{Code: code},
	})
}

// writeServiceError translates a service error into its HTTP form.
// Integrity faults share the not-found response; server faults are logged
// with their cause and answered generically.
func writeServiceError(c *fiber.Ctx, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, service.ErrTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "file exceeds the maximum upload size")
	case errors.Is(err, service.ErrUnsupportedType):
		return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_TYPE", "only application/pdf files are accepted")
	case errors.Is(err, service.ErrInvalidID):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, service.ErrReaderNil), errors.Is(err, service.ErrFilenameRequired):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	case errors.As(err, &ve):
		return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", ve.Reason)
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrIntegrity):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	}

	slog.Default().ErrorContext(c.UserContext(), "request failed",
		"request_id", middleware.GetRequestID(c),
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that answers with the failure envelope.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			slog.Default().ErrorContext(c.UserContext(), "unhandled error",
				"request_id", middleware.GetRequestID(c),
				"path", c.Path(),
				"error", err,
			)
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "file exceeds the maximum upload size")
		case fiber.StatusRequestTimeout:
			return writeError(c, status, "TIMEOUT", "request timed out")
		}
		if status < fiber.StatusInternalServerError {
			return writeError(c, status, "BAD_REQUEST", "bad request")
		}
		return writeError(c, status, "INTERNAL_ERROR", "internal server error")
	}
}
