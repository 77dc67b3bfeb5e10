package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"

	"taskapi/internal/http/middleware"
	"taskapi/internal/repository"
	"taskapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes a standardized JSON error response.
// message must be safe to show to clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

type errorMapping struct {
	status  int
	code    string
	message string // empty: use err.Error()
}

// classify maps service and repository errors onto the HTTP error contract.
func classify(err error) errorMapping {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		return errorMapping{fiber.StatusBadRequest, "INVALID_ID", ""}
	case errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrInvalidAmount):
		return errorMapping{fiber.StatusBadRequest, "VALIDATION_ERROR", ""}
	case errors.Is(err, service.ErrNotFound):
		return errorMapping{fiber.StatusNotFound, "NOT_FOUND", ""}
	case errors.Is(err, repository.ErrReferentialIntegrity):
		return errorMapping{fiber.StatusUnprocessableEntity, "REFERENTIAL_INTEGRITY", "referenced customer or plan does not exist"}
	case errors.Is(err, repository.ErrDuplicate):
		return errorMapping{fiber.StatusConflict, "DUPLICATE", "resource already exists"}
	case errors.Is(err, repository.ErrUnsupported), errors.Is(err, service.ErrReceiptsDisabled):
		return errorMapping{fiber.StatusNotImplemented, "NOT_IMPLEMENTED", "operation not supported"}
	case errors.Is(err, repository.ErrTransport), errors.Is(err, repository.ErrConnection):
		return errorMapping{fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable"}
	default:
		return errorMapping{fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"}
	}
}

// ErrorHandler returns the fiber error handler. Errors returned by route
// handlers are mapped onto the error envelope; 5xx details are logged with the
// request and trace ids and never sent to the client.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusBadRequest:
				return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
			case fiber.StatusNotFound:
				return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
			case fiber.StatusMethodNotAllowed:
				return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
			case fiber.StatusRequestEntityTooLarge:
				return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large")
			}
			if fe.Code < fiber.StatusInternalServerError {
				return writeError(c, fe.Code, "REQUEST_ERROR", fe.Message)
			}
		}

		m := classify(err)
		if m.status >= fiber.StatusInternalServerError {
			attrs := []any{
				"request_id", requestIDFromCtx(c),
				"method", c.Method(),
				"path", c.Path(),
				"status", m.status,
				"error", err.Error(),
			}
			if sc := trace.SpanContextFromContext(c.UserContext()); sc.HasTraceID() {
				attrs = append(attrs, "trace_id", sc.TraceID().String())
			}
			log.ErrorContext(c.UserContext(), "request_failed", attrs...)
		}

		msg := m.message
		if msg == "" {
			msg = err.Error()
		}
		return writeError(c, m.status, m.code, msg)
	}
}
