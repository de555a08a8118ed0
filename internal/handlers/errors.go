package handlers

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string              `json:"error"`
	Code      string              `json:"code"`
	Details   map[string][]string `json:"details"`
	Timestamp time.Time           `json:"timestamp"`
	Path      string              `json:"path"`
}

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindDuplicate:
		return fiber.StatusConflict
	case services.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as an ErrorResponse.
func writeError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	se := services.AsError(err)
	if se.Kind == services.KindInternal {
		logger.ErrorContext(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return send(c, statusFor(se.Kind), string(se.Kind), se.Message, se.Details)
}

func send(c *fiber.Ctx, status int, code, message string, details map[string][]string) error {
	if details == nil {
		details = map[string][]string{}
	}
	return c.Status(status).JSON(ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		Timestamp: time.Now().UTC(),
		Path:      c.Path(),
	})
}

// ErrorHandler renders errors that escape route handlers, such as unknown
// routes and recovered panics, in the same envelope.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			code := strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(fe.Code), " ", "_"))
			return send(c, fe.Code, code, fe.Message, nil)
		}
		return writeError(c, logger, err)
	}
}
