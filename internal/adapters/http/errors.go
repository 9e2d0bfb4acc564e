package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/missionplanner/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, out_of_range, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errMission maps a mission command error onto the API error taxonomy.
func errMission(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrOutOfRange):
		return newError(c, 422, "out_of_range", err.Error())
	case errors.Is(err, domain.ErrInvalidOperation):
		return newError(c, 409, "invalid_operation", err.Error())
	}
	// Anything else came from a collaborator such as the map engine link.
	return newError(c, 502, "map_engine_error", err.Error())
}
