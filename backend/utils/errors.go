package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error kinds used across services. Controllers translate them to HTTP
// statuses with RespondError; services wrap them with fmt.Errorf("...: %w").
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrCollaborator = errors.New("collaborator call failed")
	ErrPersistence  = errors.New("persistence failed")
)

// RespondError maps a service error to the matching HTTP response.
func RespondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return BadRequest(c, err.Error())
	case errors.Is(err, ErrNotFound):
		return NotFound(c, err.Error())
	case errors.Is(err, ErrForbidden):
		return Forbidden(c, err.Error())
	case errors.Is(err, ErrCollaborator):
		return Error(c, fiber.StatusBadGateway, err)
	default:
		return InternalServerError(c, err.Error())
	}
}
