package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// StatusMapping renders a domain error with a fixed HTTP status.
type StatusMapping struct {
	Err    error
	Status int
}

// ErrorHandlerMiddleware converts handler errors into ErrorResponse bodies.
// Unmapped errors become a 500 without leaking internals.
func ErrorHandlerMiddleware(mappings ...StatusMapping) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(
				ErrorResponseWithDetails(fiber.StatusBadRequest, "Invalid request", validationErr.Fields),
			)
		}

		for _, m := range mappings {
			if errors.Is(err, m.Err) {
				return ctx.Status(m.Status).JSON(ErrorResponse(m.Status, err.Error()))
			}
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(
			ErrorResponse(fiber.StatusInternalServerError, "Internal server error"),
		)
	}
}
