package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"task-manager-be/internal/pkg/serverutils"
	"task-manager-be/internal/service"
)

// mapServiceError translates service sentinels into HTTP-aware errors for
// the error handler middleware.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return serverutils.NewAppError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrSessionInvalid):
		return serverutils.NewAppError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrTaskNotFound):
		return serverutils.NewAppError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}

func sessionIDFrom(ctx *fiber.Ctx) string {
	if id, ok := ctx.Locals("session_id").(string); ok {
		return id
	}
	return ""
}
