package serverutils

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"task-manager-be/internal/dto"
	"task-manager-be/internal/entity"
)

// SessionValidator re-validates a presented token against the session store.
// A false result means the caller must be treated as unauthenticated, no
// matter what the token itself claims.
type SessionValidator interface {
	ValidateToken(ctx context.Context, token string) (*entity.Session, bool)
}

// ActivityRecorder publishes an activity signal for a live session.
type ActivityRecorder interface {
	PublishActivity(ctx context.Context, sessionID, kind string) error
}

// SessionMiddleware authenticates requests with a Bearer token, re-checks
// the session against the store, and records the request as activity so the
// inactivity clock resets.
func SessionMiddleware(sessions SessionValidator, activity ActivityRecorder) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}
		tokenStr := authHeader[7:]

		session, ok := sessions.ValidateToken(ctx.Context(), tokenStr)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Session expired or invalid"))
		}

		ctx.Locals("session_id", session.Id)
		ctx.Locals("user_id", session.User.Id)

		if activity != nil {
			// Best effort. A failed publish must not fail the request.
			_ = activity.PublishActivity(ctx.Context(), session.Id, dto.ActivityKindHTTP)
		}

		return ctx.Next()
	}
}
