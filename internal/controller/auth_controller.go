package controller

import (
	"github.com/gofiber/fiber/v2"

	"task-manager-be/internal/dto"
	"task-manager-be/internal/pkg/serverutils"
	"task-manager-be/internal/service"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router, protected fiber.Handler)
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Extend(ctx *fiber.Ctx) error
	Session(ctx *fiber.Ctx) error
}

type authController struct {
	sessionService service.ISessionService
}

func NewAuthController(sessionService service.ISessionService) IAuthController {
	return &authController{
		sessionService: sessionService,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router, protected fiber.Handler) {
	h := r.Group("/auth/v1")
	h.Post("login", c.Login)
	h.Post("logout", protected, c.Logout)
	h.Post("extend", protected, c.Extend)
	h.Get("session", protected, c.Session)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Login(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	sessionID := sessionIDFrom(ctx)

	if err := c.sessionService.Logout(ctx.Context(), sessionID); err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Logout successful", nil))
}

func (c *authController) Extend(ctx *fiber.Ctx) error {
	sessionID := sessionIDFrom(ctx)

	res, err := c.sessionService.Extend(ctx.Context(), sessionID)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Session extended", res))
}

func (c *authController) Session(ctx *fiber.Ctx) error {
	sessionID := sessionIDFrom(ctx)
	res := c.sessionService.Status(ctx.Context(), sessionID)
	return ctx.JSON(serverutils.SuccessResponse("Session status", res))
}
