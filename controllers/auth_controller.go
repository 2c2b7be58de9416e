package controllers

import (
	"botsprinter/controllers/helpers"
	"botsprinter/middleware"
	"botsprinter/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthController struct {
	Users *services.UserService
	Log   *zap.Logger
}

func NewAuthController(users *services.UserService, log *zap.Logger) *AuthController {
	return &AuthController{Users: users, Log: log}
}

func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var input struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := parseBody(ctx, &input); err != nil {
		return helpers.BadRequest(ctx, "Invalid login request", err)
	}

	reqCtx := services.WithActor(ctx.UserContext(), services.Actor{IP: ctx.IP()})
	res, err := c.Users.Login(reqCtx, input.Username, input.Password)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Login successful", res)
}

func (c *AuthController) Me(ctx *fiber.Ctx) error {
	claims := middleware.CurrentUser(ctx)
	if claims == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}
	return helpers.OK(ctx, "Current user", fiber.Map{
		"user_id":    claims.UserID,
		"username":   claims.Username,
		"role":       claims.Role,
		"session_id": claims.SessionID,
		"expires_at": claims.ExpiresAt.Time,
	})
}
