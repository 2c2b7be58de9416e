package controllers

import (
	"botsprinter/controllers/helpers"
	"botsprinter/services"
	"botsprinter/types"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserController struct {
	Users *services.UserService
	Log   *zap.Logger
}

func NewUserController(users *services.UserService, log *zap.Logger) *UserController {
	return &UserController{Users: users, Log: log}
}

func (c *UserController) GetAllUsers(ctx *fiber.Ctx) error {
	users, err := c.Users.ListUsers(ctx.UserContext())
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Users found", users)
}

func (c *UserController) CreateUser(ctx *fiber.Ctx) error {
	var input struct {
		Username string `json:"username" validate:"required,min=3,max=64"`
		Password string `json:"password" validate:"required,min=4"`
		Role     string `json:"role" validate:"required,oneof=admin operator viewer"`
	}
	if err := parseBody(ctx, &input); err != nil {
		return helpers.BadRequest(ctx, "Invalid user", err)
	}

	user, err := c.Users.CreateUser(ctx.UserContext(), input.Username, input.Password, types.Role(input.Role))
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.Created(ctx, "User created successfully", user)
}

func (c *UserController) UpdateUser(ctx *fiber.Ctx) error {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		return helpers.BadRequest(ctx, err.Error(), nil)
	}
	var input struct {
		Role     string `json:"role" validate:"required,oneof=admin operator viewer"`
		Password string `json:"password" validate:"omitempty,min=4"`
	}
	if err := parseBody(ctx, &input); err != nil {
		return helpers.BadRequest(ctx, "Invalid user", err)
	}

	user, err := c.Users.UpdateUser(ctx.UserContext(), id, types.Role(input.Role), input.Password)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "User updated successfully", user)
}

func (c *UserController) DeleteUser(ctx *fiber.Ctx) error {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		return helpers.BadRequest(ctx, err.Error(), nil)
	}
	if err := c.Users.DeleteUser(ctx.UserContext(), id); err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "User deleted successfully", nil)
}

// ResetPassword returns the new password once; it cannot be read back later.
func (c *UserController) ResetPassword(ctx *fiber.Ctx) error {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		return helpers.BadRequest(ctx, err.Error(), nil)
	}
	password, err := c.Users.ResetPassword(ctx.UserContext(), id)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Password reset", fiber.Map{"password": password})
}
