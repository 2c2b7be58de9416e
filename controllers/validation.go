package controllers

import (
	"botsprinter/middleware"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// parseBody decodes the JSON body into dst and runs its validate tags.
func parseBody(ctx *fiber.Ctx, dst interface{}) error {
	if err := ctx.BodyParser(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

func actor(ctx *fiber.Ctx) string {
	if claims := middleware.CurrentUser(ctx); claims != nil {
		return claims.Username
	}
	return ""
}
