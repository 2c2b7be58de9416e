package routes

import (
	"botsprinter/controllers"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(api fiber.Router, auth fiber.Handler, authController *controllers.AuthController) {
	group := api.Group("/auth")
	group.Post("/login", authController.Login)
	group.Get("/me", auth, authController.Me)
}
