package routes

import (
	"botsprinter/controllers"
	"botsprinter/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(api fiber.Router, auth fiber.Handler, userController *controllers.UserController) {
	group := api.Group("/users", auth, can(services.OpManageUsers))

	group.Get("/", userController.GetAllUsers)
	group.Post("/", userController.CreateUser)
	group.Put("/:id", userController.UpdateUser)
	group.Delete("/:id", userController.DeleteUser)
	group.Post("/:id/reset-password", userController.ResetPassword)
}
