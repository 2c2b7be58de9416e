package routes

import (
	"botsprinter/controllers"
	"botsprinter/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCabinetRoutes(api fiber.Router, auth fiber.Handler, cabinetController *controllers.CabinetController) {
	group := api.Group("/cabinets", auth)

	group.Get("/", can(services.OpViewInventory), cabinetController.GetAllCabinets)
	group.Get("/:id", can(services.OpViewInventory), cabinetController.GetCabinetByID)
	group.Post("/", can(services.OpManageCatalog), cabinetController.CreateCabinet)
	group.Put("/:id", can(services.OpManageCatalog), cabinetController.UpdateCabinet)
	group.Delete("/:id", can(services.OpManageCatalog), cabinetController.DeleteCabinet)
}

func SetupPrinterRoutes(api fiber.Router, auth fiber.Handler, printerController *controllers.PrinterController) {
	group := api.Group("/printers", auth)

	group.Get("/", can(services.OpViewInventory), printerController.GetAllPrinters)
	group.Get("/:id", can(services.OpViewInventory), printerController.GetPrinterByID)
	group.Post("/", can(services.OpManageCatalog), printerController.CreatePrinter)
	group.Put("/:id", can(services.OpManageCatalog), printerController.UpdatePrinter)
	group.Delete("/:id", can(services.OpManageCatalog), printerController.DeletePrinter)
	group.Post("/:id/writeoff", can(services.OpWriteOff), printerController.WriteOff)
	group.Post("/:id/return", can(services.OpMoveStock), printerController.ReturnToStorage)
}
