package routes

import (
	"botsprinter/controllers"
	"botsprinter/services"

	"github.com/gofiber/fiber/v2"
)

func SetupStorageRoutes(api fiber.Router, auth fiber.Handler, storageController *controllers.StorageController) {
	group := api.Group("/storage", auth)

	group.Get("/", can(services.OpViewInventory), storageController.GetStorage)
	group.Get("/summary", can(services.OpViewInventory), storageController.GetSummary)
	group.Get("/compatible-printers", can(services.OpViewInventory), storageController.GetCompatiblePrinters)
	group.Post("/receive", can(services.OpMoveStock), storageController.Receive)
	group.Post("/transfer", can(services.OpMoveStock), storageController.Transfer)
	group.Put("/amount", can(services.OpSetStorageCount), storageController.SetAmount)
	group.Put("/minimum", can(services.OpManageCatalog), storageController.SetMinimum)
}

func SetupHistoryRoutes(api fiber.Router, auth fiber.Handler, historyController *controllers.HistoryController) {
	group := api.Group("/history", auth, can(services.OpViewHistory))

	group.Get("/transfers", historyController.GetTransfers)
	group.Get("/writeoffs", historyController.GetWriteoffs)
	group.Get("/actions", can(services.OpViewAuditLog), historyController.GetActions)
}
