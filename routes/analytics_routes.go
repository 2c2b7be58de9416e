package routes

import (
	"botsprinter/controllers"
	"botsprinter/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAnalyticsRoutes(api fiber.Router, auth fiber.Handler, analyticsController *controllers.AnalyticsController) {
	group := api.Group("/analytics", auth)

	group.Get("/usage", can(services.OpViewAnalytics), analyticsController.GetMonthlyUsage)
	group.Get("/usage/excel", can(services.OpExportReports), analyticsController.ExportMonthlyUsage)
	group.Get("/top", can(services.OpViewAnalytics), analyticsController.GetTopModels)
	group.Get("/forecast", can(services.OpViewAnalytics), analyticsController.GetForecast)
	group.Get("/warnings", can(services.OpViewAnalytics), analyticsController.GetWarnings)
	group.Get("/change-report", can(services.OpViewAnalytics), analyticsController.GetChangeReport)
	group.Get("/change-report/excel", can(services.OpExportReports), analyticsController.ExportChangeReport)
}
