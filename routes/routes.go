package routes

import (
	"botsprinter/config"
	"botsprinter/controllers"
	"botsprinter/middleware"
	"botsprinter/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRoutes builds the services and controllers over db and mounts every
// route group under cfg.Server.MainRoutes.
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, log *zap.Logger) {
	ledger := services.NewLedgerService(db, log.Named("ledger"))
	catalog := services.NewCatalogService(db, log.Named("catalog"))
	analytics := services.NewAnalyticsService(db)
	users := services.NewUserService(db, cfg.JWT, log.Named("users"))
	audit := services.NewAuditService(db)

	api := app.Group(cfg.Server.MainRoutes)
	auth := middleware.AuthMiddleware(cfg.JWT.Secret, db)

	SetupAuthRoutes(api, auth, controllers.NewAuthController(users, log))
	SetupCabinetRoutes(api, auth, controllers.NewCabinetController(catalog, log))
	SetupPrinterRoutes(api, auth, controllers.NewPrinterController(catalog, ledger, log))
	SetupStorageRoutes(api, auth, controllers.NewStorageController(ledger, log))
	SetupHistoryRoutes(api, auth, controllers.NewHistoryController(ledger, audit, log))
	SetupAnalyticsRoutes(api, auth, controllers.NewAnalyticsController(analytics, log))
	SetupUserRoutes(api, auth, controllers.NewUserController(users, log))
}

var can = middleware.RequirePermission
