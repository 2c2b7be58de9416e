package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"botsprinter/config"
	"botsprinter/database"
	"botsprinter/idgen"
	"botsprinter/logger"
	"botsprinter/middleware"
	"botsprinter/migration"
	"botsprinter/routes"
	seed "botsprinter/seeder"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	zlog, err := logger.New(cfg.Logger, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	if err := idgen.Init(int64(cfg.Server.NodeID)); err != nil {
		zlog.Fatal("Failed to init id generator", zap.Error(err))
	}

	if err := database.EnsureDatabaseExists(cfg.Database); err != nil {
		zlog.Fatal("Failed to ensure database", zap.Error(err))
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if cfg.Database.AutoMigrate {
		if err := migration.Migrate(db); err != nil {
			zlog.Fatal("Failed to auto migrate", zap.Error(err))
		}
	}
	if err := seed.SeedDefaultAdmin(db, cfg.DefaultAdminPassword, zlog); err != nil {
		zlog.Fatal("Failed to seed default admin", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "botsprinter",
		ErrorHandler: errorHandler,
	})
	config.SetupCORS(app, cfg.Server)
	app.Use(middleware.RequestLogger(zlog.Named("http")))
	routes.SetupRoutes(app, db, cfg, zlog)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		zlog.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("Server starting", zap.String("port", cfg.Server.Port), zap.String("driver", cfg.Database.Driver))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("Server stopped", zap.Error(err))
	}
}

func errorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return ctx.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}
