package helpers

import (
	"errors"
	"strconv"

	"botsprinter/services"
	"botsprinter/types"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func OK(ctx *fiber.Ctx, message string, data interface{}) error {
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func Created(ctx *fiber.Ctx, message string, data interface{}) error {
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func BadRequest(ctx *fiber.Ctx, message string, err error) error {
	body := fiber.Map{"success": false, "message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	return ctx.Status(fiber.StatusBadRequest).JSON(body)
}

// StatusFor maps a service error kind to an HTTP status.
func StatusFor(err error) int {
	switch services.KindOf(err) {
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindInsufficientStock, services.KindInsufficientPrinterStock, services.KindConflict:
		return fiber.StatusConflict
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// ServiceError writes err in the response envelope. Store failures are logged
// and their details hidden from the client.
func ServiceError(ctx *fiber.Ctx, log *zap.Logger, err error) error {
	status := StatusFor(err)
	body := fiber.Map{"success": false, "message": err.Error()}

	var se *services.Error
	if errors.As(err, &se) {
		body["kind"] = se.Kind.String()
	}
	if status == fiber.StatusInternalServerError {
		log.Error("request failed", zap.String("path", ctx.Path()), zap.Error(err))
		body["message"] = "Internal server error"
	}
	return ctx.Status(status).JSON(body)
}

func ParseID(ctx *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}

// ParseType reads a consumable type from the query, defaulting to cartridge.
func ParseType(ctx *fiber.Ctx) (types.ConsumableType, error) {
	raw := ctx.Query("type")
	if raw == "" {
		return types.Cartridge, nil
	}
	return types.ParseConsumableType(raw)
}
