package controllers

import (
	"botsprinter/controllers/helpers"
	"botsprinter/services"
	"botsprinter/types"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type StorageController struct {
	Ledger *services.LedgerService
	Log    *zap.Logger
}

func NewStorageController(ledger *services.LedgerService, log *zap.Logger) *StorageController {
	return &StorageController{Ledger: ledger, Log: log}
}

type stockInput struct {
	Model    string `json:"model" validate:"required,max=255"`
	Type     string `json:"type" validate:"required,oneof=cartridge drum"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

func (c *StorageController) GetStorage(ctx *fiber.Ctx) error {
	items, err := c.Ledger.ListStorage(ctx.UserContext())
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Storage found", items)
}

func (c *StorageController) GetSummary(ctx *fiber.Ctx) error {
	totals, err := c.Ledger.StorageSummary(ctx.UserContext())
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Storage summary", totals)
}

func (c *StorageController) GetCompatiblePrinters(ctx *fiber.Ctx) error {
	t, err := helpers.ParseType(ctx)
	if err != nil {
		return helpers.BadRequest(ctx, "Invalid type", err)
	}
	printers, err := c.Ledger.CompatiblePrinters(ctx.UserContext(), ctx.Query("model"), t)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Compatible printers", printers)
}

func (c *StorageController) Receive(ctx *fiber.Ctx) error {
	var input stockInput
	if err := parseBody(ctx, &input); err != nil {
		return helpers.BadRequest(ctx, "Invalid receipt", err)
	}
	item, err := c.Ledger.ReceiveStock(ctx.UserContext(), input.Model, types.ConsumableType(input.Type), input.Quantity, actor(ctx))
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.Created(ctx, "Stock received", item)
}

func (c *StorageController) Transfer(ctx *fiber.Ctx) error {
	var input struct {
		stockInput
		PrinterID uint `json:"printer_id" validate:"required"`
	}
	if err := parseBody(ctx, &input); err != nil {
		return helpers.BadRequest(ctx, "Invalid transfer", err)
	}
	item, printer, err := c.Ledger.TransferToPrinter(ctx.UserContext(), input.Model, types.ConsumableType(input.Type), input.Quantity, input.PrinterID, actor(ctx))
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Stock transferred", fiber.Map{"storage": item, "printer": printer})
}

func (c *StorageController) SetAmount(ctx *fiber.Ctx) error {
	var input struct {
		Model  string `json:"model" validate:"required"`
		Type   string `json:"type" validate:"required,oneof=cartridge drum"`
		Amount int    `json:"amount" validate:"min=0"`
	}
	if err := parseBody(ctx, &input); err != nil {
		return helpers.BadRequest(ctx, "Invalid storage amount", err)
	}
	item, err := c.Ledger.SetStorageAmount(ctx.UserContext(), input.Model, types.ConsumableType(input.Type), input.Amount, actor(ctx))
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Storage amount updated", item)
}

func (c *StorageController) SetMinimum(ctx *fiber.Ctx) error {
	var input struct {
		Model     string `json:"model" validate:"required"`
		Type      string `json:"type" validate:"required,oneof=cartridge drum"`
		MinAmount int    `json:"min_amount" validate:"min=0"`
	}
	if err := parseBody(ctx, &input); err != nil {
		return helpers.BadRequest(ctx, "Invalid storage minimum", err)
	}
	item, err := c.Ledger.SetStorageMinimum(ctx.UserContext(), input.Model, types.ConsumableType(input.Type), input.MinAmount, actor(ctx))
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Storage minimum updated", item)
}
