package controllers

import (
	"strconv"

	"botsprinter/controllers/helpers"
	"botsprinter/services"
	"botsprinter/types"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PrinterController struct {
	Catalog *services.CatalogService
	Ledger  *services.LedgerService
	Log     *zap.Logger
}

func NewPrinterController(catalog *services.CatalogService, ledger *services.LedgerService, log *zap.Logger) *PrinterController {
	return &PrinterController{Catalog: catalog, Ledger: ledger, Log: log}
}

type printerInput struct {
	CabinetID          *uint  `json:"cabinet_id"`
	Name               string `json:"name" validate:"required,max=255"`
	CartridgeModel     string `json:"cartridge_model" validate:"max=255"`
	DrumModel          string `json:"drum_model" validate:"max=255"`
	MinCartridgeAmount int    `json:"min_cartridge_amount" validate:"min=0"`
	MinDrumAmount      int    `json:"min_drum_amount" validate:"min=0"`
}

func (in printerInput) toService() services.PrinterInput {
	return services.PrinterInput{
		CabinetID:          in.CabinetID,
		Name:               in.Name,
		CartridgeModel:     in.CartridgeModel,
		DrumModel:          in.DrumModel,
		MinCartridgeAmount: in.MinCartridgeAmount,
		MinDrumAmount:      in.MinDrumAmount,
	}
}

func (c *PrinterController) GetAllPrinters(ctx *fiber.Ctx) error {
	var cabinetID *uint
	if raw := ctx.Query("cabinet_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return helpers.BadRequest(ctx, "invalid cabinet_id", err)
		}
		v := uint(id)
		cabinetID = &v
	}

	printers, err := c.Catalog.ListPrinters(ctx.UserContext(), cabinetID)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Printers found", printers)
}

func (c *PrinterController) GetPrinterByID(ctx *fiber.Ctx) error {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		return helpers.BadRequest(ctx, err.Error(), nil)
	}
	printer, err := c.Catalog.GetPrinter(ctx.UserContext(), id)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Printer found", printer)
}

func (c *PrinterController) CreatePrinter(ctx *fiber.Ctx) error {
	var input printerInput
	if err := parseBody(ctx, &input); err != nil {
		return helpers.BadRequest(ctx, "Invalid printer", err)
	}
	printer, err := c.Catalog.CreatePrinter(ctx.UserContext(), input.toService())
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.Created(ctx, "Printer created successfully", printer)
}

func (c *PrinterController) UpdatePrinter(ctx *fiber.Ctx) error {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		return helpers.BadRequest(ctx, err.Error(), nil)
	}
	var input printerInput
	if err := parseBody(ctx, &input); err != nil {
		return helpers.BadRequest(ctx, "Invalid printer", err)
	}
	printer, err := c.Catalog.UpdatePrinter(ctx.UserContext(), id, input.toService())
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Printer updated successfully", printer)
}

func (c *PrinterController) DeletePrinter(ctx *fiber.Ctx) error {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		return helpers.BadRequest(ctx, err.Error(), nil)
	}
	if err := c.Catalog.DeletePrinter(ctx.UserContext(), id); err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Printer deleted successfully", nil)
}

func (c *PrinterController) WriteOff(ctx *fiber.Ctx) error {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		return helpers.BadRequest(ctx, err.Error(), nil)
	}
	var input struct {
		Cartridges int `json:"cartridges" validate:"min=0"`
		Drums      int `json:"drums" validate:"min=0"`
	}
	if err := parseBody(ctx, &input); err != nil {
		return helpers.BadRequest(ctx, "Invalid write-off", err)
	}

	printer, entry, err := c.Ledger.WriteOff(ctx.UserContext(), id, input.Cartridges, input.Drums, actor(ctx))
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.Created(ctx, "Write-off recorded", fiber.Map{"printer": printer, "entry": entry})
}

func (c *PrinterController) ReturnToStorage(ctx *fiber.Ctx) error {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		return helpers.BadRequest(ctx, err.Error(), nil)
	}
	var input struct {
		Model    string `json:"model" validate:"required"`
		Type     string `json:"type" validate:"required,oneof=cartridge drum"`
		Quantity int    `json:"quantity" validate:"required,gt=0"`
	}
	if err := parseBody(ctx, &input); err != nil {
		return helpers.BadRequest(ctx, "Invalid return", err)
	}

	item, printer, err := c.Ledger.ReturnToStorage(ctx.UserContext(), input.Model, types.ConsumableType(input.Type), input.Quantity, id, actor(ctx))
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Stock returned to storage", fiber.Map{"storage": item, "printer": printer})
}
