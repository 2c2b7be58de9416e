package controllers

import (
	"botsprinter/controllers/helpers"
	"botsprinter/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CabinetController struct {
	Catalog *services.CatalogService
	Log     *zap.Logger
}

func NewCabinetController(catalog *services.CatalogService, log *zap.Logger) *CabinetController {
	return &CabinetController{Catalog: catalog, Log: log}
}

type cabinetInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (c *CabinetController) GetAllCabinets(ctx *fiber.Ctx) error {
	cabinets, err := c.Catalog.ListCabinets(ctx.UserContext())
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Cabinets found", cabinets)
}

func (c *CabinetController) GetCabinetByID(ctx *fiber.Ctx) error {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		return helpers.BadRequest(ctx, err.Error(), nil)
	}
	cabinet, err := c.Catalog.GetCabinet(ctx.UserContext(), id)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	printers, err := c.Catalog.ListPrinters(ctx.UserContext(), &id)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Cabinet found", fiber.Map{"cabinet": cabinet, "printers": printers})
}

func (c *CabinetController) CreateCabinet(ctx *fiber.Ctx) error {
	var input cabinetInput
	if err := parseBody(ctx, &input); err != nil {
		return helpers.BadRequest(ctx, "Invalid cabinet", err)
	}
	cabinet, err := c.Catalog.CreateCabinet(ctx.UserContext(), input.Name)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.Created(ctx, "Cabinet created successfully", cabinet)
}

func (c *CabinetController) UpdateCabinet(ctx *fiber.Ctx) error {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		return helpers.BadRequest(ctx, err.Error(), nil)
	}
	var input cabinetInput
	if err := parseBody(ctx, &input); err != nil {
		return helpers.BadRequest(ctx, "Invalid cabinet", err)
	}
	cabinet, err := c.Catalog.RenameCabinet(ctx.UserContext(), id, input.Name)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Cabinet updated successfully", cabinet)
}

// DeleteCabinet also removes the cabinet's printers and their write-offs.
func (c *CabinetController) DeleteCabinet(ctx *fiber.Ctx) error {
	id, err := helpers.ParseID(ctx, "id")
	if err != nil {
		return helpers.BadRequest(ctx, err.Error(), nil)
	}
	if err := c.Catalog.DeleteCabinet(ctx.UserContext(), id); err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Cabinet deleted successfully", nil)
}
