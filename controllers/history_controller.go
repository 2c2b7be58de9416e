package controllers

import (
	"botsprinter/controllers/helpers"
	"botsprinter/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type HistoryController struct {
	Ledger *services.LedgerService
	Audit  *services.AuditService
	Log    *zap.Logger
}

func NewHistoryController(ledger *services.LedgerService, audit *services.AuditService, log *zap.Logger) *HistoryController {
	return &HistoryController{Ledger: ledger, Audit: audit, Log: log}
}

func (c *HistoryController) GetTransfers(ctx *fiber.Ctx) error {
	filter, err := helpers.ParseHistoryFilter(ctx)
	if err != nil {
		return helpers.BadRequest(ctx, "Invalid filter", err)
	}
	entries, err := c.Ledger.TransferHistory(ctx.UserContext(), filter)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Transfer history", entries)
}

func (c *HistoryController) GetWriteoffs(ctx *fiber.Ctx) error {
	filter, err := helpers.ParseHistoryFilter(ctx)
	if err != nil {
		return helpers.BadRequest(ctx, "Invalid filter", err)
	}
	entries, err := c.Ledger.WriteoffHistory(ctx.UserContext(), filter)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Write-off history", entries)
}

func (c *HistoryController) GetActions(ctx *fiber.Ctx) error {
	filter, err := helpers.ParseAuditFilter(ctx)
	if err != nil {
		return helpers.BadRequest(ctx, "Invalid filter", err)
	}
	entries, err := c.Audit.ListActions(ctx.UserContext(), filter)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Action log", entries)
}
