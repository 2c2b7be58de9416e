package controllers

import (
	"fmt"
	"strconv"
	"time"

	"botsprinter/controllers/helpers"
	"botsprinter/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AnalyticsController struct {
	Analytics *services.AnalyticsService
	Log       *zap.Logger
	Now       func() time.Time
}

func NewAnalyticsController(analytics *services.AnalyticsService, log *zap.Logger) *AnalyticsController {
	return &AnalyticsController{Analytics: analytics, Log: log, Now: time.Now}
}

func (c *AnalyticsController) GetMonthlyUsage(ctx *fiber.Ctx) error {
	t, err := helpers.ParseType(ctx)
	if err != nil {
		return helpers.BadRequest(ctx, "Invalid type", err)
	}
	usage, err := c.Analytics.MonthlyUsage(ctx.UserContext(), t)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Monthly usage", usage)
}

func (c *AnalyticsController) ExportMonthlyUsage(ctx *fiber.Ctx) error {
	t, err := helpers.ParseType(ctx)
	if err != nil {
		return helpers.BadRequest(ctx, "Invalid type", err)
	}
	usage, err := c.Analytics.MonthlyUsage(ctx.UserContext(), t)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}

	rows := make([][]interface{}, 0, len(usage))
	for _, u := range usage {
		rows = append(rows, []interface{}{u.Month, u.Total})
	}
	f, err := helpers.NewSheet("Usage", []string{"Month", "Total " + t.String() + "s"}, rows)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.SendWorkbook(ctx, f, fmt.Sprintf("%s_usage.xlsx", t))
}

func (c *AnalyticsController) GetTopModels(ctx *fiber.Ctx) error {
	t, err := helpers.ParseType(ctx)
	if err != nil {
		return helpers.BadRequest(ctx, "Invalid type", err)
	}
	n := services.DefaultTopN
	if raw := ctx.Query("n"); raw != "" {
		if n, err = strconv.Atoi(raw); err != nil {
			return helpers.BadRequest(ctx, "Invalid n", err)
		}
	}
	top, err := c.Analytics.TopNModelsByUsage(ctx.UserContext(), t, n)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Top models", top)
}

func (c *AnalyticsController) GetForecast(ctx *fiber.Ctx) error {
	t, err := helpers.ParseType(ctx)
	if err != nil {
		return helpers.BadRequest(ctx, "Invalid type", err)
	}
	forecast, err := c.Analytics.ForecastNextMonth(ctx.UserContext(), ctx.Query("model"), t)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Forecast", forecast)
}

func (c *AnalyticsController) GetWarnings(ctx *fiber.Ctx) error {
	warnings, err := c.Analytics.LowStockWarnings(ctx.UserContext())
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}

	out := make([]fiber.Map, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, fiber.Map{
			"kind":         w.Kind,
			"location":     w.Location,
			"printer_id":   w.PrinterID,
			"printer_name": w.PrinterName,
			"model":        w.Model,
			"type":         w.Type,
			"amount":       w.Amount,
			"minimum":      w.Minimum,
			"message":      w.Message(),
		})
	}
	return helpers.OK(ctx, "Stock warnings", out)
}

func (c *AnalyticsController) GetChangeReport(ctx *fiber.Ctx) error {
	rows, err := c.Analytics.ChangeReport(ctx.UserContext(), c.Now())
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.OK(ctx, "Cartridge change report", rows)
}

func (c *AnalyticsController) ExportChangeReport(ctx *fiber.Ctx) error {
	report, err := c.Analytics.ChangeReport(ctx.UserContext(), c.Now())
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}

	rows := make([][]interface{}, 0, len(report))
	for _, r := range report {
		rows = append(rows, []interface{}{
			r.CabinetName, r.PrinterName, r.CartridgeModel, r.TotalChanges, r.LastChangeText(), r.DaysSinceText(),
		})
	}
	header := []string{"Cabinet", "Printer", "Cartridge model", "Changes", "Last change", "Days since"}
	f, err := helpers.NewSheet("Cartridge changes", header, rows)
	if err != nil {
		return helpers.ServiceError(ctx, c.Log, err)
	}
	return helpers.SendWorkbook(ctx, f, "cartridge_changes.xlsx")
}
