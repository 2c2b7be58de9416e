package helpers

import (
	"fmt"
	"strconv"

	"botsprinter/repositories"
	"botsprinter/types"

	"github.com/gofiber/fiber/v2"
)

// ParseHistoryFilter reads ?model=&type=&printer_id=&username=&from=&to=&limit=
// from the request. from and to use the ledger layout or a bare date.
func ParseHistoryFilter(ctx *fiber.Ctx) (repositories.HistoryFilter, error) {
	f := repositories.HistoryFilter{
		Model:    ctx.Query("model"),
		Username: ctx.Query("username"),
	}

	if raw := ctx.Query("type"); raw != "" {
		t, err := types.ParseConsumableType(raw)
		if err != nil {
			return f, err
		}
		f.Type = t
	}
	if raw := ctx.Query("printer_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid printer_id %q", raw)
		}
		f.PrinterID = uint(id)
	}
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, fmt.Errorf("invalid limit %q", raw)
		}
		f.Limit = n
	}

	var err error
	if f.From, err = parseBound(ctx.Query("from"), "00:00:00"); err != nil {
		return f, err
	}
	if f.To, err = parseBound(ctx.Query("to"), "23:59:59"); err != nil {
		return f, err
	}
	return f, nil
}

// ParseAuditFilter reads ?username=&action=&entity_type=&from=&to=&limit=.
func ParseAuditFilter(ctx *fiber.Ctx) (repositories.AuditFilter, error) {
	f := repositories.AuditFilter{
		Username:   ctx.Query("username"),
		Action:     ctx.Query("action"),
		EntityType: ctx.Query("entity_type"),
	}
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, fmt.Errorf("invalid limit %q", raw)
		}
		f.Limit = n
	}

	var err error
	if f.From, err = parseBound(ctx.Query("from"), "00:00:00"); err != nil {
		return f, err
	}
	if f.To, err = parseBound(ctx.Query("to"), "23:59:59"); err != nil {
		return f, err
	}
	return f, nil
}

func parseBound(raw, clock string) (*types.LedgerTime, error) {
	if raw == "" {
		return nil, nil
	}
	if len(raw) == len("2006-01-02") {
		raw += " " + clock
	}
	t, err := types.ParseLedgerTime(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q, want YYYY-MM-DD or YYYY-MM-DD HH:MM:SS", raw)
	}
	return &t, nil
}
