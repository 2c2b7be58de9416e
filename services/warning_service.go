package services

import (
	"context"
	"fmt"

	"botsprinter/types"
)

type WarningKind string

const (
	WarningLow      WarningKind = "low"
	WarningNegative WarningKind = "negative"
)

type WarningLocation string

const (
	LocationPrinter WarningLocation = "printer"
	LocationStorage WarningLocation = "storage"
)

type StockWarning struct {
	Kind        WarningKind          `json:"kind"`
	Location    WarningLocation      `json:"location"`
	PrinterID   uint                 `json:"printer_id,omitempty"`
	PrinterName string               `json:"printer_name,omitempty"`
	Model       string               `json:"model,omitempty"`
	Type        types.ConsumableType `json:"type"`
	Amount      int                  `json:"amount"`
	Minimum     int                  `json:"minimum"`
}

// Place names where the stock is held.
func (w StockWarning) Place() string {
	if w.Location == LocationStorage {
		return "storage"
	}
	return w.PrinterName
}

func (w StockWarning) Message() string {
	if w.Location == LocationStorage {
		return fmt.Sprintf("storage: %s %s below minimum (%d < %d)", w.Model, w.Type, w.Amount, w.Minimum)
	}
	if w.Kind == WarningNegative {
		return fmt.Sprintf("%s: negative %s count (%d)", w.PrinterName, w.Type, w.Amount)
	}
	return fmt.Sprintf("%s: %s below minimum (%d < %d)", w.PrinterName, w.Type, w.Amount, w.Minimum)
}

// LowStockWarnings checks every printer and then every storage item. A count
// is low when a minimum is set and the amount is strictly below it; reaching
// the minimum exactly is not a warning. Negative printer counts are reported
// separately.
func (s *AnalyticsService) LowStockWarnings(ctx context.Context) ([]StockWarning, error) {
	const op = "analytics.LowStockWarnings"
	r := s.repos()
	printers, err := r.Printers.List(ctx)
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	items, err := r.Storage.List(ctx)
	if err != nil {
		return nil, wrapStoreError(op, err)
	}

	warnings := []StockWarning{}
	for _, p := range printers {
		for _, t := range types.ConsumableTypes {
			if minimum, amount := p.MinFor(t), p.AmountFor(t); minimum > 0 && amount < minimum {
				warnings = append(warnings, StockWarning{
					Kind: WarningLow, Location: LocationPrinter, PrinterID: p.ID, PrinterName: p.Name,
					Model: p.ModelFor(t), Type: t, Amount: amount, Minimum: minimum,
				})
			}
		}
		for _, t := range types.ConsumableTypes {
			if amount := p.AmountFor(t); amount < 0 {
				warnings = append(warnings, StockWarning{
					Kind: WarningNegative, Location: LocationPrinter, PrinterID: p.ID, PrinterName: p.Name,
					Model: p.ModelFor(t), Type: t, Amount: amount, Minimum: p.MinFor(t),
				})
			}
		}
	}
	for _, item := range items {
		if item.MinAmount > 0 && item.Amount < item.MinAmount {
			warnings = append(warnings, StockWarning{
				Kind: WarningLow, Location: LocationStorage, Model: item.Model,
				Type: item.Type, Amount: item.Amount, Minimum: item.MinAmount,
			})
		}
	}
	return warnings, nil
}
