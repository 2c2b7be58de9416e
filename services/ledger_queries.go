package services

import (
	"context"
	"errors"
	"strings"

	"botsprinter/models"
	"botsprinter/repositories"
	"botsprinter/types"

	"gorm.io/gorm"
)

func (s *LedgerService) repos() *repositories.Repositories {
	return repositories.New(s.db)
}

func (s *LedgerService) ListStorage(ctx context.Context) ([]models.StorageItem, error) {
	items, err := s.repos().Storage.List(ctx)
	if err != nil {
		return nil, wrapStoreError("ledger.ListStorage", err)
	}
	if items == nil {
		items = []models.StorageItem{}
	}
	return items, nil
}

// StorageSummary totals the cartridges and drums held in storage.
func (s *LedgerService) StorageSummary(ctx context.Context) (repositories.StorageTotals, error) {
	totals, err := s.repos().Storage.Totals(ctx)
	if err != nil {
		return totals, wrapStoreError("ledger.StorageSummary", err)
	}
	return totals, nil
}

// CompatiblePrinters lists printers configured for the given consumable model.
func (s *LedgerService) CompatiblePrinters(ctx context.Context, model string, t types.ConsumableType) ([]repositories.PrinterListItem, error) {
	const op = "ledger.CompatiblePrinters"
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, validationError(op, "model is required")
	}
	if !t.Valid() {
		return nil, validationError(op, "unknown consumable type %q", t)
	}

	printers, err := s.repos().Printers.FindCompatible(ctx, model, t)
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	if printers == nil {
		printers = []repositories.PrinterListItem{}
	}
	return printers, nil
}

func validateFilter(op string, f repositories.HistoryFilter) error {
	if f.Type != "" && !f.Type.Valid() {
		return validationError(op, "unknown consumable type %q", f.Type)
	}
	if f.Limit < 0 {
		return validationError(op, "limit must not be negative")
	}
	if f.From != nil && f.To != nil && f.To.Before(f.From.Time) {
		return validationError(op, "range end is before its start")
	}
	return nil
}

// TransferHistory lists transfers newest first. A PrinterID filter resolves to
// the printer's current name, which is how transfers record printers.
func (s *LedgerService) TransferHistory(ctx context.Context, f repositories.HistoryFilter) ([]models.TransferEntry, error) {
	const op = "ledger.TransferHistory"
	if err := validateFilter(op, f); err != nil {
		return nil, err
	}
	r := s.repos()
	if f.PrinterID != 0 {
		printer, err := r.Printers.GetByID(ctx, f.PrinterID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(op, ErrPrinterNotFound, "")
		}
		if err != nil {
			return nil, wrapStoreError(op, err)
		}
		f.Place = printer.Name
	}
	entries, err := r.History.ListTransfers(ctx, f)
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	if entries == nil {
		entries = []models.TransferEntry{}
	}
	return entries, nil
}

func (s *LedgerService) WriteoffHistory(ctx context.Context, f repositories.HistoryFilter) ([]repositories.WriteoffListItem, error) {
	const op = "ledger.WriteoffHistory"
	if err := validateFilter(op, f); err != nil {
		return nil, err
	}
	rows, err := s.repos().History.ListWriteoffs(ctx, f)
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	if rows == nil {
		rows = []repositories.WriteoffListItem{}
	}
	return rows, nil
}
