package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"botsprinter/models"
	"botsprinter/repositories"
	"botsprinter/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LedgerService applies stock movements. Every mutation adjusts balances and
// appends exactly one history entry inside a single transaction. Moves that
// touch a printer and storage lock the printer row first.
type LedgerService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewLedgerService(db *gorm.DB, log *zap.Logger) *LedgerService {
	return &LedgerService{db: db, log: log, now: time.Now}
}

// WithClock replaces the time source used for ledger timestamps.
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

func (s *LedgerService) timestamp() types.LedgerTime {
	return types.NewLedgerTime(s.now())
}

func (s *LedgerService) inTx(ctx context.Context, fn func(r *repositories.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repositories.New(tx))
	})
}

func validateMove(op, model string, t types.ConsumableType, quantity int, actor string) error {
	if model == "" {
		return validationError(op, "model is required")
	}
	if !t.Valid() {
		return validationError(op, "unknown consumable type %q", t)
	}
	if quantity <= 0 {
		return validationError(op, "quantity must be positive, got %d", quantity)
	}
	if strings.TrimSpace(actor) == "" {
		return validationError(op, "acting user is required")
	}
	return nil
}

// addToStorage increments the (model, type) row, creating it on first receipt.
func addToStorage(ctx context.Context, r *repositories.Repositories, model string, t types.ConsumableType, quantity int) (*models.StorageItem, error) {
	item, err := r.Storage.FindForUpdate(ctx, model, t)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = &models.StorageItem{Model: model, Type: t, Amount: quantity}
		return item, r.Storage.Create(ctx, item)
	}
	if err != nil {
		return nil, err
	}
	item.Amount += quantity
	return item, r.Storage.SetAmount(ctx, item.ID, item.Amount)
}

func lockPrinter(ctx context.Context, op string, r *repositories.Repositories, id uint) (*models.Printer, error) {
	printer, err := r.Printers.GetForUpdate(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(op, ErrPrinterNotFound, "")
	}
	return printer, err
}

// ReceiveStock books new supply into storage.
func (s *LedgerService) ReceiveStock(ctx context.Context, model string, t types.ConsumableType, quantity int, actor string) (*models.StorageItem, error) {
	const op = "ledger.ReceiveStock"
	model = strings.TrimSpace(model)
	if err := validateMove(op, model, t, quantity, actor); err != nil {
		return nil, err
	}

	var item *models.StorageItem
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		var err error
		if item, err = addToStorage(ctx, r, model, t, quantity); err != nil {
			return err
		}
		err = r.History.AppendTransfer(ctx, &models.TransferEntry{
			Timestamp: s.timestamp(),
			Username:  actor,
			Model:     model,
			Type:      t,
			Amount:    quantity,
			FromPlace: models.PlaceExternalSupply,
			ToPlace:   models.PlaceStorage,
		})
		if err != nil {
			return err
		}
		return recordAction(ctx, r, s.now(), auditRecord{
			Username:    actor,
			Action:      ActionReceiveStock,
			EntityType:  EntityStorage,
			EntityID:    item.ID,
			Description: fmt.Sprintf("received %d %s %s", quantity, model, t),
		})
	})
	if err != nil {
		return nil, wrapStoreError(op, err)
	}

	s.log.Info("stock received",
		zap.String("model", model),
		zap.Stringer("type", t),
		zap.Int("quantity", quantity),
		zap.Int("storage_amount", item.Amount),
		zap.String("user", actor))
	return item, nil
}

// TransferToPrinter moves stock from storage into a printer.
func (s *LedgerService) TransferToPrinter(ctx context.Context, model string, t types.ConsumableType, quantity int, printerID uint, actor string) (*models.StorageItem, *models.Printer, error) {
	const op = "ledger.TransferToPrinter"
	model = strings.TrimSpace(model)
	if err := validateMove(op, model, t, quantity, actor); err != nil {
		return nil, nil, err
	}

	var (
		item    *models.StorageItem
		printer *models.Printer
	)
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		var err error
		if printer, err = lockPrinter(ctx, op, r, printerID); err != nil {
			return err
		}
		item, err = r.Storage.FindForUpdate(ctx, model, t)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(op, ErrUnknownStorageItem, fmt.Sprintf("%s (%s)", model, t))
		}
		if err != nil {
			return err
		}
		if item.Amount < quantity {
			return &Error{Kind: KindInsufficientStock, Op: op, Err: ErrInsufficientStock,
				Msg: fmt.Sprintf("requested %d, available %d", quantity, item.Amount)}
		}

		item.Amount -= quantity
		if err := r.Storage.SetAmount(ctx, item.ID, item.Amount); err != nil {
			return err
		}
		if err := r.Printers.AddAmount(ctx, printer.ID, t, quantity); err != nil {
			return err
		}
		printer.AddAmount(t, quantity)

		err = r.History.AppendTransfer(ctx, &models.TransferEntry{
			Timestamp: s.timestamp(),
			Username:  actor,
			Model:     model,
			Type:      t,
			Amount:    quantity,
			FromPlace: models.PlaceStorage,
			ToPlace:   printer.Name,
		})
		if err != nil {
			return err
		}
		return recordAction(ctx, r, s.now(), auditRecord{
			Username:    actor,
			Action:      ActionTransferToPrinter,
			EntityType:  EntityPrinter,
			EntityID:    printer.ID,
			Description: fmt.Sprintf("moved %d %s %s from storage to %s", quantity, model, t, printer.Name),
		})
	})
	if err != nil {
		return nil, nil, wrapStoreError(op, err)
	}

	if m := printer.ModelFor(t); m != "" && m != model {
		s.log.Warn("transferred model differs from printer's configured model",
			zap.Uint("printer_id", printer.ID),
			zap.String("configured", m),
			zap.String("transferred", model))
	}
	s.log.Info("stock transferred to printer",
		zap.String("model", model),
		zap.Stringer("type", t),
		zap.Int("quantity", quantity),
		zap.Uint("printer_id", printer.ID),
		zap.String("user", actor))
	return item, printer, nil
}

// ReturnToStorage moves stock from a printer back into storage.
func (s *LedgerService) ReturnToStorage(ctx context.Context, model string, t types.ConsumableType, quantity int, printerID uint, actor string) (*models.StorageItem, *models.Printer, error) {
	const op = "ledger.ReturnToStorage"
	model = strings.TrimSpace(model)
	if err := validateMove(op, model, t, quantity, actor); err != nil {
		return nil, nil, err
	}

	var (
		item    *models.StorageItem
		printer *models.Printer
	)
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		var err error
		if printer, err = lockPrinter(ctx, op, r, printerID); err != nil {
			return err
		}
		if held := printer.AmountFor(t); held < quantity {
			return &Error{Kind: KindInsufficientPrinterStock, Op: op, Err: ErrInsufficientPrinterStock,
				Msg: fmt.Sprintf("requested %d, printer holds %d", quantity, held)}
		}

		if err := r.Printers.AddAmount(ctx, printer.ID, t, -quantity); err != nil {
			return err
		}
		printer.AddAmount(t, -quantity)
		if item, err = addToStorage(ctx, r, model, t, quantity); err != nil {
			return err
		}

		err = r.History.AppendTransfer(ctx, &models.TransferEntry{
			Timestamp: s.timestamp(),
			Username:  actor,
			Model:     model,
			Type:      t,
			Amount:    quantity,
			FromPlace: printer.Name,
			ToPlace:   models.PlaceStorage,
		})
		if err != nil {
			return err
		}
		return recordAction(ctx, r, s.now(), auditRecord{
			Username:    actor,
			Action:      ActionReturnToStorage,
			EntityType:  EntityPrinter,
			EntityID:    printer.ID,
			Description: fmt.Sprintf("returned %d %s %s from %s to storage", quantity, model, t, printer.Name),
		})
	})
	if err != nil {
		return nil, nil, wrapStoreError(op, err)
	}

	s.log.Info("stock returned to storage",
		zap.String("model", model),
		zap.Stringer("type", t),
		zap.Int("quantity", quantity),
		zap.Uint("printer_id", printer.ID),
		zap.String("user", actor))
	return item, printer, nil
}

// WriteOff records consumables used up in a printer. One entry covers both
// cartridge and drum quantities.
func (s *LedgerService) WriteOff(ctx context.Context, printerID uint, cartridgeQty, drumQty int, actor string) (*models.Printer, *models.WriteoffEntry, error) {
	const op = "ledger.WriteOff"
	if cartridgeQty < 0 || drumQty < 0 {
		return nil, nil, validationError(op, "quantities must not be negative")
	}
	if cartridgeQty == 0 && drumQty == 0 {
		return nil, nil, validationError(op, "nothing to write off")
	}
	if strings.TrimSpace(actor) == "" {
		return nil, nil, validationError(op, "acting user is required")
	}

	var (
		printer *models.Printer
		entry   *models.WriteoffEntry
	)
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		var err error
		if printer, err = lockPrinter(ctx, op, r, printerID); err != nil {
			return err
		}
		if cartridgeQty > printer.CartridgeAmount || drumQty > printer.DrumAmount {
			return &Error{Kind: KindInsufficientPrinterStock, Op: op, Err: ErrInsufficientPrinterStock,
				Msg: fmt.Sprintf("printer holds %d cartridges and %d drums", printer.CartridgeAmount, printer.DrumAmount)}
		}

		printer.CartridgeAmount -= cartridgeQty
		printer.DrumAmount -= drumQty
		if err := r.Printers.SetAmounts(ctx, printer.ID, printer.CartridgeAmount, printer.DrumAmount); err != nil {
			return err
		}

		entry = &models.WriteoffEntry{
			PrinterID:         printer.ID,
			WriteoffCartridge: cartridgeQty,
			WriteoffDrum:      drumQty,
			Timestamp:         s.timestamp(),
			Username:          actor,
		}
		if err := r.History.AppendWriteoff(ctx, entry); err != nil {
			return err
		}
		return recordAction(ctx, r, s.now(), auditRecord{
			Username:    actor,
			Action:      ActionWriteOff,
			EntityType:  EntityPrinter,
			EntityID:    printer.ID,
			Description: fmt.Sprintf("wrote off %d cartridge(s) and %d drum(s) from %s", cartridgeQty, drumQty, printer.Name),
		})
	})
	if err != nil {
		return nil, nil, wrapStoreError(op, err)
	}

	s.log.Info("consumables written off",
		zap.Uint("printer_id", printer.ID),
		zap.Int("cartridges", cartridgeQty),
		zap.Int("drums", drumQty),
		zap.String("user", actor))
	return printer, entry, nil
}

// SetStorageAmount overrides a storage count. The difference is booked as a
// manual correction so replaying the ledger still yields the balance.
func (s *LedgerService) SetStorageAmount(ctx context.Context, model string, t types.ConsumableType, amount int, actor string) (*models.StorageItem, error) {
	const op = "ledger.SetStorageAmount"
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, validationError(op, "model is required")
	}
	if !t.Valid() {
		return nil, validationError(op, "unknown consumable type %q", t)
	}
	if amount < 0 {
		return nil, validationError(op, "amount must not be negative, got %d", amount)
	}
	if strings.TrimSpace(actor) == "" {
		return nil, validationError(op, "acting user is required")
	}

	var (
		item  *models.StorageItem
		delta int
	)
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		var err error
		item, err = r.Storage.FindForUpdate(ctx, model, t)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(op, ErrUnknownStorageItem, fmt.Sprintf("%s (%s)", model, t))
		}
		if err != nil {
			return err
		}

		delta = amount - item.Amount
		if delta == 0 {
			return nil
		}
		item.Amount = amount
		if err := r.Storage.SetAmount(ctx, item.ID, amount); err != nil {
			return err
		}

		entry := &models.TransferEntry{
			Timestamp: s.timestamp(),
			Username:  actor,
			Model:     model,
			Type:      t,
			Amount:    delta,
			FromPlace: models.PlaceManualCorrection,
			ToPlace:   models.PlaceStorage,
		}
		if delta < 0 {
			entry.Amount = -delta
			entry.FromPlace, entry.ToPlace = models.PlaceStorage, models.PlaceManualCorrection
		}
		if err := r.History.AppendTransfer(ctx, entry); err != nil {
			return err
		}
		return recordAction(ctx, r, s.now(), auditRecord{
			Username:    actor,
			Action:      ActionSetStorageAmount,
			EntityType:  EntityStorage,
			EntityID:    item.ID,
			Description: fmt.Sprintf("set %s %s storage amount to %d (%+d)", model, t, amount, delta),
		})
	})
	if err != nil {
		return nil, wrapStoreError(op, err)
	}

	s.log.Info("storage amount corrected",
		zap.String("model", model),
		zap.Stringer("type", t),
		zap.Int("amount", amount),
		zap.Int("delta", delta),
		zap.String("user", actor))
	return item, nil
}

// SetStorageMinimum sets the storage level below which LowStockWarnings flags
// the item. Zero disables the check. The count itself is untouched.
func (s *LedgerService) SetStorageMinimum(ctx context.Context, model string, t types.ConsumableType, minimum int, actor string) (*models.StorageItem, error) {
	const op = "ledger.SetStorageMinimum"
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, validationError(op, "model is required")
	}
	if !t.Valid() {
		return nil, validationError(op, "unknown consumable type %q", t)
	}
	if minimum < 0 {
		return nil, validationError(op, "minimum must not be negative, got %d", minimum)
	}
	if strings.TrimSpace(actor) == "" {
		return nil, validationError(op, "acting user is required")
	}

	var item *models.StorageItem
	err := s.inTx(ctx, func(r *repositories.Repositories) error {
		var err error
		item, err = r.Storage.FindForUpdate(ctx, model, t)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(op, ErrUnknownStorageItem, fmt.Sprintf("%s (%s)", model, t))
		}
		if err != nil {
			return err
		}
		if item.MinAmount == minimum {
			return nil
		}
		item.MinAmount = minimum
		if err := r.Storage.SetMinAmount(ctx, item.ID, minimum); err != nil {
			return err
		}
		return recordAction(ctx, r, s.now(), auditRecord{
			Username:    actor,
			Action:      ActionSetStorageMinimum,
			EntityType:  EntityStorage,
			EntityID:    item.ID,
			Description: fmt.Sprintf("set %s %s storage minimum to %d", model, t, minimum),
		})
	})
	if err != nil {
		return nil, wrapStoreError(op, err)
	}

	s.log.Info("storage minimum set",
		zap.String("model", model),
		zap.Stringer("type", t),
		zap.Int("minimum", minimum),
		zap.String("user", actor))
	return item, nil
}
