package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"botsprinter/models"
	"botsprinter/repositories"
	"botsprinter/types"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LedgerSuite struct {
	suite.Suite
	db     *gorm.DB
	clock  *fakeClock
	ledger *LedgerService
	ctx    context.Context
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.db = openTestDB(s.T())
	s.clock = &fakeClock{}
	s.clock.Set(2024, time.March, 1)
	s.ledger = NewLedgerService(s.db, zap.NewNop()).WithClock(s.clock.Now)
	s.ctx = context.Background()
}

func (s *LedgerSuite) storageAmount(model string, t types.ConsumableType) int {
	var item models.StorageItem
	s.Require().NoError(s.db.Where("model = ? AND type = ?", model, t).First(&item).Error)
	return item.Amount
}

func (s *LedgerSuite) printer(id uint) models.Printer {
	var p models.Printer
	s.Require().NoError(s.db.First(&p, id).Error)
	return p
}

func (s *LedgerSuite) transferCount() int64 {
	var n int64
	s.Require().NoError(s.db.Model(&models.TransferEntry{}).Count(&n).Error)
	return n
}

func (s *LedgerSuite) TestReceiveStockAccumulatesInOneRow() {
	_, err := s.ledger.ReceiveStock(s.ctx, "CE285A", types.Cartridge, 4, "alice")
	s.Require().NoError(err)
	item, err := s.ledger.ReceiveStock(s.ctx, "CE285A", types.Cartridge, 6, "alice")
	s.Require().NoError(err)

	s.Equal(10, item.Amount)
	var rows int64
	s.Require().NoError(s.db.Model(&models.StorageItem{}).Count(&rows).Error)
	s.Equal(int64(1), rows)

	var entries []models.TransferEntry
	s.Require().NoError(s.db.Order("id").Find(&entries).Error)
	s.Require().Len(entries, 2)
	for _, e := range entries {
		s.Equal(models.PlaceExternalSupply, e.FromPlace)
		s.Equal(models.PlaceStorage, e.ToPlace)
		s.Equal("alice", e.Username)
		s.Equal("2024-03-01 10:00:00", e.Timestamp.String())
	}
}

func (s *LedgerSuite) TestReceiveStockKeepsTypesApart() {
	_, err := s.ledger.ReceiveStock(s.ctx, "TN-2420", types.Cartridge, 2, "alice")
	s.Require().NoError(err)
	_, err = s.ledger.ReceiveStock(s.ctx, "TN-2420", types.Drum, 3, "alice")
	s.Require().NoError(err)

	s.Equal(2, s.storageAmount("TN-2420", types.Cartridge))
	s.Equal(3, s.storageAmount("TN-2420", types.Drum))
}

func (s *LedgerSuite) TestValidationHappensBeforeStoreAccess() {
	cases := []struct {
		name  string
		model string
		typ   types.ConsumableType
		qty   int
		actor string
	}{
		{"zero quantity", "X", types.Cartridge, 0, "alice"},
		{"negative quantity", "X", types.Cartridge, -2, "alice"},
		{"empty model", "  ", types.Cartridge, 1, "alice"},
		{"bad type", "X", types.ConsumableType("toner"), 1, "alice"},
		{"no actor", "X", types.Cartridge, 1, ""},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.ledger.ReceiveStock(s.ctx, tc.model, tc.typ, tc.qty, tc.actor)
			s.Equal(KindValidation, KindOf(err))
		})
	}
	s.Equal(int64(0), s.transferCount())
}

func (s *LedgerSuite) TestTransferToPrinter() {
	p := createPrinter(s.T(), s.db, models.Printer{Name: "HP 1", CartridgeModel: "CE285A"})
	_, err := s.ledger.ReceiveStock(s.ctx, "CE285A", types.Cartridge, 5, "alice")
	s.Require().NoError(err)

	item, printer, err := s.ledger.TransferToPrinter(s.ctx, "CE285A", types.Cartridge, 2, p.ID, "bob")
	s.Require().NoError(err)

	s.Equal(3, item.Amount)
	s.Equal(2, printer.CartridgeAmount)
	s.Equal(3, s.storageAmount("CE285A", types.Cartridge))
	s.Equal(2, s.printer(p.ID).CartridgeAmount)

	var last models.TransferEntry
	s.Require().NoError(s.db.Order("id desc").First(&last).Error)
	s.Equal(models.PlaceStorage, last.FromPlace)
	s.Equal("HP 1", last.ToPlace)
	s.Equal(2, last.Amount)
	s.Equal("bob", last.Username)
}

func (s *LedgerSuite) TestFailedTransferLeavesBalancesUntouched() {
	p := createPrinter(s.T(), s.db, models.Printer{Name: "HP 1", CartridgeModel: "CE285A", CartridgeAmount: 1})
	_, err := s.ledger.ReceiveStock(s.ctx, "CE285A", types.Cartridge, 3, "alice")
	s.Require().NoError(err)
	before := s.transferCount()

	_, _, err = s.ledger.TransferToPrinter(s.ctx, "CE285A", types.Cartridge, 4, p.ID, "alice")
	s.True(errors.Is(err, ErrInsufficientStock))
	s.Equal(KindInsufficientStock, KindOf(err))

	_, _, err = s.ledger.TransferToPrinter(s.ctx, "CE285A", types.Cartridge, 1, p.ID+100, "alice")
	s.True(errors.Is(err, ErrPrinterNotFound))

	_, _, err = s.ledger.TransferToPrinter(s.ctx, "UNKNOWN", types.Cartridge, 1, p.ID, "alice")
	s.True(errors.Is(err, ErrUnknownStorageItem))
	s.Equal(KindNotFound, KindOf(err))

	s.Equal(3, s.storageAmount("CE285A", types.Cartridge))
	s.Equal(1, s.printer(p.ID).CartridgeAmount)
	s.Equal(before, s.transferCount())
}

func (s *LedgerSuite) TestTransferChecksPrinterBeforeStorage() {
	_, _, err := s.ledger.TransferToPrinter(s.ctx, "UNKNOWN", types.Cartridge, 1, 999, "alice")
	s.True(errors.Is(err, ErrPrinterNotFound))
}

func (s *LedgerSuite) TestOppositeMovesConserveStock() {
	p := createPrinter(s.T(), s.db, models.Printer{Name: "HP 1", CartridgeModel: "CE285A", CartridgeAmount: 10})
	_, err := s.ledger.ReceiveStock(s.ctx, "CE285A", types.Cartridge, 10, "alice")
	s.Require().NoError(err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, err := s.ledger.TransferToPrinter(s.ctx, "CE285A", types.Cartridge, 1, p.ID, "alice")
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, _, err := s.ledger.ReturnToStorage(s.ctx, "CE285A", types.Cartridge, 1, p.ID, "bob")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	s.Equal(10, s.storageAmount("CE285A", types.Cartridge))
	s.Equal(10, s.printer(p.ID).CartridgeAmount)
	s.Equal(int64(21), s.transferCount())
}

func (s *LedgerSuite) TestReturnToStorage() {
	p := createPrinter(s.T(), s.db, models.Printer{Name: "Canon", DrumModel: "C-EXV", DrumAmount: 3})

	item, printer, err := s.ledger.ReturnToStorage(s.ctx, "C-EXV", types.Drum, 2, p.ID, "carol")
	s.Require().NoError(err)
	s.Equal(2, item.Amount)
	s.Equal(1, printer.DrumAmount)
	s.Equal(1, s.printer(p.ID).DrumAmount)

	var last models.TransferEntry
	s.Require().NoError(s.db.Order("id desc").First(&last).Error)
	s.Equal("Canon", last.FromPlace)
	s.Equal(models.PlaceStorage, last.ToPlace)

	_, _, err = s.ledger.ReturnToStorage(s.ctx, "C-EXV", types.Drum, 5, p.ID, "carol")
	s.True(errors.Is(err, ErrInsufficientPrinterStock))
	s.Equal(1, s.printer(p.ID).DrumAmount)
	s.Equal(2, s.storageAmount("C-EXV", types.Drum))
}

func (s *LedgerSuite) TestWriteOff() {
	p := createPrinter(s.T(), s.db, models.Printer{Name: "HP 2", CartridgeAmount: 5, DrumAmount: 1})

	printer, entry, err := s.ledger.WriteOff(s.ctx, p.ID, 3, 0, "alice")
	s.Require().NoError(err)

	s.Equal(2, printer.CartridgeAmount)
	s.Equal(2, s.printer(p.ID).CartridgeAmount)
	s.Equal(1, s.printer(p.ID).DrumAmount)

	var entries []models.WriteoffEntry
	s.Require().NoError(s.db.Find(&entries).Error)
	s.Require().Len(entries, 1)
	s.Equal(entry.ID, entries[0].ID)
	s.Equal(p.ID, entries[0].PrinterID)
	s.Equal(3, entries[0].WriteoffCartridge)
	s.Equal(0, entries[0].WriteoffDrum)
	s.Equal("alice", entries[0].Username)
}

func (s *LedgerSuite) TestWriteOffRejectsBadQuantities() {
	p := createPrinter(s.T(), s.db, models.Printer{Name: "HP 2", CartridgeAmount: 1, DrumAmount: 1})

	_, _, err := s.ledger.WriteOff(s.ctx, p.ID, 0, 0, "alice")
	s.Equal(KindValidation, KindOf(err))
	_, _, err = s.ledger.WriteOff(s.ctx, p.ID, -1, 1, "alice")
	s.Equal(KindValidation, KindOf(err))
	_, _, err = s.ledger.WriteOff(s.ctx, p.ID, 1, 2, "alice")
	s.True(errors.Is(err, ErrInsufficientPrinterStock))
	_, _, err = s.ledger.WriteOff(s.ctx, p.ID+1, 1, 0, "alice")
	s.Equal(KindNotFound, KindOf(err))

	after := s.printer(p.ID)
	s.Equal(1, after.CartridgeAmount)
	s.Equal(1, after.DrumAmount)
}

func (s *LedgerSuite) TestSetStorageAmountBooksCorrections() {
	_, err := s.ledger.ReceiveStock(s.ctx, "CE285A", types.Cartridge, 5, "alice")
	s.Require().NoError(err)

	item, err := s.ledger.SetStorageAmount(s.ctx, "CE285A", types.Cartridge, 8, "admin")
	s.Require().NoError(err)
	s.Equal(8, item.Amount)

	_, err = s.ledger.SetStorageAmount(s.ctx, "CE285A", types.Cartridge, 6, "admin")
	s.Require().NoError(err)
	_, err = s.ledger.SetStorageAmount(s.ctx, "CE285A", types.Cartridge, 6, "admin")
	s.Require().NoError(err)

	var entries []models.TransferEntry
	s.Require().NoError(s.db.Order("id").Find(&entries).Error)
	s.Require().Len(entries, 3)
	s.Equal(models.PlaceManualCorrection, entries[1].FromPlace)
	s.Equal(3, entries[1].Amount)
	s.Equal(models.PlaceManualCorrection, entries[2].ToPlace)
	s.Equal(2, entries[2].Amount)

	_, err = s.ledger.SetStorageAmount(s.ctx, "NOPE", types.Cartridge, 1, "admin")
	s.True(errors.Is(err, ErrUnknownStorageItem))
	_, err = s.ledger.SetStorageAmount(s.ctx, "CE285A", types.Cartridge, -1, "admin")
	s.Equal(KindValidation, KindOf(err))
}

// Replaying every ledger entry from zero must reproduce the stored balances.
func (s *LedgerSuite) TestLedgerReplayMatchesBalances() {
	hp := createPrinter(s.T(), s.db, models.Printer{Name: "HP", CartridgeModel: "A", DrumModel: "D"})
	canon := createPrinter(s.T(), s.db, models.Printer{Name: "Canon", CartridgeModel: "B"})

	steps := []func() error{
		func() error { _, err := s.ledger.ReceiveStock(s.ctx, "A", types.Cartridge, 10, "u"); return err },
		func() error { _, err := s.ledger.ReceiveStock(s.ctx, "B", types.Cartridge, 4, "u"); return err },
		func() error { _, err := s.ledger.ReceiveStock(s.ctx, "D", types.Drum, 2, "u"); return err },
		func() error {
			_, _, err := s.ledger.TransferToPrinter(s.ctx, "A", types.Cartridge, 6, hp.ID, "u")
			return err
		},
		func() error {
			_, _, err := s.ledger.TransferToPrinter(s.ctx, "D", types.Drum, 2, hp.ID, "u")
			return err
		},
		func() error {
			_, _, err := s.ledger.TransferToPrinter(s.ctx, "B", types.Cartridge, 3, canon.ID, "u")
			return err
		},
		func() error { _, _, err := s.ledger.WriteOff(s.ctx, hp.ID, 2, 1, "u"); return err },
		func() error {
			_, _, err := s.ledger.ReturnToStorage(s.ctx, "A", types.Cartridge, 1, hp.ID, "u")
			return err
		},
		func() error { _, _, err := s.ledger.WriteOff(s.ctx, canon.ID, 3, 0, "u"); return err },
		func() error { _, err := s.ledger.SetStorageAmount(s.ctx, "B", types.Cartridge, 0, "u"); return err },
		func() error {
			_, _, err := s.ledger.TransferToPrinter(s.ctx, "A", types.Cartridge, 99, hp.ID, "u")
			return err
		},
	}
	for i, step := range steps {
		err := step()
		if i == len(steps)-1 {
			s.Require().Error(err)
			continue
		}
		s.Require().NoError(err)
	}

	type key struct {
		place string
		t     types.ConsumableType
	}
	replayed := map[key]int{}
	var transfers []models.TransferEntry
	s.Require().NoError(s.db.Find(&transfers).Error)
	for _, e := range transfers {
		replayed[key{e.FromPlace, e.Type}] -= e.Amount
		replayed[key{e.ToPlace, e.Type}] += e.Amount
	}
	var writeoffs []models.WriteoffEntry
	s.Require().NoError(s.db.Find(&writeoffs).Error)
	names := map[uint]string{hp.ID: "HP", canon.ID: "Canon"}
	for _, w := range writeoffs {
		replayed[key{names[w.PrinterID], types.Cartridge}] -= w.WriteoffCartridge
		replayed[key{names[w.PrinterID], types.Drum}] -= w.WriteoffDrum
	}

	var items []models.StorageItem
	s.Require().NoError(s.db.Find(&items).Error)
	storageByType := map[types.ConsumableType]int{}
	for _, it := range items {
		storageByType[it.Type] += it.Amount
	}
	s.Equal(storageByType[types.Cartridge], replayed[key{models.PlaceStorage, types.Cartridge}])
	s.Equal(storageByType[types.Drum], replayed[key{models.PlaceStorage, types.Drum}])
	s.Equal(5, s.storageAmount("A", types.Cartridge))

	for id, name := range names {
		p := s.printer(id)
		s.Equal(p.CartridgeAmount, replayed[key{name, types.Cartridge}], name)
		s.Equal(p.DrumAmount, replayed[key{name, types.Drum}], name)
	}
}

func (s *LedgerSuite) TestHistoryQueries() {
	p := createPrinter(s.T(), s.db, models.Printer{Name: "HP", CartridgeModel: "A"})
	_, err := s.ledger.ReceiveStock(s.ctx, "A", types.Cartridge, 5, "alice")
	s.Require().NoError(err)
	s.clock.Set(2024, time.April, 2)
	_, _, err = s.ledger.TransferToPrinter(s.ctx, "A", types.Cartridge, 2, p.ID, "bob")
	s.Require().NoError(err)
	_, _, err = s.ledger.WriteOff(s.ctx, p.ID, 1, 0, "bob")
	s.Require().NoError(err)

	transfers, err := s.ledger.TransferHistory(s.ctx, historyFilter("", "", 0))
	s.Require().NoError(err)
	s.Require().Len(transfers, 2)
	s.Equal("HP", transfers[0].ToPlace)

	byAlice, err := s.ledger.TransferHistory(s.ctx, historyFilter("", "alice", 0))
	s.Require().NoError(err)
	s.Len(byAlice, 1)

	writeoffs, err := s.ledger.WriteoffHistory(s.ctx, historyFilter("A", "", 0))
	s.Require().NoError(err)
	s.Require().Len(writeoffs, 1)
	s.Equal("HP", writeoffs[0].PrinterName)

	_, err = s.ledger.TransferHistory(s.ctx, historyFilter("", "", -1))
	s.Equal(KindValidation, KindOf(err))

	summary, err := s.ledger.StorageSummary(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, summary.Cartridges)
	s.Equal(0, summary.Drums)

	compatible, err := s.ledger.CompatiblePrinters(s.ctx, "A", types.Cartridge)
	s.Require().NoError(err)
	s.Require().Len(compatible, 1)
	s.Equal(p.ID, compatible[0].ID)
}

func (s *LedgerSuite) TestTransferHistoryByPrinter() {
	a := createPrinter(s.T(), s.db, models.Printer{Name: "HP A", CartridgeModel: "A"})
	b := createPrinter(s.T(), s.db, models.Printer{Name: "HP B", CartridgeModel: "A"})
	_, err := s.ledger.ReceiveStock(s.ctx, "A", types.Cartridge, 5, "alice")
	s.Require().NoError(err)
	_, _, err = s.ledger.TransferToPrinter(s.ctx, "A", types.Cartridge, 2, a.ID, "alice")
	s.Require().NoError(err)
	_, _, err = s.ledger.TransferToPrinter(s.ctx, "A", types.Cartridge, 1, b.ID, "alice")
	s.Require().NoError(err)
	_, _, err = s.ledger.ReturnToStorage(s.ctx, "A", types.Cartridge, 1, a.ID, "alice")
	s.Require().NoError(err)

	entries, err := s.ledger.TransferHistory(s.ctx, repositories.HistoryFilter{PrinterID: a.ID})
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	for _, e := range entries {
		s.True(e.FromPlace == "HP A" || e.ToPlace == "HP A", "%s -> %s", e.FromPlace, e.ToPlace)
	}

	_, err = s.ledger.TransferHistory(s.ctx, repositories.HistoryFilter{PrinterID: b.ID + 100})
	s.True(errors.Is(err, ErrPrinterNotFound))
}

func (s *LedgerSuite) TestSetStorageMinimum() {
	_, err := s.ledger.ReceiveStock(s.ctx, "A", types.Cartridge, 2, "alice")
	s.Require().NoError(err)
	before := s.transferCount()

	item, err := s.ledger.SetStorageMinimum(s.ctx, "A", types.Cartridge, 4, "admin")
	s.Require().NoError(err)
	s.Equal(4, item.MinAmount)
	s.Equal(2, item.Amount)
	s.Equal(before, s.transferCount())

	var stored models.StorageItem
	s.Require().NoError(s.db.Where("model = ?", "A").First(&stored).Error)
	s.Equal(4, stored.MinAmount)

	_, err = s.ledger.SetStorageMinimum(s.ctx, "A", types.Cartridge, -1, "admin")
	s.Equal(KindValidation, KindOf(err))
	_, err = s.ledger.SetStorageMinimum(s.ctx, "B", types.Cartridge, 1, "admin")
	s.True(errors.Is(err, ErrUnknownStorageItem))
}
