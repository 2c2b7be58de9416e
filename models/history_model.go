package models

import (
	"botsprinter/idgen"
	"botsprinter/types"

	"gorm.io/gorm"
)

// Symbolic locations recorded in the transfer ledger. Printer locations are
// the printer's name at the time of the move.
const (
	PlaceExternalSupply   = "external supply"
	PlaceStorage          = "storage"
	PlaceManualCorrection = "manual correction"
)

// WriteoffEntry is an append-only record of consumables removed from a printer.
// One entry may cover both media types.
type WriteoffEntry struct {
	ID                types.SnowflakeID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	PrinterID         uint              `json:"printer_id" gorm:"not null;index"`
	WriteoffCartridge int               `json:"writeoff_cartridge" gorm:"not null;default:0"`
	WriteoffDrum      int               `json:"writeoff_drum" gorm:"not null;default:0"`
	Timestamp         types.LedgerTime  `json:"timestamp" gorm:"column:timestamp;size:19;not null;index"`
	Username          string            `json:"username" gorm:"size:255"`
}

func (WriteoffEntry) TableName() string {
	return "writeoff_history"
}

func (w *WriteoffEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == 0 {
		w.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}

// QuantityFor returns the written-off count for t.
func (w *WriteoffEntry) QuantityFor(t types.ConsumableType) int {
	if t == types.Drum {
		return w.WriteoffDrum
	}
	return w.WriteoffCartridge
}

// WriteoffColumn is the writeoff_history column counting t.
func WriteoffColumn(t types.ConsumableType) string {
	if t == types.Drum {
		return "writeoff_drum"
	}
	return "writeoff_cartridge"
}

// TransferEntry is an append-only record of a single-type stock movement.
type TransferEntry struct {
	ID        types.SnowflakeID    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Timestamp types.LedgerTime     `json:"timestamp" gorm:"column:timestamp;size:19;not null;index"`
	Username  string               `json:"username" gorm:"size:255"`
	Model     string               `json:"model" gorm:"size:255;not null;index"`
	Type      types.ConsumableType `json:"type" gorm:"size:16;not null"`
	Amount    int                  `json:"amount" gorm:"not null"`
	FromPlace string               `json:"from_place" gorm:"size:255"`
	ToPlace   string               `json:"to_place" gorm:"size:255"`
}

func (TransferEntry) TableName() string {
	return "storage_transfer_history"
}

func (t *TransferEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == 0 {
		t.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}
