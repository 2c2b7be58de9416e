package models

import "botsprinter/types"

// Printer holds the on-hand consumable counts for one device. An empty model
// string means that consumable is not tracked for the printer.
type Printer struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	CabinetID          *uint           `json:"cabinet_id" gorm:"index"`
	Cabinet            *Cabinet        `json:"cabinet,omitempty" gorm:"foreignKey:CabinetID"`
	Name               string          `json:"name" gorm:"size:255;not null"`
	CartridgeModel     string          `json:"cartridge_model" gorm:"size:255;index"`
	DrumModel          string          `json:"drum_model" gorm:"size:255;index"`
	CartridgeAmount    int             `json:"cartridge_amount" gorm:"not null;default:0"`
	DrumAmount         int             `json:"drum_amount" gorm:"not null;default:0"`
	MinCartridgeAmount int             `json:"min_cartridge_amount" gorm:"not null;default:0"`
	MinDrumAmount      int             `json:"min_drum_amount" gorm:"not null;default:0"`
	Writeoffs          []WriteoffEntry `json:"-" gorm:"foreignKey:PrinterID;constraint:OnDelete:CASCADE"`
}

func (Printer) TableName() string {
	return "printers"
}

// ModelFor returns the consumable model configured for t.
func (p *Printer) ModelFor(t types.ConsumableType) string {
	if t == types.Drum {
		return p.DrumModel
	}
	return p.CartridgeModel
}

func (p *Printer) AmountFor(t types.ConsumableType) int {
	if t == types.Drum {
		return p.DrumAmount
	}
	return p.CartridgeAmount
}

func (p *Printer) MinFor(t types.ConsumableType) int {
	if t == types.Drum {
		return p.MinDrumAmount
	}
	return p.MinCartridgeAmount
}

// AddAmount adjusts the on-hand count for t by delta.
func (p *Printer) AddAmount(t types.ConsumableType, delta int) {
	if t == types.Drum {
		p.DrumAmount += delta
		return
	}
	p.CartridgeAmount += delta
}

// AmountColumn is the printers column holding the on-hand count for t.
func AmountColumn(t types.ConsumableType) string {
	if t == types.Drum {
		return "drum_amount"
	}
	return "cartridge_amount"
}

// ModelColumn is the printers column holding the consumable model for t.
func ModelColumn(t types.ConsumableType) string {
	if t == types.Drum {
		return "drum_model"
	}
	return "cartridge_model"
}
