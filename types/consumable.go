package types

import "fmt"

// ConsumableType tags a storage row or a transfer as cartridge or drum stock.
type ConsumableType string

const (
	Cartridge ConsumableType = "cartridge"
	Drum      ConsumableType = "drum"
)

var ConsumableTypes = []ConsumableType{Cartridge, Drum}

func (t ConsumableType) Valid() bool {
	return t == Cartridge || t == Drum
}

func (t ConsumableType) String() string {
	return string(t)
}

func ParseConsumableType(s string) (ConsumableType, error) {
	t := ConsumableType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown consumable type %q", s)
	}
	return t, nil
}
