package models

import "botsprinter/types"

// StorageItem is the central stock count for one consumable model. There is
// at most one row per (model, type). A MinAmount of zero disables the storage
// low-stock check.
type StorageItem struct {
	ID        uint                 `json:"id" gorm:"primaryKey"`
	Model     string               `json:"model" gorm:"size:255;not null;uniqueIndex:idx_storage_model_type"`
	Type      types.ConsumableType `json:"type" gorm:"size:16;not null;uniqueIndex:idx_storage_model_type"`
	Amount    int                  `json:"amount" gorm:"not null;default:0"`
	MinAmount int                  `json:"min_amount" gorm:"not null;default:0"`
}

func (StorageItem) TableName() string {
	return "storage"
}
