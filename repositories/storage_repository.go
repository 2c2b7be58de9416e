package repositories

import (
	"context"

	"botsprinter/models"
	"botsprinter/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StorageTotals struct {
	Cartridges int `json:"cartridges"`
	Drums      int `json:"drums"`
}

type StorageRepository struct {
	db *gorm.DB
}

func NewStorageRepository(db *gorm.DB) *StorageRepository {
	return &StorageRepository{db}
}

// FindForUpdate loads the (model, type) row with a row lock. It returns
// gorm.ErrRecordNotFound when the pair has never been stocked.
func (r *StorageRepository) FindForUpdate(ctx context.Context, model string, t types.ConsumableType) (*models.StorageItem, error) {
	var item models.StorageItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("model = ? AND type = ?", model, t).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *StorageRepository) Create(ctx context.Context, item *models.StorageItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *StorageRepository) SetAmount(ctx context.Context, id uint, amount int) error {
	return r.db.WithContext(ctx).
		Model(&models.StorageItem{}).
		Where("id = ?", id).
		UpdateColumn("amount", amount).Error
}

func (r *StorageRepository) SetMinAmount(ctx context.Context, id uint, minimum int) error {
	return r.db.WithContext(ctx).
		Model(&models.StorageItem{}).
		Where("id = ?", id).
		UpdateColumn("min_amount", minimum).Error
}

func (r *StorageRepository) List(ctx context.Context) ([]models.StorageItem, error) {
	var items []models.StorageItem
	err := r.db.WithContext(ctx).
		Order("type ASC").
		Order("model ASC").
		Find(&items).Error
	return items, err
}

func (r *StorageRepository) Totals(ctx context.Context) (StorageTotals, error) {
	var rows []struct {
		Type  types.ConsumableType
		Total int
	}
	err := r.db.WithContext(ctx).
		Model(&models.StorageItem{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return StorageTotals{}, err
	}

	var totals StorageTotals
	for _, row := range rows {
		switch row.Type {
		case types.Cartridge:
			totals.Cartridges = row.Total
		case types.Drum:
			totals.Drums = row.Total
		}
	}
	return totals, nil
}
