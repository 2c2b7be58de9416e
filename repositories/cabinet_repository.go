package repositories

import (
	"context"

	"botsprinter/models"

	"gorm.io/gorm"
)

type CabinetWithCount struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	PrinterCount int    `json:"printer_count"`
}

type CabinetRepository struct {
	db *gorm.DB
}

func NewCabinetRepository(db *gorm.DB) *CabinetRepository {
	return &CabinetRepository{db}
}

func (r *CabinetRepository) Create(ctx context.Context, cabinet *models.Cabinet) error {
	return r.db.WithContext(ctx).Create(cabinet).Error
}

func (r *CabinetRepository) GetByID(ctx context.Context, id uint) (*models.Cabinet, error) {
	var cabinet models.Cabinet
	if err := r.db.WithContext(ctx).First(&cabinet, id).Error; err != nil {
		return nil, err
	}
	return &cabinet, nil
}

func (r *CabinetRepository) Rename(ctx context.Context, id uint, name string) error {
	return r.db.WithContext(ctx).Model(&models.Cabinet{}).Where("id = ?", id).Update("name", name).Error
}

// List returns every cabinet ordered by name with the number of printers it holds.
func (r *CabinetRepository) List(ctx context.Context) ([]CabinetWithCount, error) {
	var rows []CabinetWithCount
	err := r.db.WithContext(ctx).
		Table("cabinets AS c").
		Select("c.id, c.name, COUNT(p.id) AS printer_count").
		Joins("LEFT JOIN printers p ON p.cabinet_id = c.id").
		Group("c.id, c.name").
		Order("c.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CabinetRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Cabinet{}, id)
	return res.RowsAffected, res.Error
}
