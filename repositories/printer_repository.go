package repositories

import (
	"context"

	"botsprinter/models"
	"botsprinter/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PrinterListItem is a printer row joined with its cabinet's name. CabinetName
// is empty for printers outside any cabinet.
type PrinterListItem struct {
	models.Printer
	CabinetName string `json:"cabinet_name"`
}

type PrinterRepository struct {
	db *gorm.DB
}

func NewPrinterRepository(db *gorm.DB) *PrinterRepository {
	return &PrinterRepository{db}
}

func (r *PrinterRepository) Create(ctx context.Context, printer *models.Printer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(printer).Error
}

func (r *PrinterRepository) GetByID(ctx context.Context, id uint) (*models.Printer, error) {
	var printer models.Printer
	if err := r.db.WithContext(ctx).First(&printer, id).Error; err != nil {
		return nil, err
	}
	return &printer, nil
}

// GetForUpdate loads a printer and locks its row for the rest of the
// transaction on engines that support SELECT ... FOR UPDATE.
func (r *PrinterRepository) GetForUpdate(ctx context.Context, id uint) (*models.Printer, error) {
	var printer models.Printer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&printer, id).Error
	if err != nil {
		return nil, err
	}
	return &printer, nil
}

// UpdateDetails writes the descriptive columns only. Amounts change through
// the ledger.
func (r *PrinterRepository) UpdateDetails(ctx context.Context, printer *models.Printer) error {
	return r.db.WithContext(ctx).
		Model(&models.Printer{ID: printer.ID}).
		Select("cabinet_id", "name", "cartridge_model", "drum_model", "min_cartridge_amount", "min_drum_amount").
		Updates(map[string]interface{}{
			"cabinet_id":           printer.CabinetID,
			"name":                 printer.Name,
			"cartridge_model":      printer.CartridgeModel,
			"drum_model":           printer.DrumModel,
			"min_cartridge_amount": printer.MinCartridgeAmount,
			"min_drum_amount":      printer.MinDrumAmount,
		}).Error
}

// AddAmount shifts the on-hand count for t by delta in a single UPDATE.
func (r *PrinterRepository) AddAmount(ctx context.Context, id uint, t types.ConsumableType, delta int) error {
	col := models.AmountColumn(t)
	return r.db.WithContext(ctx).
		Model(&models.Printer{}).
		Where("id = ?", id).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta)).Error
}

func (r *PrinterRepository) SetAmounts(ctx context.Context, id uint, cartridge, drum int) error {
	return r.db.WithContext(ctx).
		Model(&models.Printer{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"cartridge_amount": cartridge,
			"drum_amount":      drum,
		}).Error
}

func (r *PrinterRepository) listQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("printers AS p").
		Select("p.*, COALESCE(c.name, '') AS cabinet_name").
		Joins("LEFT JOIN cabinets c ON c.id = p.cabinet_id")
}

// List returns all printers with their cabinet names, ordered by cabinet then
// printer name.
func (r *PrinterRepository) List(ctx context.Context) ([]PrinterListItem, error) {
	var rows []PrinterListItem
	err := r.listQuery(ctx).
		Order("cabinet_name ASC").
		Order("p.name ASC").
		Order("p.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PrinterRepository) ListByCabinet(ctx context.Context, cabinetID uint) ([]PrinterListItem, error) {
	var rows []PrinterListItem
	err := r.listQuery(ctx).
		Where("p.cabinet_id = ?", cabinetID).
		Order("p.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindCompatible lists printers whose model column for t equals model.
func (r *PrinterRepository) FindCompatible(ctx context.Context, model string, t types.ConsumableType) ([]PrinterListItem, error) {
	var rows []PrinterListItem
	err := r.listQuery(ctx).
		Where("p."+models.ModelColumn(t)+" = ?", model).
		Order("cabinet_name ASC").
		Order("p.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PrinterRepository) IDsByCabinet(ctx context.Context, cabinetID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Printer{}).
		Where("cabinet_id = ?", cabinetID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *PrinterRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Printer{}, id)
	return res.RowsAffected, res.Error
}

func (r *PrinterRepository) DeleteByCabinet(ctx context.Context, cabinetID uint) error {
	return r.db.WithContext(ctx).Where("cabinet_id = ?", cabinetID).Delete(&models.Printer{}).Error
}
