package repositories

import (
	"context"

	"botsprinter/models"
	"botsprinter/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoryFilter narrows ledger listings. Zero values mean "no restriction".
// Place matches either end of a transfer; PrinterID applies to write-offs.
type HistoryFilter struct {
	Model     string
	Type      types.ConsumableType
	PrinterID uint
	Place     string
	Username  string
	From      *types.LedgerTime
	To        *types.LedgerTime
	Limit     int
}

// WriteoffListItem is a write-off joined with the printer it came from.
type WriteoffListItem struct {
	models.WriteoffEntry
	PrinterName    string `json:"printer_name"`
	CartridgeModel string `json:"cartridge_model"`
	DrumModel      string `json:"drum_model"`
}

// ModelUsage is the summed write-off quantity for one consumable model.
type ModelUsage struct {
	Model string `json:"model"`
	Total int    `json:"total"`
}

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db}
}

func (r *HistoryRepository) AppendTransfer(ctx context.Context, entry *models.TransferEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *HistoryRepository) AppendWriteoff(ctx context.Context, entry *models.WriteoffEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func timestampColumn(table string) clause.Column {
	return clause.Column{Table: table, Name: "timestamp"}
}

func newestFirst(table string) clause.OrderBy {
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: timestampColumn(table), Desc: true},
		{Column: clause.Column{Table: table, Name: "id"}, Desc: true},
	}}
}

func applyTimeRange(q *gorm.DB, table string, f HistoryFilter) *gorm.DB {
	if f.From != nil {
		q = q.Clauses(clause.Where{Exprs: []clause.Expression{clause.Gte{Column: timestampColumn(table), Value: *f.From}}})
	}
	if f.To != nil {
		q = q.Clauses(clause.Where{Exprs: []clause.Expression{clause.Lte{Column: timestampColumn(table), Value: *f.To}}})
	}
	return q
}

// ListTransfers returns transfer entries newest first.
func (r *HistoryRepository) ListTransfers(ctx context.Context, f HistoryFilter) ([]models.TransferEntry, error) {
	q := r.db.WithContext(ctx).Table(models.TransferEntry{}.TableName())
	if f.Model != "" {
		q = q.Where("model = ?", f.Model)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Place != "" {
		q = q.Where("(from_place = ? OR to_place = ?)", f.Place, f.Place)
	}
	if f.Username != "" {
		q = q.Where("username = ?", f.Username)
	}
	q = applyTimeRange(q, models.TransferEntry{}.TableName(), f)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var entries []models.TransferEntry
	err := q.Clauses(newestFirst(models.TransferEntry{}.TableName())).Find(&entries).Error
	return entries, err
}

// ListWriteoffs returns write-offs newest first with the printer's name and
// models. A Type filter keeps entries with a positive quantity of that type;
// a Model filter matches the printer's model column for Type (cartridge when
// Type is empty).
func (r *HistoryRepository) ListWriteoffs(ctx context.Context, f HistoryFilter) ([]WriteoffListItem, error) {
	q := r.db.WithContext(ctx).
		Table("writeoff_history AS w").
		Select("w.*, p.name AS printer_name, p.cartridge_model, p.drum_model").
		Joins("JOIN printers p ON p.id = w.printer_id")
	if f.Type != "" {
		q = q.Where("w." + models.WriteoffColumn(f.Type) + " > 0")
	}
	if f.Model != "" {
		t := f.Type
		if t == "" {
			t = types.Cartridge
		}
		q = q.Where("p."+models.ModelColumn(t)+" = ?", f.Model)
	}
	if f.PrinterID != 0 {
		q = q.Where("w.printer_id = ?", f.PrinterID)
	}
	if f.Username != "" {
		q = q.Where("w.username = ?", f.Username)
	}
	q = applyTimeRange(q, "w", f)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []WriteoffListItem
	err := q.Clauses(newestFirst("w")).Scan(&rows).Error
	return rows, err
}

// UsageEntries returns write-offs with a positive quantity of t, oldest first.
// When model is set only printers whose model column for t matches are kept.
func (r *HistoryRepository) UsageEntries(ctx context.Context, t types.ConsumableType, model string) ([]models.WriteoffEntry, error) {
	q := r.db.WithContext(ctx).
		Table("writeoff_history AS w").
		Select("w.*").
		Where("w." + models.WriteoffColumn(t) + " > 0")
	if model != "" {
		q = q.Joins("JOIN printers p ON p.id = w.printer_id").
			Where("p."+models.ModelColumn(t)+" = ?", model)
	}

	var entries []models.WriteoffEntry
	err := q.Clauses(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: timestampColumn("w")},
		{Column: clause.Column{Table: "w", Name: "id"}},
	}}).Scan(&entries).Error
	return entries, err
}

// TopModels sums write-offs of t per printer model and returns the n largest,
// ties broken by model name. Printers without a model for t are skipped.
func (r *HistoryRepository) TopModels(ctx context.Context, t types.ConsumableType, n int) ([]ModelUsage, error) {
	qtyCol := "w." + models.WriteoffColumn(t)
	modelCol := "p." + models.ModelColumn(t)

	var rows []ModelUsage
	err := r.db.WithContext(ctx).
		Table("writeoff_history AS w").
		Select(modelCol + " AS model, SUM(" + qtyCol + ") AS total").
		Joins("JOIN printers p ON p.id = w.printer_id").
		Where(qtyCol + " > 0").
		Where(modelCol + " <> ''").
		Group(modelCol).
		Order("total DESC").
		Order("model ASC").
		Limit(n).
		Scan(&rows).Error
	return rows, err
}

func (r *HistoryRepository) DeleteWriteoffsByPrinters(ctx context.Context, printerIDs []uint) error {
	if len(printerIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("printer_id IN ?", printerIDs).
		Delete(&models.WriteoffEntry{}).Error
}

func (r *HistoryRepository) CountTransfers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.TransferEntry{}).Count(&n).Error
	return n, err
}
