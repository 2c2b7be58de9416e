package repositories

import (
	"context"

	"botsprinter/models"
	"botsprinter/types"

	"gorm.io/gorm"
)

type AuditFilter struct {
	Username   string
	Action     string
	EntityType string
	From       *types.LedgerTime
	To         *types.LedgerTime
	Limit      int
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns audit entries newest first.
func (r *AuditRepository) List(ctx context.Context, f AuditFilter) ([]models.AuditEntry, error) {
	table := models.AuditEntry{}.TableName()
	q := r.db.WithContext(ctx).Table(table)
	if f.Username != "" {
		q = q.Where("username = ?", f.Username)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	q = applyTimeRange(q, table, HistoryFilter{From: f.From, To: f.To})
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var entries []models.AuditEntry
	err := q.Clauses(newestFirst(table)).Find(&entries).Error
	return entries, err
}
