package migration

import (
	"botsprinter/models"

	"gorm.io/gorm"
)

// Migrate creates or updates the schema. Parents come before children so the
// foreign keys resolve on every driver.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Cabinet{},
		&models.Printer{},
		&models.StorageItem{},
		&models.WriteoffEntry{},
		&models.TransferEntry{},
		&models.AuditEntry{},
	)
}
