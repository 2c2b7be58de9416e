package repositories

import "gorm.io/gorm"

// Repositories groups the data access objects that share one handle. Services
// build a fresh set from the transaction handle inside db.Transaction.
type Repositories struct {
	Cabinets *CabinetRepository
	Printers *PrinterRepository
	Storage  *StorageRepository
	History  *HistoryRepository
	Users    *UserRepository
	Audit    *AuditRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Cabinets: NewCabinetRepository(db),
		Printers: NewPrinterRepository(db),
		Storage:  NewStorageRepository(db),
		History:  NewHistoryRepository(db),
		Users:    NewUserRepository(db),
		Audit:    NewAuditRepository(db),
	}
}
