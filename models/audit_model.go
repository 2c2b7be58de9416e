package models

import (
	"botsprinter/idgen"
	"botsprinter/types"

	"gorm.io/gorm"
)

// AuditEntry records who did what to which entity. Entries are written in the
// same transaction as the change they describe.
type AuditEntry struct {
	ID          types.SnowflakeID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Timestamp   types.LedgerTime  `json:"timestamp" gorm:"column:timestamp;size:19;not null;index"`
	Username    string            `json:"username" gorm:"size:255;index"`
	Action      string            `json:"action" gorm:"size:50;not null"`
	EntityType  string            `json:"entity_type" gorm:"size:50"`
	EntityID    uint              `json:"entity_id"`
	Description string            `json:"description" gorm:"type:text"`
	IPAddress   string            `json:"ip_address" gorm:"size:45"`
}

func (AuditEntry) TableName() string {
	return "audit_log"
}

func (a *AuditEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == 0 {
		a.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}
