package models

type Cabinet struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Name     string    `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Printers []Printer `json:"printers,omitempty" gorm:"foreignKey:CabinetID;constraint:OnDelete:CASCADE"`
}

func (Cabinet) TableName() string {
	return "cabinets"
}
