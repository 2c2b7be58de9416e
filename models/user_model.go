package models

import "botsprinter/types"

type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         types.Role `json:"role" gorm:"size:16;not null;default:viewer"`
}

func (User) TableName() string {
	return "users"
}
