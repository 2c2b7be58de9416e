package seed

import (
	"errors"
	"fmt"

	"botsprinter/models"
	"botsprinter/types"
	"botsprinter/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultAdminUsername = "admin"

// SeedDefaultAdmin creates the admin account on an empty users table. Existing
// installations are left alone.
func SeedDefaultAdmin(db *gorm.DB, password string, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	var existing models.User
	err := db.Where("username = ?", DefaultAdminUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup default admin: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash default admin password: %w", err)
	}
	admin := models.User{
		Username:     DefaultAdminUsername,
		PasswordHash: hash,
		Role:         types.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	log.Warn("default admin account created, change its password", zap.String("username", admin.Username))
	return nil
}
