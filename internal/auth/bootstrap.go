package auth

import (
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aldoetobex/legal-office-backend/pkg/models"
)

// EnsureDefaultAdmin creates the first admin account when none exists.
// Called once from main before the listener binds; credentials come from
// the environment, never from source.
func EnsureDefaultAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := os.Getenv("BOOTSTRAP_ADMIN_USERNAME")
	password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	email := os.Getenv("BOOTSTRAP_ADMIN_EMAIL")
	if username == "" || password == "" || email == "" {
		return errors.New("no admin account exists and BOOTSTRAP_ADMIN_USERNAME/PASSWORD/EMAIL are not set")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Username:     username,
		Name:         username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}).Error
}
