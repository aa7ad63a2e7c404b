package db

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/kmehta/invoicehub/internal/auth"
	"github.com/kmehta/invoicehub/internal/models"
)

// Seed bootstraps the first admin account. It is idempotent: an existing
// user with the given email is left untouched.
func Seed(conn *gorm.DB, adminEmail, adminPassword string) error {
	var existing models.User
	err := conn.Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("seed lookup: %w", err)
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}
	admin := models.User{Email: adminEmail, Password: hash, Name: "Administrator", IsAdmin: true}
	if err := conn.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info().Str("email", adminEmail).Msg("seeded admin user")
	return nil
}
