package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/pageza/nutriscan/backend/internal/models"
)

// RunMigrations brings the schema up to date for the diary models
func RunMigrations(db *gorm.DB) error {
	log.Printf("Running GORM auto-migration for %s", db.Dialector.Name())
	if err := db.AutoMigrate(&models.DiaryEntry{}); err != nil {
		return fmt.Errorf("failed to migrate diary entries: %w", err)
	}
	return nil
}
