package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/nutriscan/backend/internal/models"
)

// GormStore keeps entries in the diary_entries table
type GormStore struct {
	db     *gorm.DB
	stamps *Stamper
}

// NewGormStore creates a store over an already migrated database
func NewGormStore(ctx context.Context, db *gorm.DB, stamps *Stamper) (*GormStore, error) {
	if stamps == nil {
		stamps = NewStamper()
	}

	var last int64
	if err := db.WithContext(ctx).Model(&models.DiaryEntry{}).Select("COALESCE(MAX(id), 0)").Scan(&last).Error; err != nil {
		return nil, fmt.Errorf("failed to read last entry id: %w", err)
	}
	stamps.Seed(last)

	return &GormStore{db: db, stamps: stamps}, nil
}

// Append stamps and inserts the entry
func (s *GormStore) Append(ctx context.Context, entry models.DiaryEntry) (models.DiaryEntry, error) {
	s.stamps.Stamp(&entry)
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return models.DiaryEntry{}, fmt.Errorf("failed to create diary entry: %w", err)
	}
	return entry, nil
}

// List returns all entries ordered by id
func (s *GormStore) List(ctx context.Context) ([]models.DiaryEntry, error) {
	entries := []models.DiaryEntry{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list diary entries: %w", err)
	}
	return entries, nil
}
