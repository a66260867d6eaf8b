package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/nutriscan/backend/internal/models"
	"github.com/pageza/nutriscan/backend/internal/testhelpers"
)

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "diary.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.DiaryEntry{}))
	return db
}

func exerciseGormStore(t *testing.T, db *gorm.DB) {
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	s, err := NewGormStore(ctx, db, NewStamper().WithClock(fixedClock(now)))
	require.NoError(t, err)

	empty, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	food, _ := models.LookupFood("carbonara")
	first, err := s.Append(ctx, models.DiaryEntry{Food: food})
	require.NoError(t, err)
	second, err := s.Append(ctx, models.DiaryEntry{
		Food:     models.FoodItem{Name: "Toast", Carbs: 30},
		IsManual: true,
		Extra:    map[string]json.RawMessage{"portion": json.RawMessage(`"2 fette"`)},
	})
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), first.ID)
	assert.Equal(t, now.UnixMilli()+1, second.ID)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, food, entries[0].Food)
	assert.True(t, entries[1].IsManual)
	assert.True(t, entries[1].Timestamp.Equal(now))
	assert.Empty(t, entries[0].Extra)
	assert.JSONEq(t, `"2 fette"`, string(entries[1].Extra["portion"]))

	// A new store over the same table continues after the last id
	reopened, err := NewGormStore(ctx, db, NewStamper().WithClock(fixedClock(now.Add(-time.Minute))))
	require.NoError(t, err)
	third, err := reopened.Append(ctx, models.DiaryEntry{Food: food})
	require.NoError(t, err)
	assert.Equal(t, second.ID+1, third.ID)
}

func TestGormStoreSQLite(t *testing.T) {
	exerciseGormStore(t, setupSQLite(t))
}

func TestGormStorePostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	exerciseGormStore(t, testhelpers.SetupTestDatabase(t))
}
