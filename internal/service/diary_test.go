package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutriscan/backend/internal/models"
	"github.com/pageza/nutriscan/backend/internal/stats"
	"github.com/pageza/nutriscan/backend/internal/testhelpers"
)

type recordingHub struct {
	mu     sync.Mutex
	events []any
}

func (h *recordingHub) Broadcast(payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, payload)
}

func TestCreateEntryStoresAndBroadcasts(t *testing.T) {
	entries := new(testhelpers.MockEntryStore)
	hub := &recordingHub{}
	svc := NewDiaryService(entries, nil, hub)

	food, _ := models.LookupFood("carbonara")
	stored := models.DiaryEntry{ID: 42, Food: food}
	entries.On("Append", mock.Anything, models.DiaryEntry{Food: food, Image: "data:image/png;base64,AAAA"}).
		Return(stored, nil)

	got, err := svc.CreateEntry(context.Background(), &models.CreateEntryRequest{Food: food, Image: "data:image/png;base64,AAAA"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)

	require.Len(t, hub.events, 1)
	assert.Equal(t, EntryEvent{Type: EventEntryCreated, Entry: stored}, hub.events[0])
	entries.AssertExpectations(t)
}

func TestCreateEntryOffloadsImage(t *testing.T) {
	entries := new(testhelpers.MockEntryStore)
	images := new(testhelpers.MockImageUploader)
	svc := NewDiaryService(entries, images, nil)

	images.On("UploadDataURI", mock.Anything, "data:image/png;base64,AAAA").
		Return("https://meals.s3.amazonaws.com/diary-images/x.png", nil)
	entries.On("Append", mock.Anything, mock.MatchedBy(func(e models.DiaryEntry) bool {
		return e.Image == "https://meals.s3.amazonaws.com/diary-images/x.png"
	})).Return(models.DiaryEntry{ID: 1}, nil)

	_, err := svc.CreateEntry(context.Background(), &models.CreateEntryRequest{Image: "data:image/png;base64,AAAA"})
	require.NoError(t, err)
	images.AssertExpectations(t)
	entries.AssertExpectations(t)
}

func TestCreateEntryKeepsInlineImageWhenOffloadFails(t *testing.T) {
	entries := new(testhelpers.MockEntryStore)
	images := new(testhelpers.MockImageUploader)
	svc := NewDiaryService(entries, images, nil)

	images.On("UploadDataURI", mock.Anything, mock.Anything).Return("", errors.New("s3 down"))
	entries.On("Append", mock.Anything, mock.MatchedBy(func(e models.DiaryEntry) bool {
		return e.Image == "data:image/png;base64,AAAA"
	})).Return(models.DiaryEntry{ID: 1}, nil)

	_, err := svc.CreateEntry(context.Background(), &models.CreateEntryRequest{Image: "data:image/png;base64,AAAA"})
	require.NoError(t, err)
	entries.AssertExpectations(t)
}

func TestCreateEntrySkipsOffloadForManualEntries(t *testing.T) {
	entries := new(testhelpers.MockEntryStore)
	images := new(testhelpers.MockImageUploader)
	svc := NewDiaryService(entries, images, nil)

	entries.On("Append", mock.Anything, mock.Anything).Return(models.DiaryEntry{ID: 7, IsManual: true}, nil)

	_, err := svc.CreateEntry(context.Background(), &models.CreateEntryRequest{
		Food:     models.FoodItem{Name: "Toast", Carbs: 30},
		IsManual: true,
	})
	require.NoError(t, err)
	images.AssertNotCalled(t, "UploadDataURI", mock.Anything, mock.Anything)
}

func TestCreateEntryStoreFailure(t *testing.T) {
	entries := new(testhelpers.MockEntryStore)
	hub := &recordingHub{}
	svc := NewDiaryService(entries, nil, hub)

	entries.On("Append", mock.Anything, mock.Anything).Return(models.DiaryEntry{}, errors.New("disk full"))

	_, err := svc.CreateEntry(context.Background(), &models.CreateEntryRequest{})
	assert.EqualError(t, err, "disk full")
	assert.Empty(t, hub.events)
}

func TestTodaySummary(t *testing.T) {
	now := time.Date(2026, 10, 14, 13, 0, 0, 0, time.UTC)
	pasta, _ := models.LookupFood("pasta_pomodoro")
	pizza, _ := models.LookupFood("pizza_margherita")

	entries := new(testhelpers.MockEntryStore)
	entries.On("List", mock.Anything).Return([]models.DiaryEntry{
		{ID: 1, Timestamp: now.Add(-2 * time.Hour), Food: pasta},
		{ID: 2, Timestamp: now.AddDate(0, 0, -1), Food: pizza},
	}, nil)

	svc := NewDiaryService(entries, nil, nil)
	svc.now = func() time.Time { return now }

	summary, err := svc.TodaySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EntryCount)
	assert.InDelta(t, 65.2, summary.Totals.Carbs, 1e-9)
	assert.Equal(t, stats.CarbsBelow, summary.CarbBand)
}

func TestTodaySummaryStoreError(t *testing.T) {
	entries := new(testhelpers.MockEntryStore)
	entries.On("List", mock.Anything).Return(nil, errors.New("corrupt"))

	_, err := NewDiaryService(entries, nil, nil).TodaySummary(context.Background())
	assert.Error(t, err)
}

func TestCreateEntryForwardsExtraFields(t *testing.T) {
	entries := new(testhelpers.MockEntryStore)
	svc := NewDiaryService(entries, nil, nil)

	extra := map[string]json.RawMessage{"ingredients": json.RawMessage(`"pane, pomodoro"`)}
	entries.On("Append", mock.Anything, mock.MatchedBy(func(e models.DiaryEntry) bool {
		return string(e.Extra["ingredients"]) == `"pane, pomodoro"`
	})).Return(models.DiaryEntry{ID: 5, Extra: extra}, nil)

	got, err := svc.CreateEntry(context.Background(), &models.CreateEntryRequest{
		Food:     models.FoodItem{Name: "Bruschetta"},
		IsManual: true,
		Extra:    extra,
	})
	require.NoError(t, err)
	assert.Equal(t, extra, got.Extra)
	entries.AssertExpectations(t)
}
