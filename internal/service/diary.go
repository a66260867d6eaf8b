package service

import (
	"context"
	"log"
	"time"

	"github.com/pageza/nutriscan/backend/internal/models"
	"github.com/pageza/nutriscan/backend/internal/stats"
	"github.com/pageza/nutriscan/backend/internal/store"
)

// EventEntryCreated is the live feed event type for a new entry
const EventEntryCreated = "entry_created"

// EntryEvent is pushed to live clients after each append
type EntryEvent struct {
	Type  string            `json:"type"`
	Entry models.DiaryEntry `json:"entry"`
}

// DiaryService handles diary operations
type DiaryService struct {
	store  store.EntryStore
	images ImageUploader
	hub    Broadcaster
	now    func() time.Time
}

// NewDiaryService creates a new DiaryService instance. images and hub may be nil.
func NewDiaryService(entries store.EntryStore, images ImageUploader, hub Broadcaster) *DiaryService {
	return &DiaryService{
		store:  entries,
		images: images,
		hub:    hub,
		now:    time.Now,
	}
}

// CreateEntry persists a new entry from the request and announces it
func (s *DiaryService) CreateEntry(ctx context.Context, req *models.CreateEntryRequest) (models.DiaryEntry, error) {
	entry := models.DiaryEntry{
		Food:     req.Food,
		Image:    req.Image,
		IsManual: req.IsManual,
		Extra:    req.Extra,
	}

	if s.images != nil && IsDataURI(entry.Image) {
		url, err := s.images.UploadDataURI(ctx, entry.Image)
		if err != nil {
			// Keep the inline image rather than losing the entry
			log.Printf("[DiaryService] Image offload failed, storing inline: %v", err)
		} else {
			entry.Image = url
		}
	}

	stored, err := s.store.Append(ctx, entry)
	if err != nil {
		log.Printf("[DiaryService] Failed to append entry %q: %v", entry.Food.Name, err)
		return models.DiaryEntry{}, err
	}
	log.Printf("[DiaryService] Stored entry %d (%s, manual=%t)", stored.ID, stored.Food.Name, stored.IsManual)

	if s.hub != nil {
		s.hub.Broadcast(EntryEvent{Type: EventEntryCreated, Entry: stored})
	}
	return stored, nil
}

// ListEntries returns every stored entry
func (s *DiaryService) ListEntries(ctx context.Context) ([]models.DiaryEntry, error) {
	return s.store.List(ctx)
}

// TodaySummary aggregates today's entries against the daily targets
func (s *DiaryService) TodaySummary(ctx context.Context) (stats.Summary, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(entries, s.now()), nil
}
