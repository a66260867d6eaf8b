// Package store persists diary entries.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pageza/nutriscan/backend/internal/models"
)

// ErrCorruptStore is returned when persisted entries cannot be decoded
var ErrCorruptStore = errors.New("diary store is corrupt")

// EntryStore is the durable list of diary entries
type EntryStore interface {
	// Append assigns the entry an id and timestamp, persists it and returns the stored copy
	Append(ctx context.Context, entry models.DiaryEntry) (models.DiaryEntry, error)
	// List returns every stored entry in insertion order
	List(ctx context.Context) ([]models.DiaryEntry, error)
}

// Stamper assigns creation ids and timestamps. Ids are the creation instant in
// milliseconds, bumped past the previous id so they stay unique and increasing.
type Stamper struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewStamper creates a Stamper that reads the wall clock
func NewStamper() *Stamper {
	return &Stamper{now: time.Now}
}

// WithClock replaces the clock, for tests
func (s *Stamper) WithClock(now func() time.Time) *Stamper {
	s.now = now
	return s
}

// Seed makes sure later ids are greater than id
func (s *Stamper) Seed(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.last {
		s.last = id
	}
}

// Stamp sets the id and timestamp of entry
func (s *Stamper) Stamp(entry *models.DiaryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := now.UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id

	entry.ID = id
	entry.Timestamp = now.UTC()
}

func maxID(entries []models.DiaryEntry) int64 {
	var id int64
	for _, e := range entries {
		if e.ID > id {
			id = e.ID
		}
	}
	return id
}
