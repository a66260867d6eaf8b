package models

import (
	"encoding/json"
	"time"
)

// DiaryEntry is one logged meal. Entries are never updated once stored.
type DiaryEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	Food      FoodItem  `gorm:"embedded;embeddedPrefix:food_" json:"food"`
	// Image is a data URI, or an object URL once offloaded
	Image    string `gorm:"type:text" json:"image,omitempty"`
	IsManual bool   `gorm:"not null;default:false" json:"isManual"`
	// Extra holds top-level keys the entry does not model, kept as written
	Extra map[string]json.RawMessage `gorm:"serializer:json;type:text" json:"-"`
}

// TableName returns the table name for the DiaryEntry model
func (DiaryEntry) TableName() string {
	return "diary_entries"
}

// CreateEntryRequest is the body accepted by the append endpoint
type CreateEntryRequest struct {
	Food     FoodItem `json:"food"`
	Image    string   `json:"image"`
	IsManual bool     `json:"isManual"`
	// Extra holds any other keys of the body. id and timestamp are assigned
	// by the store and never taken from the body.
	Extra map[string]json.RawMessage `json:"-"`
}

// CreateEntryResponse is returned after a successful append
type CreateEntryResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

// Candidate is one ranked proposal of the recognizer
type Candidate struct {
	Key        string   `json:"id"`
	Confidence float64  `json:"confidence"`
	Food       FoodItem `json:"food"`
}

// RecognizeRequest is the body accepted by the recognition endpoint
type RecognizeRequest struct {
	Image string `json:"image" binding:"required"`
}

// RecognizeResponse lists the ranked candidates for an image
type RecognizeResponse struct {
	Candidates []Candidate `json:"candidates"`
}
