package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pageza/nutriscan/backend/internal/models"
)

// ErrUnknownFood is returned when a key is not in the reference catalog
var ErrUnknownFood = errors.New("unknown food")

// DefaultRecognitionDelay is how long the simulated recognizer takes
const DefaultRecognitionDelay = 2 * time.Second

// LookupFood returns the catalog dish for key
func LookupFood(key string) (models.FoodItem, error) {
	food, ok := models.LookupFood(key)
	if !ok {
		return models.FoodItem{}, fmt.Errorf("%w: %q", ErrUnknownFood, key)
	}
	return food, nil
}

// NewCandidate builds a candidate for a catalog key
func NewCandidate(key string, confidence float64) (models.Candidate, error) {
	food, err := LookupFood(key)
	if err != nil {
		return models.Candidate{}, err
	}
	return models.Candidate{Key: key, Confidence: confidence, Food: food}, nil
}

// MockRecognizer ignores the image and answers with a fixed pair of dishes
// after Delay.
type MockRecognizer struct {
	Delay time.Duration
}

// NewMockRecognizer creates a MockRecognizer; a non-positive delay answers immediately
func NewMockRecognizer(delay time.Duration) *MockRecognizer {
	return &MockRecognizer{Delay: delay}
}

// Recognize waits for Delay and returns carbonara then pasta al pomodoro
func (r *MockRecognizer) Recognize(ctx context.Context, image string) ([]models.Candidate, error) {
	if r.Delay > 0 {
		timer := time.NewTimer(r.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	carbonara, err := NewCandidate("carbonara", 0.85)
	if err != nil {
		return nil, err
	}
	pasta, err := NewCandidate("pasta_pomodoro", 0.65)
	if err != nil {
		return nil, err
	}

	log.Printf("[MockRecognizer] Returning %d simulated candidates", 2)
	return []models.Candidate{carbonara, pasta}, nil
}
