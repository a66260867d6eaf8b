package service

import (
	"context"

	"github.com/pageza/nutriscan/backend/internal/models"
)

// Recognizer proposes ranked catalog dishes for a captured image
type Recognizer interface {
	Recognize(ctx context.Context, image string) ([]models.Candidate, error)
}

// ImageUploader moves an inline data URI image to object storage and returns its URL
type ImageUploader interface {
	UploadDataURI(ctx context.Context, dataURI string) (string, error)
}

// Broadcaster pushes events to connected live clients
type Broadcaster interface {
	Broadcast(payload any)
}
