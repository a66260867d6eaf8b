package testhelpers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/nutriscan/backend/internal/models"
)

// MockEntryStore is a mock implementation of the store.EntryStore interface
type MockEntryStore struct {
	mock.Mock
}

func (m *MockEntryStore) Append(ctx context.Context, entry models.DiaryEntry) (models.DiaryEntry, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(models.DiaryEntry), args.Error(1)
}

func (m *MockEntryStore) List(ctx context.Context) ([]models.DiaryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DiaryEntry), args.Error(1)
}

// MockRecognizer is a mock implementation of the service.Recognizer interface
type MockRecognizer struct {
	mock.Mock
}

func (m *MockRecognizer) Recognize(ctx context.Context, image string) ([]models.Candidate, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Candidate), args.Error(1)
}

// MockImageUploader is a mock implementation of the service.ImageUploader interface
type MockImageUploader struct {
	mock.Mock
}

func (m *MockImageUploader) UploadDataURI(ctx context.Context, dataURI string) (string, error) {
	args := m.Called(ctx, dataURI)
	return args.String(0), args.Error(1)
}
