package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/pageza/nutriscan/backend/internal/models"
)

// FileStore keeps all entries in a single JSON array document.
// Appends are serialised and the document is replaced atomically. Records
// already in the document are written back exactly as they were read.
type FileStore struct {
	path   string
	mu     sync.Mutex
	stamps *Stamper
}

// NewFileStore opens the document at path, creating it as an empty list if absent
func NewFileStore(path string, stamps *Stamper) (*FileStore, error) {
	if stamps == nil {
		stamps = NewStamper()
	}
	s := &FileStore{path: path, stamps: stamps}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create diary directory: %w", err)
			}
		}
		if err := s.write([]json.RawMessage{}); err != nil {
			return nil, err
		}
		log.Printf("[FileStore] Initialized empty diary at %s", path)
	} else if err != nil {
		return nil, fmt.Errorf("stat diary file: %w", err)
	}

	records, err := s.read()
	if err != nil {
		return nil, err
	}
	entries, err := s.decode(records)
	if err != nil {
		return nil, err
	}
	stamps.Seed(maxID(entries))

	return s, nil
}

// Path returns the location of the backing document
func (s *FileStore) Path() string {
	return s.path
}

// Append stamps the entry, adds it to the end of the document and rewrites it
func (s *FileStore) Append(ctx context.Context, entry models.DiaryEntry) (models.DiaryEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.DiaryEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return models.DiaryEntry{}, err
	}

	s.stamps.Stamp(&entry)
	record, err := json.Marshal(entry)
	if err != nil {
		return models.DiaryEntry{}, fmt.Errorf("marshal diary entry: %w", err)
	}

	if err := s.write(append(records, record)); err != nil {
		return models.DiaryEntry{}, err
	}
	return entry, nil
}

// List reads and decodes the whole document
func (s *FileStore) List(ctx context.Context) ([]models.DiaryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return nil, err
	}
	return s.decode(records)
}

func (s *FileStore) read() ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read diary file: %w", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.path, err)
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

func (s *FileStore) decode(records []json.RawMessage) ([]models.DiaryEntry, error) {
	entries := make([]models.DiaryEntry, 0, len(records))
	for i, raw := range records {
		var entry models.DiaryEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("%w: %s: record %d: %v", ErrCorruptStore, s.path, i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// write replaces the document through a temp file and rename
func (s *FileStore) write(records []json.RawMessage) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal diary entries: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp diary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp diary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp diary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp diary file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod temp diary file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace diary file: %w", err)
	}
	return nil
}
