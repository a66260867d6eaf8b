package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pageza/nutriscan/backend/internal/models"
	"github.com/pageza/nutriscan/backend/internal/stats"
)

// APIError is a non-2xx answer from the diary server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// APIClient talks to the diary HTTP API
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a client for the server at baseURL
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Append stores an entry on the server
func (a *APIClient) Append(ctx context.Context, req *models.CreateEntryRequest) (models.CreateEntryResponse, error) {
	var resp models.CreateEntryResponse
	err := a.do(ctx, http.MethodPost, "/api/diary", req, &resp)
	return resp, err
}

// List returns every stored entry
func (a *APIClient) List(ctx context.Context) ([]models.DiaryEntry, error) {
	var entries []models.DiaryEntry
	if err := a.do(ctx, http.MethodGet, "/api/diary", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Stats returns the server's summary for today
func (a *APIClient) Stats(ctx context.Context) (stats.Summary, error) {
	var summary stats.Summary
	err := a.do(ctx, http.MethodGet, "/api/diary/stats", nil, &summary)
	return summary, err
}

// Foods returns the reference catalog
func (a *APIClient) Foods(ctx context.Context) ([]models.CatalogEntry, error) {
	var foods []models.CatalogEntry
	if err := a.do(ctx, http.MethodGet, "/api/foods", nil, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

// Recognize asks the server's recognizer for candidates
func (a *APIClient) Recognize(ctx context.Context, image string) ([]models.Candidate, error) {
	var resp models.RecognizeResponse
	if err := a.do(ctx, http.MethodPost, "/api/recognize", &models.RecognizeRequest{Image: image}, &resp); err != nil {
		return nil, err
	}
	return resp.Candidates, nil
}

func (a *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
