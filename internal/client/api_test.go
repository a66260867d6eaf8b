package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutriscan/backend/internal/models"
	"github.com/pageza/nutriscan/backend/internal/stats"
)

func newStubServer(t *testing.T, mux *http.ServeMux) *APIClient {
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewAPIClient(srv.URL + "/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAPIClientAppend(t *testing.T) {
	var received models.CreateEntryRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/diary", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		writeJSON(w, http.StatusOK, models.CreateEntryResponse{Success: true, ID: 1760443200000})
	})
	api := newStubServer(t, mux)

	resp, err := api.Append(context.Background(), &models.CreateEntryRequest{
		Food:     models.FoodItem{Name: "Toast", Carbs: 30},
		IsManual: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1760443200000), resp.ID)
	assert.Equal(t, "Toast", received.Food.Name)
	assert.True(t, received.IsManual)
}

func TestAPIClientListStatsFoods(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/diary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.DiaryEntry{{ID: 1, Food: models.FoodItem{Name: "Insalata mista"}}})
	})
	mux.HandleFunc("/api/diary/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, stats.Summary{EntryCount: 3, CarbBand: stats.CarbsWithin})
	})
	mux.HandleFunc("/api/foods", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Catalog())
	})
	api := newStubServer(t, mux)
	ctx := context.Background()

	entries, err := api.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Insalata mista", entries[0].Food.Name)

	summary, err := api.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.EntryCount)
	assert.Equal(t, stats.CarbsWithin, summary.CarbBand)

	foods, err := api.Foods(ctx)
	require.NoError(t, err)
	assert.Len(t, foods, 5)
}

func TestAPIClientRecognize(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/recognize", func(w http.ResponseWriter, r *http.Request) {
		var req models.RecognizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, testImage, req.Image)
		food, _ := models.LookupFood("pizza_margherita")
		writeJSON(w, http.StatusOK, models.RecognizeResponse{Candidates: []models.Candidate{
			{Key: "pizza_margherita", Confidence: 0.9, Food: food},
		}})
	})
	api := newStubServer(t, mux)

	candidates, err := api.Recognize(context.Background(), testImage)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "pizza_margherita", candidates[0].Key)
}

func TestAPIClientErrorResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/diary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "diary store is corrupt"})
	})
	api := newStubServer(t, mux)

	_, err := api.List(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "diary store is corrupt", apiErr.Message)
}

func TestAPIClientAsSyncerAndRecognizer(t *testing.T) {
	var _ Syncer = (*APIClient)(nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/recognize", func(w http.ResponseWriter, r *http.Request) {
		food, _ := models.LookupFood("insalata_mista")
		writeJSON(w, http.StatusOK, models.RecognizeResponse{Candidates: []models.Candidate{
			{Key: "insalata_mista", Confidence: 0.7, Food: food},
		}})
	})
	posted := make(chan models.CreateEntryRequest, 1)
	mux.HandleFunc("/api/diary", func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateEntryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		posted <- req
		writeJSON(w, http.StatusOK, models.CreateEntryResponse{Success: true, ID: 5})
	})
	api := newStubServer(t, mux)

	c := newTestClient(t, Options{Recognizer: api, Syncer: api})
	reviewing(t, c)
	require.NoError(t, c.SelectSuggestion("insalata_mista"))
	_, err := c.Confirm(context.Background())
	require.NoError(t, err)

	req := <-posted
	assert.Equal(t, "Insalata mista", req.Food.Name)
	assert.Equal(t, testImage, req.Image)
}
