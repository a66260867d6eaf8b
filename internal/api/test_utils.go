package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutriscan/backend/internal/service"
	"github.com/pageza/nutriscan/backend/internal/store"
)

// PerformRequest sends a request with an optional JSON body through the router
func PerformRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// setupTestRouter builds the full API over a file store in a temp dir
func setupTestRouter(t *testing.T, hub *service.RealtimeHub) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "foodDiary.json")
	entries, err := store.NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("failed to open file store: %v", err)
	}

	var broadcaster service.Broadcaster
	if hub != nil {
		broadcaster = hub
	}

	router := gin.New()
	RegisterRoutes(router, Deps{
		Diary:      service.NewDiaryService(entries, nil, broadcaster),
		Recognizer: service.NewMockRecognizer(0),
		Hub:        hub,
	})
	return router, path
}
