package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutriscan/backend/internal/models"
	"github.com/pageza/nutriscan/backend/internal/service"
)

func TestEntriesWSReceivesAppends(t *testing.T) {
	hub := service.NewRealtimeHub()
	router, _ := setupTestRouter(t, hub)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/diary/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	w := PerformRequest(t, router, http.MethodPost, "/api/diary", `{"food":{"name":"Insalata mista","carbs":4.2}}`)
	require.Equal(t, 200, w.Code)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event service.EntryEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, service.EventEntryCreated, event.Type)
	assert.Equal(t, "Insalata mista", event.Entry.Food.Name)

	var created models.CreateEntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, created.ID, event.Entry.ID)
}
