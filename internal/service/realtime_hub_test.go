package service

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
)

func newHubServer(t *testing.T, hub *RealtimeHub) *httptest.Server {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewWSClient(conn)
		hub.Register(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.Unregister(c)
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRealtimeHubBroadcast(t *testing.T) {
	hub := NewRealtimeHub()
	srv := newHubServer(t, hub)

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	event := EntryEvent{Type: EventEntryCreated, Entry: models.DiaryEntry{ID: 9, Food: models.FoodItem{Name: "Insalata mista"}}}
	hub.Broadcast(event)

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var got EntryEvent
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, EventEntryCreated, got.Type)
		assert.Equal(t, int64(9), got.Entry.ID)
	}
}

func TestRealtimeHubUnregisterOnDisconnect(t *testing.T) {
	hub := NewRealtimeHub()
	srv := newHubServer(t, hub)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestRealtimeHubDropsClientWithFullQueue(t *testing.T) {
	hub := NewRealtimeHub()
	srv := newHubServer(t, hub)

	live := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	// A client whose writer never drains its queue
	stuck := &WSClient{
		Conn: dial(t, srv),
		send: make(chan []byte, 1),
		done: make(chan struct{}),
	}
	hub.mu.Lock()
	hub.clients[stuck] = struct{}{}
	hub.mu.Unlock()

	start := time.Now()
	hub.Broadcast(EntryEvent{Type: EventEntryCreated, Entry: models.DiaryEntry{ID: 1}})
	hub.Broadcast(EntryEvent{Type: EventEntryCreated, Entry: models.DiaryEntry{ID: 2}})
	assert.Less(t, time.Since(start), writeWait)

	hub.mu.RLock()
	_, stillRegistered := hub.clients[stuck]
	hub.mu.RUnlock()
	assert.False(t, stillRegistered)

	for _, want := range []int64{1, 2} {
		_ = live.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := live.ReadMessage()
		require.NoError(t, err)

		var got EntryEvent
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, want, got.Entry.ID)
	}
}
