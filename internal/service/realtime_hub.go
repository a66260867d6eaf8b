package service

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// sendBuffer is how many events may queue for a client before it is dropped
	sendBuffer = 16
)

// WSClient is one live feed connection. Events are queued and written by the
// client's own writer goroutine.
type WSClient struct {
	ID   uuid.UUID
	Conn *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	writeMu   sync.Mutex
}

// NewWSClient wraps an upgraded connection
func NewWSClient(conn *websocket.Conn) *WSClient {
	return &WSClient{
		ID:   uuid.New(),
		Conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// Write sends one frame; gorilla connections allow a single concurrent writer
func (c *WSClient) Write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(messageType, data)
}

// enqueue queues msg without blocking and reports whether there was room
func (c *WSClient) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *WSClient) writePump(onError func(*WSClient)) {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.Write(websocket.TextMessage, msg); err != nil {
				onError(c)
				return
			}
		}
	}
}

func (c *WSClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.Conn.Close()
	})
}

// RealtimeHub fans diary events out to every connected client
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

// NewRealtimeHub creates an empty hub
func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[*WSClient]struct{})}
}

// Register adds a client to the hub and starts its writer
func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("[RealtimeHub] Client %s connected (%d live)", c.ID, n)

	go c.writePump(h.Unregister)
}

// Unregister removes a client and closes its connection
func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		log.Printf("[RealtimeHub] Client %s disconnected", c.ID)
	}
	c.close()
}

// Count returns the number of connected clients
func (h *RealtimeHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues payload as JSON for every client. It never waits on a
// peer; clients whose queue is full are dropped.
func (h *RealtimeHub) Broadcast(payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[RealtimeHub] Failed to encode broadcast: %v", err)
		return
	}

	h.mu.RLock()
	clients := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(msg) {
			log.Printf("[RealtimeHub] Client %s is not keeping up, dropping it", c.ID)
			h.Unregister(c)
		}
	}
}

// Close disconnects every client
func (h *RealtimeHub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*WSClient]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.close()
	}
}
