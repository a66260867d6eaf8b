package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pageza/nutriscan/backend/internal/service"
)

const pingInterval = 25 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RealtimeHandler serves the live entry feed
type RealtimeHandler struct {
	hub *service.RealtimeHub
}

func NewRealtimeHandler(hub *service.RealtimeHub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

func (h *RealtimeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/diary/ws", h.EntriesWS)
}

// EntriesWS upgrades the connection and keeps it registered until the peer goes away
func (h *RealtimeHandler) EntriesWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[RealtimeHandler] Upgrade failed: %v", err)
		return
	}
	client := service.NewWSClient(conn)
	h.hub.Register(client)

	done := make(chan struct{})
	defer close(done)

	// Ping to keep connections alive through proxies
	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := client.Write(websocket.PingMessage, nil); err != nil {
					h.hub.Unregister(client)
					return
				}
			}
		}
	}()

	// Read loop ends on client close or error
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.Unregister(client)
			return
		}
	}
}
