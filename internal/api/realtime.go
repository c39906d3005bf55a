package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pageza/fittrack/backend/internal/service"
)

const pingInterval = 25 * time.Second

// RealtimeHandler upgrades authenticated requests to entry-event sockets.
type RealtimeHandler struct {
	hub      *service.RealtimeHub
	upgrader websocket.Upgrader
}

// NewRealtimeHandler creates a handler accepting the given origins. An empty list or "*" accepts any origin.
func NewRealtimeHandler(hub *service.RealtimeHub, allowedOrigins []string) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

func (h *RealtimeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws", h.Connect)
}

func (h *RealtimeHandler) Connect(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Realtime] upgrade failed for %s: %v", userID, err)
		return
	}
	client := service.NewWSClient(userID, conn)
	h.hub.Register(client)
	go client.WritePump(pingInterval)

	// the read loop ends when the client goes away or the writer closes the connection
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.Unregister(client)
			return
		}
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return len(set) == 0 || origin == "" || set[origin]
	}
}
