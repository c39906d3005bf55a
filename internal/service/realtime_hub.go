package service

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// EntryEvent is pushed to a user's sockets when one of their entries is written.
type EntryEvent struct {
	Kind  string      `json:"kind"`
	Type  string      `json:"type"`
	Entry interface{} `json:"entry"`
}

const (
	EventEntryCreated = "entry.created"
	EntryTypeDiet     = "diet"
	EntryTypeWorkout  = "workout"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

// WSClient is one connected socket. WritePump is its only writer; everyone else queues messages
// through Enqueue.
type WSClient struct {
	UserID uuid.UUID
	Conn   *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewWSClient(userID uuid.UUID, conn *websocket.Conn) *WSClient {
	return &WSClient{
		UserID: userID,
		Conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Enqueue queues msg without blocking. It returns false if the client is closed or its buffer is full.
func (c *WSClient) Enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// WritePump writes queued messages and periodic pings until the client is closed.
func (c *WSClient) WritePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				log.Printf("[RealtimeHub] write to %s failed: %v", c.UserID, err)
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

func (c *WSClient) write(messageType int, data []byte) error {
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(messageType, data)
}

// Close stops the writer and closes the connection, which also ends the read loop. Safe to call
// more than once.
func (c *WSClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.Conn.Close()
	})
}

// RealtimeHub tracks sockets per user and fans events out to them.
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*WSClient]struct{}
}

// Ensure RealtimeHub implements EntryNotifier
var _ EntryNotifier = (*RealtimeHub)(nil)

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[uuid.UUID]map[*WSClient]struct{})}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	c.Close()
}

// ClientCount returns the number of sockets open for a user.
func (h *RealtimeHub) ClientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish queues event for every socket of userID without waiting on the network. A socket whose
// buffer is full is closed and cleaned up by its read loop.
func (h *RealtimeHub) Publish(userID uuid.UUID, event EntryEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("[RealtimeHub] failed to marshal event: %v", err)
		return
	}

	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.Enqueue(msg) {
			log.Printf("[RealtimeHub] dropping slow socket for %s", userID)
			c.Close()
		}
	}
}
