package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"relief-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket message types
const (
	WSTypeSOSRaised   = "sos_raised"
	WSTypeSOSResolved = "sos_resolved"
	WSTypeConnected   = "connected"
	WSTypePong        = "pong"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsSendBuffer   = 32
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp,omitempty"`
	Message   string      `json:"message,omitempty"`
	SOS       *models.SOS `json:"sos,omitempty"`
}

// wsClient owns the only writer of its connection. Messages are queued on
// send and written in order by writePump.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue never blocks. A full queue means the admin is not reading.
func (c *wsClient) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// WSHub keeps the live SOS feed connections of admins. One connection is
// kept per admin; a newer one replaces the old.
type WSHub struct {
	mu      sync.RWMutex
	clients map[int64]*wsClient
	now     func() time.Time
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		clients: make(map[int64]*wsClient),
		now:     time.Now,
	}
}

// Register registers a new WebSocket connection for an admin
func (h *WSHub) Register(userID int64, conn *websocket.Conn) {
	client := newWSClient(conn)

	h.mu.Lock()
	if existing, exists := h.clients[userID]; exists {
		if existing.conn == conn {
			h.mu.Unlock()
			return
		}
		existing.close()
	}
	h.clients[userID] = client
	count := len(h.clients)
	h.mu.Unlock()

	go h.writePump(userID, client)

	log.Info().Int64("user_id", userID).Int("connections", count).Msg("WebSocket connection registered")
}

// Unregister removes the connection of an admin if it is still the
// registered one. A stale reader exiting does not drop a newer connection.
func (h *WSHub) Unregister(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, exists := h.clients[userID]; exists && current.conn == conn {
		current.close()
		delete(h.clients, userID)
		log.Info().Int64("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// Count returns the number of connected admins
func (h *WSHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendToUser queues a message for a specific admin
func (h *WSHub) SendToUser(userID int64, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.clients[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %d is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if !client.enqueue(data) {
		h.Unregister(userID, client.conn)
		return fmt.Errorf("failed to send message to user %d", userID)
	}

	return nil
}

// Broadcast queues a message for every connected admin and returns without
// waiting for delivery. Admins whose queue is full are dropped.
func (h *WSHub) Broadcast(message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("type", message.Type).Msg("Failed to marshal broadcast")
		return
	}

	h.mu.RLock()
	targets := make(map[int64]*wsClient, len(h.clients))
	for id, client := range h.clients {
		targets[id] = client
	}
	h.mu.RUnlock()

	for id, client := range targets {
		if !client.enqueue(data) {
			log.Warn().Int64("user_id", id).Str("type", message.Type).Msg("Dropping slow WebSocket connection")
			h.Unregister(id, client.conn)
		}
	}
}

// SOSRaised broadcasts a newly stored alert
func (h *WSHub) SOSRaised(_ context.Context, alert *models.SOS) {
	h.Broadcast(WSMessage{
		Type:      WSTypeSOSRaised,
		Timestamp: h.now().UnixMilli(),
		SOS:       alert,
	})
}

// SOSResolved broadcasts that an alert was resolved
func (h *WSHub) SOSResolved(_ context.Context, alert *models.SOS) {
	h.Broadcast(WSMessage{
		Type:      WSTypeSOSResolved,
		Timestamp: h.now().UnixMilli(),
		SOS:       alert,
	})
}

// writePump is the single writer of a connection
func (h *WSHub) writePump(userID int64, client *wsClient) {
	for {
		select {
		case <-client.done:
			return
		case data := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Int64("user_id", userID).Msg("Failed to write WebSocket message")
				h.Unregister(userID, client.conn)
				return
			}
		}
	}
}
