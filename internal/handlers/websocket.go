package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"relief-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // access is gated by the admin token
	},
}

// WebSocketHandler serves the live SOS feed to admins
type WebSocketHandler struct {
	hub  *services.WSHub
	auth *services.AuthService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, auth *services.AuthService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:  hub,
		auth: auth,
	}
}

// HandleWebSocket handles GET /sos/ws?token=. Only admins may subscribe.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.AuthenticateAdmin(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		respondServiceError(w, err, "websocket auth")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	// the server read timeout would otherwise close idle feeds
	_ = conn.SetReadDeadline(time.Time{})

	h.hub.Register(user.ID, conn)
	defer h.hub.Unregister(user.ID, conn)

	if err := h.hub.SendToUser(user.ID, services.WSMessage{
		Type:      services.WSTypeConnected,
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to send connected message")
		return
	}

	log.Info().Int64("user_id", user.ID).Msg("WebSocket connection established")

	// Admins only listen; the read loop handles pings and detects disconnects.
	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Int64("user_id", user.ID).Msg("WebSocket error")
			}
			return
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to parse WebSocket message")
			continue
		}

		switch msg.Type {
		case "ping":
			if err := h.hub.SendToUser(user.ID, services.WSMessage{
				Type:      services.WSTypePong,
				Timestamp: time.Now().UnixMilli(),
			}); err != nil {
				return
			}
		default:
			h.hub.SendToUser(user.ID, services.WSMessage{Type: "error", Message: "Unknown message type"})
		}
	}
}
