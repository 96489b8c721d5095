package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	ws "github.com/koloni/koloni-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades HTTP connections to the live event feed.
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// Serve handles the WebSocket connection request. Clients pass ?userId= to
// also receive that user's ledger events; without it they only get
// system-wide broadcasts.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, r.URL.Query().Get("userId"))
	h.hub.Register <- client

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		client.WritePump()
	}()
	go func() {
		defer wg.Done()
		client.ReadPump(h.handleIncomingWSMessage)
	}()

	// Cleanup on disconnect.
	go func() {
		wg.Wait()
		h.hub.Unregister <- client
	}()
}

// handleIncomingWSMessage processes messages received from a websocket
// client. The feed is mostly one-way; only a ping action is supported.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Error().Err(err).Bytes("message", message).Msg("Error decoding websocket message")
		return
	}

	switch msg.Action {
	case "ping":
		client.Send <- ws.NewEventMessage(map[string]string{"pong": "ok"})
	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		client.Send <- ws.NewErrorMessage("Unknown action: " + msg.Action)
	}
}
