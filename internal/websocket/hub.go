package websocket

import "github.com/rs/zerolog/log"

// targetedMessage is a message addressed to one user's subscribers.
type targetedMessage struct {
	userID  string
	payload []byte
}

// Hub maintains the set of active dashboard clients and fans events out to
// them. All state is owned by the Run loop; senders talk to it through
// channels.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Messages destined for every connected client.
	broadcast chan []byte

	// Messages destined for one user's subscribers.
	targeted chan targetedMessage

	// A map of user IDs to the set of clients watching that user's ledger.
	subscriptions map[string]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		broadcast:     make(chan []byte, 64),
		targeted:      make(chan targetedMessage, 64),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
			// If the client connected for a specific user, subscribe them.
			if client.UserID != "" {
				h.addSubscription(client, client.UserID)
			}
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.removeSubscription(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				h.deliver(client, message)
			}
		case msg := <-h.targeted:
			for client := range h.subscriptions[msg.userID] {
				h.deliver(client, msg.payload)
			}
		}
	}
}

// deliver pushes a message to one client, dropping the client if its send
// buffer is full.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		close(client.Send)
		delete(h.clients, client)
		h.removeSubscription(client)
	}
}

// BroadcastAll sends a message to every connected client.
func (h *Hub) BroadcastAll(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		log.Warn().Msg("Dropping broadcast, hub channel full")
	}
}

// BroadcastToUser sends a message to all clients subscribed to a user ID.
func (h *Hub) BroadcastToUser(userID string, message []byte) {
	select {
	case h.targeted <- targetedMessage{userID: userID, payload: message}:
	default:
		log.Warn().Str("user_id", userID).Msg("Dropping message, hub channel full")
	}
}

func (h *Hub) addSubscription(client *Client, userID string) {
	if h.subscriptions[userID] == nil {
		h.subscriptions[userID] = make(map[*Client]bool)
	}
	h.subscriptions[userID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for userID, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, userID)
			}
		}
	}
}
