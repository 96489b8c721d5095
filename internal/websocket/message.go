package websocket

import (
	"encoding/json"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// encode marshals a Message, falling back to an empty object on failure.
func encode(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		return []byte("{}")
	}
	return data
}

// NewEventMessage wraps a system event for transport to dashboard clients.
func NewEventMessage(event interface{}) []byte {
	return encode(Message{Action: "event", Payload: event})
}

// NewStatsMessage wraps a system stats snapshot.
func NewStatsMessage(stats interface{}) []byte {
	return encode(Message{Action: "system_stats", Payload: stats})
}

// NewErrorMessage wraps an error string for a single client.
func NewErrorMessage(message string) []byte {
	return encode(Message{Action: "error", Payload: message})
}
