package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/koloni/koloni-be/internal/models"
	"github.com/koloni/koloni-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(eventType, level, message string, userID *string)
	GetRecentEvents(limit int) ([]models.Event, error)
}

// EventService records system and ledger events and pushes them to connected
// dashboard clients.
type EventService struct {
	db  *sql.DB
	hub *websocket.Hub
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB, hub *websocket.Hub) *EventService {
	return &EventService{db: db, hub: hub}
}

// CreateEvent logs a new event to the database and broadcasts it over the
// websocket hub. Recording is best-effort: a failed insert is logged, never
// surfaced to the request that triggered it.
func (s *EventService) CreateEvent(eventType, level, message string, userID *string) {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		"INSERT INTO events (id, type, level, message, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.UserID, event.CreatedAt)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}

	if s.hub != nil {
		if userID != nil {
			s.hub.BroadcastToUser(*userID, websocket.NewEventMessage(event))
		} else {
			s.hub.BroadcastAll(websocket.NewEventMessage(event))
		}
	}
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query(
		"SELECT id, type, level, message, user_id, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
