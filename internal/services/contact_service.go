package services

import (
	"database/sql"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/koloni/koloni-be/internal/apperr"
	"github.com/koloni/koloni-be/internal/models"
	"github.com/rs/zerolog/log"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactServiceProvider defines the interface for contact form handling.
type ContactServiceProvider interface {
	SubmitMessage(name, email, message string) (models.ContactMessage, error)
}

// ContactService stores contact form submissions. Forwarding them by email
// is left to an external collaborator.
type ContactService struct {
	db *sql.DB
}

// NewContactService creates a new ContactService.
func NewContactService(db *sql.DB) *ContactService {
	return &ContactService{db: db}
}

// SubmitMessage validates and stores a contact form submission.
func (s *ContactService) SubmitMessage(name, email, message string) (models.ContactMessage, error) {
	if name == "" || email == "" || message == "" {
		return models.ContactMessage{}, apperr.New(apperr.MissingParameter, "Missing required fields")
	}
	if !emailPattern.MatchString(email) {
		return models.ContactMessage{}, apperr.New(apperr.MissingParameter, "Invalid email address")
	}

	msg := models.ContactMessage{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		"INSERT INTO contact_messages (id, name, email, message, created_at) VALUES (?, ?, ?, ?, ?)",
		msg.ID, msg.Name, msg.Email, msg.Message, msg.CreatedAt)
	if err != nil {
		return models.ContactMessage{}, err
	}

	log.Info().Str("email", email).Str("name", name).Msg("Contact form submission received")
	return msg, nil
}
