package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/koloni/koloni-be/internal/apperr"
	"github.com/koloni/koloni-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ContactHandler handles public contact form submissions.
type ContactHandler struct {
	service services.ContactServiceProvider
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service services.ContactServiceProvider) *ContactHandler {
	return &ContactHandler{service: service}
}

// ContactPayload is the contact form request body.
type ContactPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Submit handles POST /contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload ContactPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperr.New(apperr.MissingParameter, "Invalid request body"))
		return
	}

	if _, err := h.service.SubmitMessage(payload.Name, payload.Email, payload.Message); err != nil {
		if apperr.CodeOf(err) == apperr.InternalError {
			log.Error().Err(err).Msg("Failed to store contact message")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Thank you for your message. We will get back to you soon!",
	})
}
