package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/koloni/koloni-be/internal/apperr"
	"github.com/koloni/koloni-be/internal/history"
	"github.com/koloni/koloni-be/internal/models"
	"github.com/koloni/koloni-be/internal/services"
	"github.com/rs/zerolog/log"
)

// GenerationHandler handles AI content generation requests.
type GenerationHandler struct {
	service    services.GenerationServiceProvider
	ledger     services.LedgerServiceProvider
	historyLog *history.Log
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(service services.GenerationServiceProvider, ledger services.LedgerServiceProvider, historyLog *history.Log) *GenerationHandler {
	return &GenerationHandler{service: service, ledger: ledger, historyLog: historyLog}
}

// GeneratePayload is the request body for generation calls.
type GeneratePayload struct {
	Prompt   string `json:"prompt"`
	Tone     string `json:"tone"`
	Style    string `json:"style"`
	Length   string `json:"length"`
	Duration string `json:"duration"`
	UserID   string `json:"userId"`
}

// Generate handles POST /generate/{format}.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	var payload GeneratePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperr.New(apperr.MissingParameter, "Invalid request body"))
		return
	}
	if payload.Prompt == "" || payload.UserID == "" {
		writeError(w, apperr.New(apperr.MissingParameter, "Missing required parameters: prompt, userId"))
		return
	}

	result, err := h.service.Generate(r.Context(), models.GenerationRequest{
		Format:   format,
		Prompt:   payload.Prompt,
		Tone:     payload.Tone,
		Style:    payload.Style,
		Length:   payload.Length,
		Duration: payload.Duration,
		UserID:   payload.UserID,
	})
	if err != nil {
		switch apperr.CodeOf(err) {
		case apperr.InsufficientBalance:
			check, chkErr := h.ledger.Check(payload.UserID, 0)
			if chkErr != nil {
				writeError(w, chkErr)
				return
			}
			writeJSON(w, http.StatusPaymentRequired, map[string]interface{}{
				"error":   "Insufficient tokens",
				"balance": check.Balance,
			})
		case apperr.GenerationBackendError:
			log.Error().Err(err).Str("format", format).Str("user_id", payload.UserID).Msg("Generation backend call failed")
			writeError(w, err)
		default:
			writeError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"content":  result.Content,
		"metadata": result.Metadata,
	})
}

// History handles GET /generations/{userId}: the user's recent generations,
// newest first, capped at 20.
func (h *GenerationHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		writeError(w, apperr.New(apperr.MissingParameter, "Missing required parameter: userId"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"history": h.historyLog.Get(userID),
	})
}
