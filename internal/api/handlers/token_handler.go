package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/koloni/koloni-be/internal/apperr"
	"github.com/koloni/koloni-be/internal/services"
	"github.com/rs/zerolog/log"
)

// TokenHandler exposes the ledger operations over one action-dispatching
// endpoint.
type TokenHandler struct {
	service services.LedgerServiceProvider
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(service services.LedgerServiceProvider) *TokenHandler {
	return &TokenHandler{service: service}
}

// TokenPayload is the request body for ledger actions. Cost doubles as the
// amount for "add" and defaults to 0 when absent.
type TokenPayload struct {
	Action string `json:"action"`
	UserID string `json:"userId"`
	Cost   int    `json:"cost"`
}

// Manage dispatches a ledger action: check, deduct, add or balance.
func (h *TokenHandler) Manage(w http.ResponseWriter, r *http.Request) {
	var payload TokenPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperr.New(apperr.MissingParameter, "Invalid request body"))
		return
	}

	if payload.Action == "" || payload.UserID == "" {
		writeError(w, apperr.New(apperr.MissingParameter, "Missing required parameters: action, userId"))
		return
	}

	switch payload.Action {
	case "check":
		h.check(w, payload)
	case "deduct":
		h.deduct(w, payload)
	case "add":
		h.add(w, payload)
	case "balance":
		h.balance(w, payload)
	default:
		writeError(w, apperr.New(apperr.InvalidAction, "Invalid action. Use: check, deduct, add, or balance"))
	}
}

func (h *TokenHandler) check(w http.ResponseWriter, payload TokenPayload) {
	result, err := h.service.Check(payload.UserID, payload.Cost)
	if err != nil {
		log.Error().Err(err).Str("user_id", payload.UserID).Msg("Failed to check balance")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TokenHandler) deduct(w http.ResponseWriter, payload TokenPayload) {
	balance, err := h.service.Deduct(payload.UserID, payload.Cost)
	if err != nil {
		if apperr.CodeOf(err) == apperr.InsufficientBalance {
			report, repErr := h.service.Report(payload.UserID)
			if repErr != nil {
				writeError(w, repErr)
				return
			}
			writeJSON(w, http.StatusPaymentRequired, map[string]interface{}{
				"error":    "Insufficient tokens",
				"balance":  report.Balance,
				"required": payload.Cost,
			})
			return
		}
		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			log.Error().Err(err).Str("user_id", payload.UserID).Msg("Failed to deduct tokens")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"balance":  balance,
		"deducted": payload.Cost,
	})
}

func (h *TokenHandler) add(w http.ResponseWriter, payload TokenPayload) {
	balance, err := h.service.Add(payload.UserID, payload.Cost)
	if err != nil {
		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			log.Error().Err(err).Str("user_id", payload.UserID).Msg("Failed to add tokens")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"balance": balance,
		"added":   payload.Cost,
	})
}

// GrantPayload is the request body for admin token grants.
type GrantPayload struct {
	UserID string `json:"userId"`
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

// Grant handles POST /admin/tokens/grant: a manual credit issued from the
// dashboard, e.g. a goodwill top-up or a refund.
func (h *TokenHandler) Grant(w http.ResponseWriter, r *http.Request) {
	var payload GrantPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperr.New(apperr.MissingParameter, "Invalid request body"))
		return
	}
	if payload.UserID == "" {
		writeError(w, apperr.New(apperr.MissingParameter, "Missing required parameter: userId"))
		return
	}

	balance, err := h.service.Add(payload.UserID, payload.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Info().Str("user_id", payload.UserID).Int("amount", payload.Amount).
		Str("reason", payload.Reason).Msg("Manual token grant issued")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"balance": balance,
		"added":   payload.Amount,
	})
}

func (h *TokenHandler) balance(w http.ResponseWriter, payload TokenPayload) {
	report, err := h.service.Report(payload.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", payload.UserID).Msg("Failed to report balance")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
