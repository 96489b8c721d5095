package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/koloni/koloni-be/internal/apperr"
	"github.com/koloni/koloni-be/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// maxWebhookBody caps the webhook payload size.
const maxWebhookBody = 64 * 1024

// WebhookHandler processes Stripe payment webhooks that credit token
// purchases to the ledger.
type WebhookHandler struct {
	ledger        services.LedgerServiceProvider
	eventService  services.EventServiceProvider
	signingSecret string
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(ledger services.LedgerServiceProvider, eventService services.EventServiceProvider, signingSecret string) *WebhookHandler {
	return &WebhookHandler{
		ledger:        ledger,
		eventService:  eventService,
		signingSecret: signingSecret,
	}
}

// HandleStripe verifies and processes one Stripe event. Event types we don't
// act on are acknowledged with 200 so Stripe stops retrying them.
func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, apperr.New(apperr.MissingParameter, "Failed to read request body"))
		return
	}

	event, err := webhook.ConstructEvent(body, r.Header.Get("Stripe-Signature"), h.signingSecret)
	if err != nil {
		log.Warn().Err(err).Msg("Webhook signature verification failed")
		writeError(w, apperr.Wrap(apperr.SignatureVerificationFailed, err, "Webhook signature verification failed"))
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		if err := h.creditPurchase(event); err != nil {
			writeError(w, err)
			return
		}

	case "payment_intent.succeeded":
		log.Info().Str("event_id", event.ID).Msg("PaymentIntent succeeded")

	case "payment_intent.payment_failed":
		log.Error().Str("event_id", event.ID).Msg("Payment failed")

	default:
		log.Info().Str("event_type", string(event.Type)).Msg("Unhandled Stripe event type")
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// creditPurchase extracts the purchase metadata from a completed checkout
// session and adds the tokens to the buyer's account.
func (h *WebhookHandler) creditPurchase(event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return apperr.Wrap(apperr.InternalError, err, "Failed to parse checkout session")
	}

	userID := session.Metadata["userId"]
	tokenAmount, _ := strconv.Atoi(session.Metadata["tokenAmount"])
	if userID == "" || tokenAmount <= 0 {
		log.Error().Str("event_id", event.ID).Msg("Missing userId or tokenAmount in session metadata")
		return apperr.New(apperr.MissingParameter, "Missing metadata")
	}

	balance, err := h.ledger.Add(userID, tokenAmount)
	if err != nil {
		return err
	}

	log.Info().Str("user_id", userID).Int("tokens", tokenAmount).Int("balance", balance).
		Msg("Credited token purchase")
	h.eventService.CreateEvent("payment.received", "info",
		"Token purchase credited via Stripe checkout.", &userID)
	return nil
}
