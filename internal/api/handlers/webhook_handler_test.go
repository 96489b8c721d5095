package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/koloni/koloni-be/internal/ledger"
	"github.com/koloni/koloni-be/internal/services"
	"github.com/stripe/stripe-go/v76"
)

const testSigningSecret = "whsec_test_secret"

// signPayload builds a Stripe-Signature header the way Stripe signs webhook
// deliveries: v1 is an HMAC-SHA256 of "<timestamp>.<payload>".
func signPayload(payload string, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

// eventPayload renders a webhook event body carrying the API version the
// stripe-go verifier expects.
func eventPayload(eventType, object string) string {
	return fmt.Sprintf(`{"id":"evt_1","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, object)
}

func newWebhookTestHandler() (*WebhookHandler, services.LedgerServiceProvider) {
	ledgerSvc := services.NewLedgerService(ledger.NewMemoryStore(ledger.DefaultBalance), nullEventService{})
	return NewWebhookHandler(ledgerSvc, nullEventService{}, testSigningSecret), ledgerSvc
}

func postWebhook(t *testing.T, h *WebhookHandler, payload, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	h.HandleStripe(rec, req)
	return rec
}

func TestHandleStripeRejectsBadSignature(t *testing.T) {
	h, ledgerSvc := newWebhookTestHandler()

	payload := eventPayload("checkout.session.completed", `{}`)

	tests := []struct {
		name      string
		signature string
	}{
		{"missing header", ""},
		{"garbage header", "t=123,v1=deadbeef"},
		{"wrong secret", signPayload(payload, "whsec_other", time.Now())},
		{"stale timestamp", signPayload(payload, testSigningSecret, time.Now().Add(-time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postWebhook(t, h, payload, tt.signature)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}

	report, _ := ledgerSvc.Report("user-1")
	if report.Balance != 100 {
		t.Errorf("rejected webhook changed balance to %d", report.Balance)
	}
}

func TestHandleStripeCreditsCompletedCheckout(t *testing.T) {
	h, ledgerSvc := newWebhookTestHandler()

	payload := eventPayload("checkout.session.completed", `{"id":"cs_1","metadata":{"userId":"user-1","tokenAmount":"250"}}`)
	rec := postWebhook(t, h, payload, signPayload(payload, testSigningSecret, time.Now()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["received"] != true {
		t.Errorf("expected received true, got %v", body)
	}

	report, err := ledgerSvc.Report("user-1")
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	if report.Balance != 350 {
		t.Errorf("expected balance 350 after purchase, got %d", report.Balance)
	}
	if len(report.Transactions) != 1 || report.Transactions[0].Amount != 250 {
		t.Errorf("expected one add of 250, got %+v", report.Transactions)
	}
}

func TestHandleStripeMissingMetadata(t *testing.T) {
	h, _ := newWebhookTestHandler()

	payload := eventPayload("checkout.session.completed", `{"id":"cs_1","metadata":{}}`)
	rec := postWebhook(t, h, payload, signPayload(payload, testSigningSecret, time.Now()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Missing metadata" {
		t.Errorf("unexpected error message %q", body["error"])
	}
}

func TestHandleStripeIgnoresUnhandledEventTypes(t *testing.T) {
	h, ledgerSvc := newWebhookTestHandler()

	payload := eventPayload("customer.created", `{}`)
	rec := postWebhook(t, h, payload, signPayload(payload, testSigningSecret, time.Now()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 acknowledgement, got %d", rec.Code)
	}

	report, _ := ledgerSvc.Report("user-1")
	if len(report.Transactions) != 0 {
		t.Error("unhandled event type touched the ledger")
	}
}
