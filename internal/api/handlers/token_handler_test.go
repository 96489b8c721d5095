package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koloni/koloni-be/internal/ledger"
	"github.com/koloni/koloni-be/internal/models"
	"github.com/koloni/koloni-be/internal/services"
)

type nullEventService struct{}

func (nullEventService) CreateEvent(eventType, level, message string, userID *string) {}
func (nullEventService) GetRecentEvents(limit int) ([]models.Event, error)           { return nil, nil }

func newTokenTestHandler() *TokenHandler {
	svc := services.NewLedgerService(ledger.NewMemoryStore(ledger.DefaultBalance), nullEventService{})
	return NewTokenHandler(svc)
}

func postTokens(t *testing.T, h *TokenHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Manage(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return out
}

func TestManageMissingParameters(t *testing.T) {
	h := newTokenTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"no action", `{"userId":"user-1"}`},
		{"no userId", `{"action":"check"}`},
		{"empty body", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postTokens(t, h, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			body := decodeBody(t, rec)
			if body["error"] != "Missing required parameters: action, userId" {
				t.Errorf("unexpected error message %q", body["error"])
			}
		})
	}
}

func TestManageInvalidAction(t *testing.T) {
	h := newTokenTestHandler()

	rec := postTokens(t, h, `{"action":"transfer","userId":"user-1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Invalid action. Use: check, deduct, add, or balance" {
		t.Errorf("unexpected error message %q", body["error"])
	}
}

func TestManageCheck(t *testing.T) {
	h := newTokenTestHandler()

	rec := postTokens(t, h, `{"action":"check","userId":"user-1","cost":15}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["sufficient"] != true {
		t.Error("expected sufficient true")
	}
	if body["balance"] != float64(100) {
		t.Errorf("expected balance 100, got %v", body["balance"])
	}
	if body["required"] != float64(15) {
		t.Errorf("expected required 15, got %v", body["required"])
	}
}

func TestManageDeduct(t *testing.T) {
	h := newTokenTestHandler()

	rec := postTokens(t, h, `{"action":"deduct","userId":"user-1","cost":15}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["balance"] != float64(85) || body["deducted"] != float64(15) {
		t.Errorf("unexpected deduct response %v", body)
	}
}

func TestManageDeductInsufficient(t *testing.T) {
	h := newTokenTestHandler()

	rec := postTokens(t, h, `{"action":"deduct","userId":"user-1","cost":150}`)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Insufficient tokens" {
		t.Errorf("unexpected error message %q", body["error"])
	}
	if body["balance"] != float64(100) || body["required"] != float64(150) {
		t.Errorf("unexpected insufficiency detail %v", body)
	}
}

func TestManageDeductInvalidCost(t *testing.T) {
	h := newTokenTestHandler()

	rec := postTokens(t, h, `{"action":"deduct","userId":"user-1","cost":-5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Invalid cost amount" {
		t.Errorf("unexpected error message %q", body["error"])
	}
}

func TestManageAdd(t *testing.T) {
	h := newTokenTestHandler()

	rec := postTokens(t, h, `{"action":"add","userId":"user-1","cost":50}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["balance"] != float64(150) || body["added"] != float64(50) {
		t.Errorf("unexpected add response %v", body)
	}
}

func TestManageBalanceReport(t *testing.T) {
	h := newTokenTestHandler()

	postTokens(t, h, `{"action":"deduct","userId":"user-1","cost":15}`)
	postTokens(t, h, `{"action":"add","userId":"user-1","cost":30}`)

	rec := postTokens(t, h, `{"action":"balance","userId":"user-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["balance"] != float64(115) {
		t.Errorf("expected balance 115, got %v", body["balance"])
	}
	txs, ok := body["transactions"].([]interface{})
	if !ok || len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %v", body["transactions"])
	}
	first := txs[0].(map[string]interface{})
	if first["type"] != "deduct" || first["balanceAfter"] != float64(85) {
		t.Errorf("unexpected first transaction %v", first)
	}
}

func TestGrant(t *testing.T) {
	h := newTokenTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/tokens/grant",
		strings.NewReader(`{"userId":"user-1","amount":25,"reason":"refund"}`))
	rec := httptest.NewRecorder()
	h.Grant(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["balance"] != float64(125) || body["added"] != float64(25) {
		t.Errorf("unexpected grant response %v", body)
	}
}
