package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/koloni/koloni-be/internal/history"
	"github.com/koloni/koloni-be/internal/ledger"
	"github.com/koloni/koloni-be/internal/llm"
	"github.com/koloni/koloni-be/internal/services"
)

// staticBackend returns canned content for every generation call.
type staticBackend struct {
	content string
}

func (b staticBackend) Generate(ctx context.Context, req llm.Request) (string, error) {
	return b.content, nil
}

func newGenerationTestHandler(backend llm.Client) (*GenerationHandler, services.LedgerServiceProvider) {
	ledgerSvc := services.NewLedgerService(ledger.NewMemoryStore(ledger.DefaultBalance), nullEventService{})
	historyLog := history.NewLog()
	genSvc := services.NewGenerationService(backend, ledgerSvc, nullEventService{}, historyLog, time.Minute)
	return NewGenerationHandler(genSvc, ledgerSvc, historyLog), ledgerSvc
}

func postGenerate(t *testing.T, h *GenerationHandler, format, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate/"+format, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("format", format)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h.Generate(rec, req)
	return rec
}

func TestGenerateMissingParameters(t *testing.T) {
	h, _ := newGenerationTestHandler(staticBackend{content: "x"})

	tests := []struct {
		name string
		body string
	}{
		{"no prompt", `{"userId":"user-1"}`},
		{"no userId", `{"prompt":"hello"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postGenerate(t, h, "emu", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			body := decodeBody(t, rec)
			if body["error"] != "Missing required parameters: prompt, userId" {
				t.Errorf("unexpected error message %q", body["error"])
			}
		})
	}
}

func TestGenerateUnknownFormatRejected(t *testing.T) {
	h, ledgerSvc := newGenerationTestHandler(staticBackend{content: "x"})

	rec := postGenerate(t, h, "podcast", `{"prompt":"hello","userId":"user-1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Unknown format: podcast" {
		t.Errorf("unexpected error message %q", body["error"])
	}

	report, _ := ledgerSvc.Report("user-1")
	if report.Balance != 100 {
		t.Errorf("unknown format changed balance to %d", report.Balance)
	}
}

func TestGenerateSuccessEnvelope(t *testing.T) {
	h, ledgerSvc := newGenerationTestHandler(staticBackend{content: "fresh content"})

	rec := postGenerate(t, h, "emu", `{"prompt":"write about birds","userId":"user-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["content"] != "fresh content" {
		t.Errorf("unexpected envelope %v", body)
	}
	meta, _ := body["metadata"].(map[string]interface{})
	if meta["format"] != "emu" || meta["tone"] != "engaging" {
		t.Errorf("unexpected metadata %v", meta)
	}

	report, _ := ledgerSvc.Report("user-1")
	if report.Balance != 85 {
		t.Errorf("expected balance 85 after generation, got %d", report.Balance)
	}
}

func TestGenerateInsufficientBalanceEnvelope(t *testing.T) {
	h, ledgerSvc := newGenerationTestHandler(staticBackend{content: "x"})

	if _, err := ledgerSvc.Deduct("user-1", 95); err != nil {
		t.Fatalf("setup deduct returned error: %v", err)
	}

	rec := postGenerate(t, h, "emu", `{"prompt":"hello","userId":"user-1"}`)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Insufficient tokens" || body["balance"] != float64(5) {
		t.Errorf("unexpected insufficiency envelope %v", body)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	h, _ := newGenerationTestHandler(staticBackend{content: "entry content"})

	postGenerate(t, h, "emu", `{"prompt":"first","userId":"user-1"}`)
	postGenerate(t, h, "longcat", `{"prompt":"second","userId":"user-1"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/generations/user-1", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("userId", "user-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h.History(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	entries, ok := body["history"].([]interface{})
	if !ok || len(entries) != 2 {
		t.Fatalf("expected 2 history entries, got %v", body["history"])
	}
	newest := entries[0].(map[string]interface{})
	if newest["format"] != "longcat" || newest["prompt"] != "second" {
		t.Errorf("expected newest entry first, got %v", newest)
	}
}
