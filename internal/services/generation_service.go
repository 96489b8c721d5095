package services

import (
	"context"
	"fmt"
	"time"

	"github.com/koloni/koloni-be/internal/apperr"
	"github.com/koloni/koloni-be/internal/history"
	"github.com/koloni/koloni-be/internal/llm"
	"github.com/koloni/koloni-be/internal/models"
	"github.com/rs/zerolog/log"
)

// formatSpec fixes the cost and backend parameters for one content format.
// The table is closed: unknown formats are rejected at the boundary.
type formatSpec struct {
	Cost        int
	Model       string
	Temperature float32
	MaxTokens   int
	System      string
	Prompt      func(req models.GenerationRequest) string
	Metadata    func(req models.GenerationRequest, ts time.Time) models.GenerationMetadata
}

var formats = map[string]formatSpec{
	"emu": {
		Cost:        15,
		Model:       "gpt-4",
		Temperature: 0.7,
		MaxTokens:   500,
		System: "You are a creative AI assistant specializing in generating engaging Emu format content. " +
			"Emu content is concise, impactful, and optimized for quick consumption.",
		Prompt: func(req models.GenerationRequest) string {
			return fmt.Sprintf("Create an Emu content piece with the following parameters:\nPrompt: %s\nTone: %s\nLength: %s",
				req.Prompt, defaultStr(req.Tone, "engaging"), defaultStr(req.Length, "short"))
		},
		Metadata: func(req models.GenerationRequest, ts time.Time) models.GenerationMetadata {
			return models.GenerationMetadata{
				Format:    "emu",
				Tone:      defaultStr(req.Tone, "engaging"),
				Length:    defaultStr(req.Length, "short"),
				Timestamp: ts,
			}
		},
	},
	"longcat": {
		Cost:        10,
		Model:       "gpt-4",
		Temperature: 0.8,
		MaxTokens:   1000,
		System: "You are a creative AI assistant specializing in generating engaging LongCat format content. " +
			"LongCat content is vertical, scrollable, and highly visual.",
		Prompt: func(req models.GenerationRequest) string {
			return fmt.Sprintf("Create a LongCat content piece with the following parameters:\nPrompt: %s\nStyle: %s\nDuration: %s",
				req.Prompt, defaultStr(req.Style, "creative"), defaultStr(req.Duration, "medium"))
		},
		Metadata: func(req models.GenerationRequest, ts time.Time) models.GenerationMetadata {
			return models.GenerationMetadata{
				Format:    "longcat",
				Style:     defaultStr(req.Style, "creative"),
				Duration:  defaultStr(req.Duration, "medium"),
				Timestamp: ts,
			}
		},
	},
}

// GenerationServiceProvider defines the interface for generation dispatch.
type GenerationServiceProvider interface {
	Generate(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error)
	FormatCost(format string) (int, error)
}

// GenerationService routes generation requests to the backend and settles
// their token cost against the ledger.
type GenerationService struct {
	backend      llm.Client
	ledger       LedgerServiceProvider
	eventService EventServiceProvider
	historyLog   *history.Log
	timeout      time.Duration
}

// NewGenerationService creates a new GenerationService. timeout bounds each
// backend call.
func NewGenerationService(backend llm.Client, ledgerSvc LedgerServiceProvider, eventService EventServiceProvider, historyLog *history.Log, timeout time.Duration) *GenerationService {
	return &GenerationService{
		backend:      backend,
		ledger:       ledgerSvc,
		eventService: eventService,
		historyLog:   historyLog,
		timeout:      timeout,
	}
}

// FormatCost returns the fixed token cost for a format.
func (s *GenerationService) FormatCost(format string) (int, error) {
	spec, ok := formats[format]
	if !ok {
		return 0, apperr.Newf(apperr.UnknownFormat, "Unknown format: %s", format)
	}
	return spec.Cost, nil
}

// Generate runs the check -> backend call -> deduct protocol for req.
// Tokens are only deducted after the backend succeeds; a backend failure
// costs nothing. If the deduction itself fails (a concurrent spend drained
// the balance between check and deduct) the generated content is still
// returned and the failure is logged. That window is deliberate: the cost is
// not reserved during the call.
func (s *GenerationService) Generate(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	spec, ok := formats[req.Format]
	if !ok {
		return models.GenerationResult{}, apperr.Newf(apperr.UnknownFormat, "Unknown format: %s", req.Format)
	}

	check, err := s.ledger.Check(req.UserID, spec.Cost)
	if err != nil {
		return models.GenerationResult{}, err
	}
	if !check.Sufficient {
		return models.GenerationResult{}, apperr.Newf(apperr.InsufficientBalance, "Insufficient tokens")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.backend.Generate(callCtx, llm.Request{
		Model:       spec.Model,
		System:      spec.System,
		Prompt:      spec.Prompt(req),
		Temperature: spec.Temperature,
		MaxTokens:   spec.MaxTokens,
	})
	if err != nil {
		s.eventService.CreateEvent("generation.failed", "error",
			fmt.Sprintf("Generation failed for format %s.", req.Format), &req.UserID)
		return models.GenerationResult{}, apperr.Wrap(apperr.GenerationBackendError, err, "Failed to generate content")
	}

	if _, err := s.ledger.Deduct(req.UserID, spec.Cost); err != nil {
		// Known inconsistency: content was already produced, so it is
		// returned to the caller even though the deduction lost a race.
		log.Error().Err(err).
			Str("user_id", req.UserID).
			Str("format", req.Format).
			Int("cost", spec.Cost).
			Msg("Token deduction failed after successful generation")
	}

	result := models.GenerationResult{
		Content:  content,
		Metadata: spec.Metadata(req, time.Now().UTC()),
	}

	if s.historyLog != nil {
		s.historyLog.Append(req.UserID, history.Entry{
			Format:    req.Format,
			Prompt:    req.Prompt,
			Content:   content,
			CreatedAt: result.Metadata.Timestamp,
		})
	}
	s.eventService.CreateEvent("generation.complete", "info",
		fmt.Sprintf("Generated %s content (%d tokens).", req.Format, spec.Cost), &req.UserID)

	return result, nil
}

// defaultStr returns v, or fallback when v is empty.
func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
