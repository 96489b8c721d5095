package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/koloni/koloni-be/internal/apperr"
	"github.com/koloni/koloni-be/internal/models"
	"github.com/koloni/koloni-be/internal/services"
)

// ExportHandler handles platform export requests.
type ExportHandler struct {
	service services.ExportServiceProvider
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(service services.ExportServiceProvider) *ExportHandler {
	return &ExportHandler{service: service}
}

// ExportPayload is the request body for export calls. Content is either a
// plain string or a structured object.
type ExportPayload struct {
	Content json.RawMessage `json:"content"`
	Format  string          `json:"format"`
	UserID  string          `json:"userId"`
}

// structuredContent is the object form of the content field.
type structuredContent struct {
	Text        string   `json:"text"`
	Hashtags    []string `json:"hashtags"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Export handles POST /export/{platform}.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	platform := chi.URLParam(r, "platform")

	var payload ExportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperr.New(apperr.MissingParameter, "Invalid request body"))
		return
	}
	if len(payload.Content) == 0 || payload.UserID == "" {
		writeError(w, apperr.New(apperr.MissingParameter, "Missing required parameters: content, userId"))
		return
	}

	content, err := parseContent(payload.Content)
	if err != nil {
		writeError(w, apperr.New(apperr.MissingParameter, "Invalid content payload"))
		return
	}

	result, err := h.service.Export(platform, content, payload.Format)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, withSuccess(result))
}

// parseContent accepts either a JSON string or a structured object.
func parseContent(raw json.RawMessage) (models.ExportContent, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return models.ExportContent{Raw: text}, nil
	}

	var structured structuredContent
	if err := json.Unmarshal(raw, &structured); err != nil {
		return models.ExportContent{}, err
	}
	return models.ExportContent{
		Text:        structured.Text,
		Hashtags:    structured.Hashtags,
		Title:       structured.Title,
		Description: structured.Description,
		Tags:        structured.Tags,
	}, nil
}
