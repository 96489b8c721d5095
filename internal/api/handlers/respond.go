package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/koloni/koloni-be/internal/apperr"
)

// writeJSON renders v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders the standard error envelope for err, using the apperr
// taxonomy to pick the status code.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), map[string]string{"error": apperr.Message(err)})
}

// withSuccess flattens v into a JSON object and sets success: true, matching
// the API's success envelope.
func withSuccess(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{"success": true}
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]interface{}{"success": true}
	}
	out["success"] = true
	return out
}
