// Package httputil writes the JSON responses shared by handlers and middleware.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the payload of every error response
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse is the envelope of every error response
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status code.
// Headers are already sent when encoding fails, so the failure is only logged.
func WriteJSON(w http.ResponseWriter, status int, v any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response without field details
func WriteError(w http.ResponseWriter, status int, code, message string, log *slog.Logger) {
	WriteBody(w, status, ErrorBody{Code: code, Message: message}, log)
}

// WriteBody writes body wrapped in the error envelope
func WriteBody(w http.ResponseWriter, status int, body ErrorBody, log *slog.Logger) {
	WriteJSON(w, status, ErrorResponse{Error: body}, log)
}
