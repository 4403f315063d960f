// Package transport holds the JSON envelope every handler replies with.
package transport

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the one error shape the frontend consumes. Details is
// only set for validation failures and maps field names to messages.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes the payload with the given status. An encoding failure
// is ignored: the status line is already on the wire at that point.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes the error envelope. Pass nil details for anything that
// is not a validation failure.
func WriteError(w http.ResponseWriter, status int, message string, details map[string]string) {
	WriteJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}
