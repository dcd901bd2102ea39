// Package httpx provides JSON response utilities and the wire error boundary.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform error body: a machine-readable message and
// optional human-readable detail.
type ErrorResponse struct {
	Message string `json:"message"`
	Info    string `json:"info,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends an ErrorResponse with the given status, message and detail.
func Error(w http.ResponseWriter, status int, message, info string) {
	JSON(w, status, ErrorResponse{Message: message, Info: info})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
