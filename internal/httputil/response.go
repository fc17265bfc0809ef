package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// MessageResponse is the standard success/message envelope the API speaks.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondMessage sends a {success, message} envelope.
func RespondMessage(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, MessageResponse{Success: true, Message: message}, statusCode)
}

// RespondError sends a {success: false, message} envelope.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, MessageResponse{Success: false, Message: message}, statusCode)
}

// RespondText sends a plain text response. The verification endpoint answers
// with bare strings rather than JSON.
func RespondText(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(message)); err != nil {
		log.Printf("ERROR: failed to write text response: %v", err)
	}
}
