package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Panel is the body of an error the page renders with a manual retry hint.
type Panel struct {
	Title string `json:"title"`
	Hint  string `json:"hint"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Code: status, Message: message})
}

// Invalid writes a 400 carrying per-field validation messages.
func Invalid(w http.ResponseWriter, fields map[string]string) {
	write(w, http.StatusBadRequest, Envelope{Code: http.StatusBadRequest, Message: "validation failed", Data: fields})
}

// ErrorPanel writes a backend failure the page shows as an error panel.
func ErrorPanel(w http.ResponseWriter, status int, title string) {
	write(w, status, Envelope{
		Code:    status,
		Message: title,
		Data:    Panel{Title: title, Hint: "Please try refreshing the page"},
	})
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}
