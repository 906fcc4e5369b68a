// Package httpx holds the JSON response helpers shared by all handlers.
package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"kantin/internal/apperr"
	"kantin/internal/logger"
)

// Envelope is the response shape the SPA client consumes.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// OK writes a success envelope.
func OK(w http.ResponseWriter, statusCode int, message string, data any) {
	JSON(w, statusCode, Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failure envelope for a classified error, or an opaque
// 500 for anything unclassified.
func Error(w http.ResponseWriter, err error) {
	if e := apperr.From(err); e != nil {
		env := Envelope{Success: false, Message: e.Message}
		if e.Field != "" {
			env.Errors = map[string]string{e.Field: e.Message}
		}
		JSON(w, e.Status, env)
		return
	}
	JSON(w, http.StatusInternalServerError, Envelope{
		Success: false,
		Message: "something went wrong, please try again",
	})
}

// RequestID returns the id placed in context by the logging middleware.
func RequestID(r *http.Request) string {
	if id, ok := r.Context().Value(logger.RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// Pagination reads limit/offset query parameters.
func Pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
