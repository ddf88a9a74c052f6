// Package handler implements the HTTP endpoints: game lifecycle, login and
// health.
package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// contextKey type for request context keys (avoids collisions with other packages).
type contextKey string

// SubjectContextKey is the context key for the authenticated subject, set by
// the auth middleware.
const SubjectContextKey contextKey = "subject"

// SubjectFromRequest returns the authenticated subject, or empty.
func SubjectFromRequest(r *http.Request) string {
	if v, ok := r.Context().Value(SubjectContextKey).(string); ok {
		return v
	}
	return ""
}

// requestID returns the request ID from chi's context for logging.
func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json response: %v", err)
	}
}
