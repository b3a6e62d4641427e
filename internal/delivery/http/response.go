package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/pkg/logger"
)

// Response is the error envelope. Successful calls return their payload directly.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError maps typed errors to their status. Anything else is a 500
// with a generic message and the cause logged.
func respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		respondJSON(w, httpErr.StatusCode(), Response{Success: false, Error: httpErr.Error()})
		return
	}
	logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg(fallback)
	respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: fallback})
}
