package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/plateful/plateful/internal/errs"
	"github.com/plateful/plateful/internal/logger"
	"go.uber.org/zap"
)

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError sends an error JSON response of the form {"error": message}.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondFromError maps a failure to its HTTP status. Every authentication
// failure collapses to the same 401 body so callers cannot probe which
// check rejected them.
func respondFromError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, errs.ErrConflict):
		respondError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, errs.ErrValidation):
		respondError(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, errs.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	default:
		log.Error("request failed", zap.String("error", logger.SanitizeError(err)))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// decodeJSON decodes a request body, mapping malformed input to a
// validation failure.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errs.ErrValidation
	}
	return nil
}
