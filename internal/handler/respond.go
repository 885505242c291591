package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/tenantcrm/internal/domain"
)

// ErrorResponse represents an error response body
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is treated as internal and gets a fixed message so
// store diagnostics never reach the client.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	default:
		if log != nil {
			log.Error("request failed", slog.String("error", err.Error()))
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: domain.ErrInternal.Error()})
		return
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
