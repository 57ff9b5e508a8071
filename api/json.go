package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/azeasycpa/askcpa/internal/lifecycle"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

// writeEngineError maps lifecycle error codes to HTTP responses. Validation
// detail goes to the caller; persistence detail only to the server log.
func writeEngineError(w http.ResponseWriter, err error) {
	var le *lifecycle.Error
	code := lifecycle.CodeOf(err)
	errors.As(err, &le)

	switch code {
	case lifecycle.ErrorValidation:
		msg := "invalid request"
		if le != nil && le.Reason != "" {
			msg = le.Reason
		}
		http.Error(w, msg, http.StatusBadRequest)
	case lifecycle.ErrorNotFound:
		http.Error(w, "question not found", http.StatusNotFound)
	case lifecycle.ErrorConfiguration:
		logger.Error("configuration error", slog.Any("err", err))
		http.Error(w, "system not configured", http.StatusInternalServerError)
	default:
		logger.Error("store error", slog.Any("err", err))
		http.Error(w, "failed to process request", http.StatusInternalServerError)
	}
}
