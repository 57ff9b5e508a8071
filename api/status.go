package api

import (
	"net/http"

	"github.com/azeasycpa/askcpa/internal/lifecycle"
)

// StatusHandler is the public read-only projection: a submitter sees only
// questions matching the email they supply, filtered server-side. No writes,
// no dashboard token.
type StatusHandler struct {
	engine *lifecycle.Engine
}

func NewStatusHandler(engine *lifecycle.Engine) *StatusHandler {
	return &StatusHandler{engine: engine}
}

// StatusByEmail returns the submitter's questions, newest first. Zero matches
// is a 200 with an empty list, not an error.
func (h *StatusHandler) StatusByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	items, err := h.engine.FindByEmail(r.Context(), email)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, items, http.StatusOK)
}
