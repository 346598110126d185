package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HealthHandler serves the liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if action == "ping" {
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
		return
	}
	writeError(w, http.StatusBadRequest, "unknown action")
}

