package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Refresh issues a fresh token for the view the request's token controls.
// Must run behind RequireViewToken.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	viewID := ViewIDFromContext(r.Context())
	if viewID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing view token"})
		return
	}

	token, err := h.service.IssueToken(viewID)
	if err != nil {
		slog.Error("refresh token failed", "view", viewID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, token)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
