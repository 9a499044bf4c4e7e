package live

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/panzoom/panzoom/internal/auth"
)

type Handler struct {
	hub            *Hub
	tokens         *auth.Service
	originPatterns []string
}

// NewHandler serves websocket observers for hub. originPatterns are passed
// to websocket.Accept; same-origin requests are always accepted.
func NewHandler(hub *Hub, tokens *auth.Service, originPatterns []string) *Handler {
	return &Handler{hub: hub, tokens: tokens, originPatterns: originPatterns}
}

// ServeWS upgrades a request for /ws/views/{id}. Anyone may observe a view;
// a "token" query parameter for the same view also allows zooming it.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	viewID := mux.Vars(r)["id"]

	if _, err := h.hub.lookup(viewID); err != nil {
		http.Error(w, "view not found", http.StatusNotFound)
		return
	}

	canControl := false
	if token := r.URL.Query().Get("token"); token != "" {
		tokenView, err := h.tokens.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if tokenView != viewID {
			http.Error(w, "token is for another view", http.StatusForbidden)
			return
		}
		canControl = true
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := NewClient(h.hub, conn, viewID, clientID, canControl)

	h.hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
