package view

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/blake2b"

	"github.com/panzoom/panzoom/internal/auth"
	"github.com/panzoom/panzoom/internal/dom"
	"github.com/panzoom/panzoom/internal/engine"
	"github.com/panzoom/panzoom/internal/geom"
	"github.com/panzoom/panzoom/internal/panzoom"
)

type Handler struct {
	service *Service
	tokens  *auth.Service
}

func NewHandler(service *Service, tokens *auth.Service) *Handler {
	return &Handler{service: service, tokens: tokens}
}

// Register mounts the view API on r. Mutating routes require a token for
// the view they address.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/views", h.List).Methods("GET")
	api.HandleFunc("/views", h.Create).Methods("POST")
	api.HandleFunc("/views/{id}", h.Get).Methods("GET")
	api.HandleFunc("/views/{id}/svg", h.SVG).Methods("GET")

	protected := api.PathPrefix("/views/{id}").Subrouter()
	protected.Use(h.tokens.RequireViewToken)
	protected.HandleFunc("", h.Delete).Methods("DELETE")
	protected.HandleFunc("/wheel", h.Wheel).Methods("POST")
	protected.HandleFunc("/viewport", h.Resize).Methods("PUT")
	protected.HandleFunc("/token", auth.NewHandler(h.tokens).Refresh).Methods("POST")
}

type createRequest struct {
	Viewport *geom.ViewPortRect `json:"viewport"`
}

type createResponse struct {
	View  Info        `json:"view"`
	Token *auth.Token `json:"token"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	v := h.service.Create(req.Viewport)
	token, err := h.tokens.IssueToken(v.ID)
	if err != nil {
		h.service.Delete(v.ID)
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{View: v.Info(), Token: token})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	views := h.service.List()
	infos := make([]Info, 0, len(views))
	for _, v := range views {
		infos = append(infos, v.Info())
	}
	writeJSON(w, http.StatusOK, infos)
}

// Get returns the view state. The response carries an ETag so pollers can
// skip unchanged states.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	body, err := json.Marshal(v.Info().State)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	etag := ETag(body)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handler) SVG(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, v.Engine.Render())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(mux.Vars(r)["id"]); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Wheel applies a wheel event given in viewport coordinates and returns the
// resulting state.
func (h *Handler) Wheel(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var ev dom.Wheel
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := v.Engine.HandleWheel(ev); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, v.Engine.Snapshot())
}

// Resize moves the view's virtual element.
func (h *Handler) Resize(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(mux.Vars(r)["id"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var rect geom.ViewPortRect
	if err := json.NewDecoder(r.Body).Decode(&rect); err != nil {
		handleServiceError(w, err)
		return
	}

	if err := v.Engine.Resize(rect); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, v.Engine.Snapshot())
}

// ETag returns a strong entity tag for body.
func ETag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func handleServiceError(w http.ResponseWriter, err error) {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.EOF):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	case errors.Is(err, geom.ErrInvalidDimensions):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, panzoom.ErrPanUnsupported), errors.Is(err, geom.ErrInvalidScale):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, geom.ErrNonInvertibleTransform):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, engine.ErrNotVirtual):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "view is bound to a rendered element"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
