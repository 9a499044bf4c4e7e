package view

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"

	"github.com/panzoom/panzoom/internal/scene"
)

const maxSceneSize = 1 << 20 // 1MB

// SceneHandler serves the scene shared by all views.
type SceneHandler struct {
	service *Service
	path    string // scene file written on upload; empty keeps uploads in memory
}

func NewSceneHandler(service *Service, path string) *SceneHandler {
	return &SceneHandler{service: service, path: path}
}

// Register mounts GET /api/scene and, when uploads are enabled,
// PUT /api/scene.
func (h *SceneHandler) Register(r *mux.Router, uploads bool) {
	r.HandleFunc("/api/scene", h.Get).Methods("GET")
	if uploads {
		r.HandleFunc("/api/scene", h.Upload).Methods("PUT")
	}
}

// Get returns the scene as YAML when asked for it, JSON otherwise.
func (h *SceneHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := h.service.Scene()
	if r.Header.Get("Accept") == "application/yaml" {
		data, err := yaml.Marshal(s)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Upload replaces the scene with a YAML body. Every view keeps its zoom
// factor and position.
func (h *SceneHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSceneSize)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "scene too large (max 1MB)"})
		return
	}

	s, err := scene.Parse(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if h.path != "" {
		if err := scene.Save(s, h.path); err != nil {
			slog.Error("save scene", "file", h.path, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save scene"})
			return
		}
	}

	h.service.SetScene(s)
	writeJSON(w, http.StatusOK, s)
}
