package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/panzoom/panzoom/internal/auth"
	"github.com/panzoom/panzoom/internal/config"
	"github.com/panzoom/panzoom/internal/engine"
	"github.com/panzoom/panzoom/internal/geom"
	"github.com/panzoom/panzoom/internal/live"
	mw "github.com/panzoom/panzoom/internal/middleware"
	"github.com/panzoom/panzoom/internal/panzoom"
	"github.com/panzoom/panzoom/internal/scene"
	"github.com/panzoom/panzoom/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	viewport, err := geom.NewViewPortRect(geom.Origin(), cfg.ViewportWidth, cfg.ViewportHeight)
	if err != nil {
		slog.Error("default viewport", "error", err)
		os.Exit(1)
	}

	views := view.NewService(viewport, panzoom.WithZoomSpeed(cfg.ZoomSpeedFactor))

	// Scene file, reloaded into every view when it changes
	if cfg.SceneFile != "" {
		s, err := scene.Load(cfg.SceneFile)
		if err != nil {
			slog.Error("load scene", "file", cfg.SceneFile, "error", err)
			os.Exit(1)
		}
		views.SetScene(s)

		watcher, err := scene.NewWatcher(cfg.SceneFile, scene.DefaultWatchDebounce, views.SetScene, func(err error) {
			slog.Warn("scene reload failed", "file", cfg.SceneFile, "error", err)
		})
		if err != nil {
			slog.Error("watch scene", "file", cfg.SceneFile, "error", err)
			os.Exit(1)
		}
		watcher.Start()
		defer watcher.Stop()
	}

	tokens := auth.NewService(cfg.TokenSecret, cfg.TokenTTL)
	viewHandler := view.NewHandler(views, tokens)

	hub := live.NewHub(func(viewID string) (*engine.Engine, error) {
		v, err := views.Get(viewID)
		if err != nil {
			return nil, err
		}
		return v.Engine, nil
	})
	go hub.Run()
	liveHandler := live.NewHandler(hub, tokens, cfg.OriginPatterns())

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	viewHandler.Register(r)
	view.NewSceneHandler(views, cfg.SceneFile).Register(r, cfg.SceneUploads)

	// WebSocket endpoint
	r.HandleFunc("/ws/views/{id}", liveHandler.ServeWS)

	// Frontend
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir))).Methods("GET")
	} else {
		slog.Warn("static directory not found, serving API only", "dir", cfg.StaticDir)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Disconnect observers first; hijacked connections are not tracked by Shutdown
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "viewport", viewport, "zoom_speed", cfg.ZoomSpeedFactor)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
