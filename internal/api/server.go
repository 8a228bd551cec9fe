package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"stormglass/internal/ui"
	"stormglass/pkg/version"
)

// NewServer creates and configures the local HTTP server binding the UI to
// the frame core. It accepts the handlers for all endpoints and a shutdown
// func for graceful teardown.
func NewServer(addr string, hub *Hub, playerH *PlayerHandler, mapH *MapHandler, statsH *StatsHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// Health + version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// Playback control
	mux.HandleFunc("GET /api/player/status", playerH.HandleStatus)
	mux.HandleFunc("POST /api/player/toggle", playerH.HandleToggle)
	mux.HandleFunc("POST /api/player/next", playerH.HandleNext)
	mux.HandleFunc("POST /api/player/prev", playerH.HandlePrev)
	mux.HandleFunc("GET /api/frames", playerH.HandleFrames)

	// Rendering options
	mux.HandleFunc("POST /api/options/opacity", playerH.HandleOpacity)
	mux.HandleFunc("POST /api/options/scheme", playerH.HandleScheme)
	mux.HandleFunc("GET /api/options/schemes", playerH.HandleSchemes)

	// Base map
	mux.HandleFunc("GET /api/map/styles", mapH.HandleStyles)
	mux.HandleFunc("POST /api/map/style", mapH.HandleSetStyle)
	mux.HandleFunc("GET /api/map/view", mapH.HandleView)
	mux.HandleFunc("GET /api/map/preview", mapH.HandlePreview)

	// Diagnostics
	mux.Handle("GET /api/stats", statsH)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// Render-surface channel
	mux.HandleFunc("GET /ws", hub.HandleWS)

	// Shutdown endpoint (used by the GUI shell on window close)
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		// Let the response flush before tearing down.
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	// Static map frontend
	mux.Handle("/", http.FileServerFS(ui.StaticFS))

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("failed to write version response", "error", err)
	}
}
