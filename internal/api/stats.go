package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"stormglass/pkg/logging"
	"stormglass/pkg/tracker"
)

// StatsHandler exposes request statistics for the UI overlay.
type StatsHandler struct {
	tracker *tracker.Tracker
	hub     *Hub
}

// NewStatsHandler creates the handler.
func NewStatsHandler(t *tracker.Tracker, hub *Hub) *StatsHandler {
	return &StatsHandler{tracker: t, hub: hub}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"providers":   h.tracker.Snapshot(),
		"map_clients": h.hub.ClientCount(),
	})
}

// handleLatestLog returns recent captured log lines for the UI overlay.
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"log":    logging.Capture.Last(),
		"recent": logging.Capture.Recent(10),
	})
}

// writeJSON encodes v with the right content type; encode failures after
// the header is written can only be logged.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func httpError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
