package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"stormglass/pkg/config"
	"stormglass/pkg/model"
	"stormglass/pkg/player"
	"stormglass/pkg/tiles"
)

// MapHandler serves the base-style table and map view helpers. The base
// layer is independent of the frame core: style switches go straight to
// the hub without touching the overlay caches.
type MapHandler struct {
	hub  *Hub
	ctrl *player.Controller
	cfg  *config.MapConfig
}

// NewMapHandler creates the handler.
func NewMapHandler(hub *Hub, ctrl *player.Controller, cfg *config.MapConfig) *MapHandler {
	return &MapHandler{hub: hub, ctrl: ctrl, cfg: cfg}
}

// HandleStyles returns the static base-style table.
func (h *MapHandler) HandleStyles(w http.ResponseWriter, r *http.Request) {
	styles := make(map[string]tiles.BaseStyle)
	for _, key := range tiles.BaseStyleKeys() {
		s, _ := tiles.LookupBaseStyle(key)
		styles[key] = s
	}
	writeJSON(w, map[string]any{
		"styles":  styles,
		"default": h.cfg.BaseStyle,
	})
}

// HandleSetStyle replaces the base layer.
func (h *MapHandler) HandleSetStyle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Style string `json:"style"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid json")
		return
	}

	style, ok := tiles.LookupBaseStyle(req.Style)
	if !ok {
		httpError(w, http.StatusBadRequest, "unknown base style")
		return
	}

	h.hub.SetBaseStyle(style)
	slog.Info("base style changed", "style", req.Style)
	writeJSON(w, map[string]string{"style": req.Style})
}

// HandleView returns the configured initial map view.
func (h *MapHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"center_lon": h.cfg.CenterLon,
		"center_lat": h.cfg.CenterLat,
		"zoom":       h.cfg.Zoom,
	})
}

// HandlePreview resolves the current frame's radar template at the
// configured map center, a concrete URL the UI can use as a thumbnail.
func (h *MapHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	cat := h.ctrl.Catalog()
	if cat == nil {
		httpError(w, http.StatusServiceUnavailable, "no catalog loaded")
		return
	}

	idx := h.ctrl.CurrentIndex()
	opts := h.ctrl.Options()
	tile := tiles.CenterTile(h.cfg.CenterLon, h.cfg.CenterLat, h.cfg.Zoom)

	writeJSON(w, map[string]any{
		"index": idx,
		"radar": tiles.Resolve(tiles.RadarURL(cat.Host, cat.Radar[idx], opts), tile),
		"cloud": tiles.Resolve(tiles.URL(model.KindCloud, cat.Host, cat.Satellite[idx], opts), tile),
	})
}
