package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"stormglass/pkg/model"
	"stormglass/pkg/player"
	"stormglass/pkg/tiles"
)

// PlayerHandler exposes the frame controller's mutators to the UI. Each
// endpoint maps 1:1 to a controller operation; the handler itself holds no
// state.
type PlayerHandler struct {
	ctrl *player.Controller
}

// NewPlayerHandler creates the handler.
func NewPlayerHandler(ctrl *player.Controller) *PlayerHandler {
	return &PlayerHandler{ctrl: ctrl}
}

// HandleStatus returns the playback snapshot.
func (h *PlayerHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.ctrl.Status())
}

// HandleToggle flips play/pause.
func (h *PlayerHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	h.ctrl.TogglePlay()
	writeJSON(w, h.ctrl.Status())
}

// HandleNext steps one frame forward.
func (h *PlayerHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Next(); err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, h.ctrl.Status())
}

// HandlePrev steps one frame back.
func (h *PlayerHandler) HandlePrev(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Prev(); err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, h.ctrl.Status())
}

// HandleFrames returns the catalog frame times for the scrubber.
func (h *PlayerHandler) HandleFrames(w http.ResponseWriter, r *http.Request) {
	type frameInfo struct {
		Index int   `json:"index"`
		Time  int64 `json:"time"`
	}
	resp := struct {
		Count  int         `json:"count"`
		Frames []frameInfo `json:"frames"`
	}{Frames: []frameInfo{}}

	if cat := h.ctrl.Catalog(); cat != nil {
		resp.Count = cat.FrameCount()
		for i := 0; i < resp.Count; i++ {
			resp.Frames = append(resp.Frames, frameInfo{Index: i, Time: cat.Radar[i].Time})
		}
	}
	writeJSON(w, resp)
}

// HandleOpacity sets the opacity for one layer kind on all its cached
// layers.
func (h *PlayerHandler) HandleOpacity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind  string  `json:"kind"`
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid json")
		return
	}

	kind := model.LayerKind(req.Kind)
	if !kind.Valid() {
		httpError(w, http.StatusBadRequest, "unknown layer kind")
		return
	}
	if req.Value < 0 || req.Value > 1 {
		httpError(w, http.StatusBadRequest, "opacity out of range [0,1]")
		return
	}

	h.ctrl.SetOpacity(kind, req.Value)
	writeJSON(w, h.ctrl.Status())
}

// HandleScheme switches the radar color scheme; the controller rebuilds
// radar layers and leaves satellite layers untouched.
func (h *PlayerHandler) HandleScheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scheme string `json:"scheme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid json")
		return
	}

	scheme, err := tiles.ParseScheme(req.Scheme)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.ctrl.SetScheme(scheme); err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	slog.Info("color scheme changed", "scheme", scheme.String())
	writeJSON(w, h.ctrl.Status())
}

// HandleSchemes lists the available scheme keys.
func (h *PlayerHandler) HandleSchemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]string{"schemes": tiles.SchemeNames()})
}
