// Package player drives the frame animation: it owns the current frame
// index, the overlay caches, the rendering options and the auto-play
// ticker. All mutation goes through the Controller, which serializes UI
// events and ticker ticks behind one mutex (single-writer invariant).
package player

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"stormglass/pkg/catalog"
	"stormglass/pkg/model"
	"stormglass/pkg/overlay"
	"stormglass/pkg/tiles"
)

// State is the controller's lifecycle state.
type State int

const (
	// StateIdle means no catalog is loaded; all frame events are no-ops.
	StateIdle State = iota
	// StateReady means a catalog is loaded and a frame is shown.
	StateReady
	// StatePlaying is Ready plus an active auto-play ticker.
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Controller is the frame state machine. There is exactly one per process;
// it runs for the application's lifetime.
type Controller struct {
	mu      sync.Mutex
	surface overlay.Surface
	cat     *catalog.Catalog
	radar   *overlay.Cache
	cloud   *overlay.Cache
	opts    tiles.Options

	phase    State
	index    int
	stop     chan struct{} // non-nil exactly while playing
	interval time.Duration
}

// New creates a Controller in Idle state.
func New(surface overlay.Surface, opts tiles.Options, interval time.Duration) *Controller {
	if interval <= 0 {
		interval = 700 * time.Millisecond
	}
	return &Controller{
		surface:  surface,
		radar:    overlay.NewCache(model.KindRadar, surface),
		cloud:    overlay.NewCache(model.KindCloud, surface),
		opts:     opts,
		interval: interval,
	}
}

// SetCatalog transitions Idle→Ready and shows frame 0. A catalog with zero
// usable frames leaves the controller Idle (soft condition, not an error).
// Calling it again after a successful load is a no-op.
func (c *Controller) SetCatalog(cat *catalog.Catalog) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != StateIdle {
		slog.Warn("catalog already loaded, ignoring")
		return nil
	}
	if cat == nil || cat.FrameCount() == 0 {
		slog.Warn("catalog has no usable frames, staying idle")
		return nil
	}

	c.cat = cat
	c.phase = StateReady
	c.index = 0
	return c.attachLocked(0)
}

// ShowFrame detaches the current frame's overlays and attaches the target
// frame's, creating layers lazily. The index must be in
// [0, FrameCount()); callers compute it by modulo arithmetic, so an
// out-of-range index is a programming error and panics rather than
// clamping. No-op while Idle.
func (c *Controller) ShowFrame(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showLocked(i)
}

func (c *Controller) showLocked(i int) error {
	if c.phase == StateIdle {
		return nil
	}
	if max := c.cat.FrameCount(); i < 0 || i >= max {
		panic(fmt.Sprintf("player: frame index %d out of range [0,%d)", i, max))
	}

	c.detachLocked(c.index)
	c.index = i
	return c.attachLocked(i)
}

// Next advances to the following frame, wrapping at the end.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepLocked(1)
}

// Prev steps back one frame, wrapping at the start.
func (c *Controller) Prev() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepLocked(-1)
}

func (c *Controller) stepLocked(delta int) error {
	if c.phase == StateIdle {
		return nil
	}
	max := c.cat.FrameCount()
	if max == 0 {
		return nil
	}
	return c.showLocked((c.index + delta + max) % max)
}

// TogglePlay flips Ready↔Playing. Entering Playing starts the single
// auto-play ticker; leaving cancels it. No-op while Idle.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case StateIdle:
		return
	case StatePlaying:
		close(c.stop)
		c.stop = nil
		c.phase = StateReady
		slog.Info("playback paused", "index", c.index)
	case StateReady:
		stop := make(chan struct{})
		c.stop = stop
		c.phase = StatePlaying
		go c.playLoop(stop)
		slog.Info("playback started", "interval", c.interval)
	}
}

// playLoop owns the ticker for one Playing phase. It exits when the stop
// channel closes, so no tick can advance a frame after a pause.
func (c *Controller) playLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			// A tick can race the pause; the stop channel is closed under
			// the mutex, so re-checking here makes the pause final.
			select {
			case <-stop:
				c.mu.Unlock()
				return
			default:
			}
			if err := c.stepLocked(1); err != nil {
				slog.Error("auto-play step failed", "error", err)
			}
			c.mu.Unlock()
		}
	}
}

// SetOpacity stores the opacity for a layer kind and applies it to every
// cached layer of that kind, visible or not.
func (c *Controller) SetOpacity(kind model.LayerKind, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case model.KindRadar:
		c.opts.RadarOpacity = value
		c.radar.SetOpacityAll(value)
	case model.KindCloud:
		c.opts.CloudOpacity = value
		c.cloud.SetOpacityAll(value)
	}
}

// SetScheme changes the radar color scheme. The scheme is encoded in radar
// URLs only, so the radar cache is cleared wholesale and the current frame
// reattached: radar rebuilt with the new scheme, the satellite layer reused
// unchanged. Satellite URLs are scheme-independent and never invalidated
// here.
func (c *Controller) SetScheme(s tiles.ColorScheme) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.opts.Scheme = s
	if c.phase == StateIdle {
		return nil
	}

	c.detachLocked(c.index)
	c.radar.InvalidateAll()
	return c.attachLocked(c.index)
}

// attachLocked shows the overlays for index i, creating layers lazily and
// reattaching cached ones that were detached earlier.
func (c *Controller) attachLocked(i int) error {
	for _, cache := range [...]*overlay.Cache{c.radar, c.cloud} {
		kind := cache.Kind()
		if l, ok := cache.Get(i); ok {
			if !c.surface.IsAttached(l.ID) {
				if err := c.surface.Reattach(l.ID); err != nil {
					return fmt.Errorf("reattach %s layer %d: %w", kind, i, err)
				}
			}
			continue
		}

		url := tiles.URL(kind, c.cat.Host, c.frame(kind, i), c.opts)
		if _, err := cache.GetOrCreate(i, url, c.opts.Opacity(kind)); err != nil {
			return err
		}
	}
	return nil
}

// detachLocked removes the overlays for index i from the surface; the
// layers stay cached for reuse.
func (c *Controller) detachLocked(i int) {
	for _, cache := range [...]*overlay.Cache{c.radar, c.cloud} {
		if l, ok := cache.Get(i); ok && c.surface.IsAttached(l.ID) {
			c.surface.Detach(l.ID)
		}
	}
}

func (c *Controller) frame(kind model.LayerKind, i int) model.Frame {
	if kind == model.KindRadar {
		return c.cat.Radar[i]
	}
	return c.cat.Satellite[i]
}

// Close stops the auto-play ticker if running. The controller otherwise
// has no teardown.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == StatePlaying {
		close(c.stop)
		c.stop = nil
		c.phase = StateReady
	}
}

// Status is a snapshot of the controller for the UI.
type Status struct {
	State        string  `json:"state"`
	Index        int     `json:"index"`
	FrameCount   int     `json:"frame_count"`
	Playing      bool    `json:"playing"`
	Scheme       string  `json:"scheme"`
	RadarOpacity float64 `json:"radar_opacity"`
	CloudOpacity float64 `json:"cloud_opacity"`
}

// Status returns a consistent snapshot of the playback state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	if c.cat != nil {
		count = c.cat.FrameCount()
	}
	return Status{
		State:        c.phase.String(),
		Index:        c.index,
		FrameCount:   count,
		Playing:      c.phase == StatePlaying,
		Scheme:       c.opts.Scheme.String(),
		RadarOpacity: c.opts.RadarOpacity,
		CloudOpacity: c.opts.CloudOpacity,
	}
}

// Options returns a copy of the current rendering options.
func (c *Controller) Options() tiles.Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// CurrentIndex returns the current frame index.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// FrameCount returns the usable frame count, 0 while Idle.
func (c *Controller) FrameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cat == nil {
		return 0
	}
	return c.cat.FrameCount()
}

// IsPlaying reports whether the auto-play ticker is active.
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == StatePlaying
}

// Catalog returns the loaded catalog, nil while Idle.
func (c *Controller) Catalog() *catalog.Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cat
}
