package overlay

import (
	"fmt"
	"log/slog"

	"stormglass/pkg/model"
)

// Cache is the sparse, index-keyed store of materialized layers for one
// overlay class. Entries are created lazily and always reflect the
// rendering options in effect at creation time; an option change affecting
// this class must clear the whole cache rather than track staleness
// per entry.
//
// Cache is not safe for concurrent use; the player serializes access.
type Cache struct {
	kind    model.LayerKind
	surface Surface
	layers  map[int]*Layer
}

// NewCache creates an empty cache for one layer class.
func NewCache(kind model.LayerKind, surface Surface) *Cache {
	return &Cache{
		kind:    kind,
		surface: surface,
		layers:  make(map[int]*Layer),
	}
}

// Kind returns the layer class this cache serves.
func (c *Cache) Kind() model.LayerKind { return c.kind }

// Get returns the cached layer for a frame index, if present.
func (c *Cache) Get(index int) (*Layer, bool) {
	l, ok := c.layers[index]
	return l, ok
}

// GetOrCreate returns the cached layer for index, attaching a new one to
// the surface if absent. The presence check guarantees at most one layer
// per (class, index).
func (c *Cache) GetOrCreate(index int, url string, opacity float64) (*Layer, error) {
	if l, ok := c.layers[index]; ok {
		return l, nil
	}

	id, err := c.surface.Attach(url, opacity)
	if err != nil {
		return nil, fmt.Errorf("attach %s layer %d: %w", c.kind, index, err)
	}

	l := &Layer{ID: id, Kind: c.kind, Index: index, URL: url}
	c.layers[index] = l
	slog.Debug("overlay layer created", "kind", c.kind, "index", index, "url", url)
	return l, nil
}

// InvalidateAll drops every cached entry. It does not detach layers from
// the surface; the caller detaches the visible ones first.
func (c *Cache) InvalidateAll() {
	slog.Debug("overlay cache invalidated", "kind", c.kind, "dropped", len(c.layers))
	c.layers = make(map[int]*Layer)
}

// SetOpacityAll applies an opacity to every cached layer of this class,
// so frames already visited keep the new value when revisited.
func (c *Cache) SetOpacityAll(opacity float64) {
	for _, l := range c.layers {
		c.surface.SetOpacity(l.ID, opacity)
	}
}

// Len returns the number of cached layers.
func (c *Cache) Len() int { return len(c.layers) }
