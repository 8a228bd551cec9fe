// Package overlay manages the lifecycle of renderable tile layers: lazy
// creation against a render surface, per-frame caching, and wholesale
// invalidation when rendering options change.
package overlay

import (
	"github.com/google/uuid"

	"stormglass/pkg/model"
)

// LayerID identifies a layer attached to the render surface.
type LayerID = uuid.UUID

// Surface is the external tile render surface. URL templates keep their
// {z}/{x}/{y} placeholders; the surface resolves them per tile.
type Surface interface {
	// Attach creates a new layer from a template and adds it to the map.
	Attach(urlTemplate string, opacity float64) (LayerID, error)
	// Reattach adds a previously created, currently detached layer back.
	Reattach(id LayerID) error
	// Detach removes a layer from the map; the layer object survives and
	// may be reattached later.
	Detach(id LayerID)
	SetOpacity(id LayerID, opacity float64)
	IsAttached(id LayerID) bool
}

// Layer is the opaque handle to one frame's overlay, tagged with the frame
// index and kind it was built for. A layer persists in its cache for reuse
// across replays until the cache is invalidated.
type Layer struct {
	ID    LayerID
	Kind  model.LayerKind
	Index int
	URL   string
}
