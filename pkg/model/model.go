package model

// Frame is one time-step's imagery descriptor in an animation sequence.
// Frames are immutable once fetched; order within the catalog is the
// animation order.
type Frame struct {
	Path string `json:"path"`
	Time int64  `json:"time"`
}

// LayerKind identifies the overlay class a layer belongs to.
type LayerKind string

const (
	KindRadar LayerKind = "radar"
	KindCloud LayerKind = "cloud"
)

// Valid reports whether k is a known layer kind.
func (k LayerKind) Valid() bool {
	return k == KindRadar || k == KindCloud
}
