package overlay

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"stormglass/pkg/model"
)

// fakeSurface records attach/detach/opacity calls.
type fakeSurface struct {
	layers    map[LayerID]string
	attached  map[LayerID]bool
	opacities map[LayerID]float64
	attaches  int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		layers:    make(map[LayerID]string),
		attached:  make(map[LayerID]bool),
		opacities: make(map[LayerID]float64),
	}
}

func (s *fakeSurface) Attach(url string, opacity float64) (LayerID, error) {
	id := uuid.New()
	s.layers[id] = url
	s.attached[id] = true
	s.opacities[id] = opacity
	s.attaches++
	return id, nil
}

func (s *fakeSurface) Reattach(id LayerID) error {
	if _, ok := s.layers[id]; !ok {
		return fmt.Errorf("unknown layer %s", id)
	}
	s.attached[id] = true
	return nil
}

func (s *fakeSurface) Detach(id LayerID) {
	s.attached[id] = false
}

func (s *fakeSurface) SetOpacity(id LayerID, opacity float64) {
	s.opacities[id] = opacity
}

func (s *fakeSurface) IsAttached(id LayerID) bool {
	return s.attached[id]
}

func TestCache_GetOrCreateIdempotent(t *testing.T) {
	surf := newFakeSurface()
	c := NewCache(model.KindRadar, surf)

	l1, err := c.GetOrCreate(3, "url-3", 0.8)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	l2, err := c.GetOrCreate(3, "url-3", 0.8)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	if l1 != l2 {
		t.Error("expected the same cached handle on second call")
	}
	if surf.attaches != 1 {
		t.Errorf("expected exactly one attach, got %d", surf.attaches)
	}
	if l1.Kind != model.KindRadar || l1.Index != 3 {
		t.Errorf("layer tagged incorrectly: %+v", l1)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := NewCache(model.KindCloud, newFakeSurface())

	if _, ok := c.Get(0); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestCache_InvalidateAll(t *testing.T) {
	surf := newFakeSurface()
	c := NewCache(model.KindRadar, surf)

	l, _ := c.GetOrCreate(0, "url-0", 0.8)
	_, _ = c.GetOrCreate(1, "url-1", 0.8)

	c.InvalidateAll()

	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
	// Invalidation drops entries only; attached layers are the caller's
	// responsibility.
	if !surf.IsAttached(l.ID) {
		t.Error("invalidate must not detach layers from the surface")
	}

	// Recreation after invalidation attaches a fresh layer.
	l2, _ := c.GetOrCreate(0, "url-0-new", 0.8)
	if l2.ID == l.ID {
		t.Error("expected a new layer after invalidation")
	}
}

func TestCache_SetOpacityAll(t *testing.T) {
	surf := newFakeSurface()
	c := NewCache(model.KindRadar, surf)

	l0, _ := c.GetOrCreate(0, "url-0", 0.8)
	l1, _ := c.GetOrCreate(1, "url-1", 0.8)

	c.SetOpacityAll(0.4)

	if surf.opacities[l0.ID] != 0.4 || surf.opacities[l1.ID] != 0.4 {
		t.Error("expected opacity applied to every cached layer")
	}
}
