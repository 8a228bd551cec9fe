package player

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stormglass/pkg/catalog"
	"stormglass/pkg/model"
	"stormglass/pkg/overlay"
	"stormglass/pkg/tiles"
)

// recordingSurface is a thread-safe fake render surface.
type recordingSurface struct {
	mu        sync.Mutex
	urls      map[overlay.LayerID]string
	attached  map[overlay.LayerID]bool
	opacities map[overlay.LayerID]float64
	attaches  int
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{
		urls:      make(map[overlay.LayerID]string),
		attached:  make(map[overlay.LayerID]bool),
		opacities: make(map[overlay.LayerID]float64),
	}
}

func (s *recordingSurface) Attach(url string, opacity float64) (overlay.LayerID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.urls[id] = url
	s.attached[id] = true
	s.opacities[id] = opacity
	s.attaches++
	return id, nil
}

func (s *recordingSurface) Reattach(id overlay.LayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.urls[id]; !ok {
		return fmt.Errorf("unknown layer %s", id)
	}
	s.attached[id] = true
	return nil
}

func (s *recordingSurface) Detach(id overlay.LayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached[id] = false
}

func (s *recordingSurface) SetOpacity(id overlay.LayerID, opacity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opacities[id] = opacity
}

func (s *recordingSurface) IsAttached(id overlay.LayerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached[id]
}

// attachedURLs returns the URLs of currently attached layers.
func (s *recordingSurface) attachedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for id, on := range s.attached {
		if on {
			out = append(out, s.urls[id])
		}
	}
	return out
}

func (s *recordingSurface) attachCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attaches
}

func testCatalog(radar, satellite int) *catalog.Catalog {
	cat := &catalog.Catalog{Host: "https://tiles.test"}
	for i := 0; i < radar; i++ {
		cat.Radar = append(cat.Radar, model.Frame{Path: fmt.Sprintf("/v2/radar/%d", i), Time: int64(i)})
	}
	for i := 0; i < satellite; i++ {
		cat.Satellite = append(cat.Satellite, model.Frame{Path: fmt.Sprintf("/v2/satellite/%d", i), Time: int64(i)})
	}
	return cat
}

func testOptions() tiles.Options {
	return tiles.Options{
		RadarOpacity: 0.8,
		CloudOpacity: 0.4,
		Scheme:       tiles.SchemeUniversalBlue,
		Smooth:       true,
		ImageFormat:  "png",
	}
}

func newReadyController(t *testing.T, radar, satellite int) (*Controller, *recordingSurface) {
	t.Helper()
	surf := newRecordingSurface()
	c := New(surf, testOptions(), 10*time.Millisecond)
	require.NoError(t, c.SetCatalog(testCatalog(radar, satellite)))
	return c, surf
}

func TestSetCatalog_ShowsFrameZero(t *testing.T) {
	c, surf := newReadyController(t, 3, 5)

	st := c.Status()
	assert.Equal(t, "ready", st.State)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, 3, st.FrameCount, "shared index range is min(radar, satellite)")

	urls := surf.attachedURLs()
	require.Len(t, urls, 2, "radar and satellite overlays for frame 0")
}

func TestSetCatalog_EmptyStaysIdle(t *testing.T) {
	surf := newRecordingSurface()
	c := New(surf, testOptions(), time.Second)

	require.NoError(t, c.SetCatalog(testCatalog(0, 0)))

	assert.Equal(t, "idle", c.Status().State)
	assert.Zero(t, surf.attachCount())
}

func TestIdle_EventsAreNoOps(t *testing.T) {
	surf := newRecordingSurface()
	c := New(surf, testOptions(), time.Second)

	require.NoError(t, c.Next())
	require.NoError(t, c.Prev())
	c.TogglePlay()
	require.NoError(t, c.SetScheme(tiles.SchemeTitan))

	assert.Equal(t, "idle", c.Status().State)
	assert.False(t, c.IsPlaying())
	assert.Zero(t, surf.attachCount())
}

func TestNextPrev_CyclicBounds(t *testing.T) {
	c, _ := newReadyController(t, 3, 5)

	// Walk far in both directions; the index must stay in [0, 3).
	for i := 0; i < 10; i++ {
		require.NoError(t, c.Next())
		idx := c.CurrentIndex()
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 3)
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, c.Prev())
		idx := c.CurrentIndex()
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 3)
	}
}

func TestNextPrev_RoundTrip(t *testing.T) {
	c, _ := newReadyController(t, 4, 4)

	for start := 0; start < 4; start++ {
		require.NoError(t, c.ShowFrame(start))

		require.NoError(t, c.Next())
		require.NoError(t, c.Prev())
		assert.Equal(t, start, c.CurrentIndex(), "next then prev from %d", start)

		require.NoError(t, c.Prev())
		require.NoError(t, c.Next())
		assert.Equal(t, start, c.CurrentIndex(), "prev then next from %d", start)
	}
}

func TestPrev_WrapsAround(t *testing.T) {
	// 3 radar frames, 5 satellite frames: max = 3; prev from 0 lands on 2.
	c, _ := newReadyController(t, 3, 5)

	require.NoError(t, c.Prev())
	assert.Equal(t, 2, c.CurrentIndex())
}

func TestSingleFrame_StepsAreIdentity(t *testing.T) {
	c, _ := newReadyController(t, 1, 1)

	require.NoError(t, c.Next())
	assert.Equal(t, 0, c.CurrentIndex())
	require.NoError(t, c.Prev())
	assert.Equal(t, 0, c.CurrentIndex())
}

func TestShowFrame_PanicsOutOfRange(t *testing.T) {
	c, _ := newReadyController(t, 3, 3)

	assert.Panics(t, func() { _ = c.ShowFrame(3) })
	assert.Panics(t, func() { _ = c.ShowFrame(-1) })
}

func TestShowFrame_ReusesCachedLayers(t *testing.T) {
	c, surf := newReadyController(t, 3, 3)

	require.NoError(t, c.Next()) // frame 1, creates 2 layers
	created := surf.attachCount()

	require.NoError(t, c.Prev()) // back to frame 0, cached
	assert.Equal(t, created, surf.attachCount(), "revisiting a frame must not create layers")

	urls := surf.attachedURLs()
	require.Len(t, urls, 2)
	for _, u := range urls {
		if !strings.Contains(u, "/v2/radar/0/") && !strings.Contains(u, "/v2/satellite/0/") {
			t.Errorf("expected frame 0 overlay, got %s", u)
		}
	}
}

func TestTogglePlay_AdvancesFrames(t *testing.T) {
	c, _ := newReadyController(t, 3, 3)

	c.TogglePlay()
	require.True(t, c.IsPlaying())

	assert.Eventually(t, func() bool {
		return c.CurrentIndex() != 0
	}, time.Second, 5*time.Millisecond, "ticker should advance the frame")

	c.TogglePlay()
	assert.False(t, c.IsPlaying())

	// No tick may fire after pausing.
	idx := c.CurrentIndex()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, idx, c.CurrentIndex())
}

func TestTogglePlay_DoubleToggleIsLatch(t *testing.T) {
	c, _ := newReadyController(t, 3, 3)

	c.TogglePlay()
	c.TogglePlay()

	assert.False(t, c.IsPlaying())
	assert.Equal(t, "ready", c.Status().State)
}

func TestClose_StopsPlayback(t *testing.T) {
	c, _ := newReadyController(t, 3, 3)

	c.TogglePlay()
	c.Close()
	assert.False(t, c.IsPlaying())
}

func TestSetOpacity_AppliesToAllCachedLayers(t *testing.T) {
	c, surf := newReadyController(t, 3, 3)

	// Visit two more frames so three radar layers are cached.
	require.NoError(t, c.Next())
	require.NoError(t, c.Next())

	c.SetOpacity(model.KindRadar, 0.25)

	surf.mu.Lock()
	defer surf.mu.Unlock()
	radarLayers := 0
	for id, url := range surf.urls {
		if strings.Contains(url, "/radar/") {
			radarLayers++
			assert.Equal(t, 0.25, surf.opacities[id], "cached radar layer %s", url)
		} else {
			assert.Equal(t, 0.4, surf.opacities[id], "satellite layers keep their opacity")
		}
	}
	assert.Equal(t, 3, radarLayers)
}

func TestSetScheme_RebuildsRadarOnly(t *testing.T) {
	c, surf := newReadyController(t, 3, 3)

	require.NoError(t, c.Next()) // cache layers for frames 0 and 1
	require.NoError(t, c.Prev())

	var satID overlay.LayerID
	surf.mu.Lock()
	for id, url := range surf.urls {
		if strings.Contains(url, "/satellite/") && surf.attached[id] {
			satID = id
		}
	}
	surf.mu.Unlock()

	require.NoError(t, c.SetScheme(tiles.SchemeTitan))

	// The reattached satellite layer is the pre-existing handle.
	assert.True(t, surf.IsAttached(satID), "satellite layer reused, not rebuilt")

	// The visible radar layer was rebuilt with the new scheme ID.
	var attachedRadar []string
	for _, u := range surf.attachedURLs() {
		if strings.Contains(u, "/radar/") {
			attachedRadar = append(attachedRadar, u)
		}
	}
	require.Len(t, attachedRadar, 1)
	assert.Contains(t, attachedRadar[0], fmt.Sprintf("/%d/", int(tiles.SchemeTitan)))

	// Every radar layer created after the change encodes the new scheme.
	require.NoError(t, c.Next())
	require.NoError(t, c.Next())
	for _, u := range surf.attachedURLs() {
		if strings.Contains(u, "/radar/") {
			assert.Contains(t, u, fmt.Sprintf("/%d/", int(tiles.SchemeTitan)))
		}
	}
}

func TestSetCatalog_SecondLoadIgnored(t *testing.T) {
	c, _ := newReadyController(t, 3, 3)

	require.NoError(t, c.SetCatalog(testCatalog(9, 9)))
	assert.Equal(t, 3, c.FrameCount())
}

func TestStatus_Snapshot(t *testing.T) {
	c, _ := newReadyController(t, 3, 5)

	st := c.Status()
	assert.Equal(t, "universal_blue", st.Scheme)
	assert.Equal(t, 0.8, st.RadarOpacity)
	assert.Equal(t, 0.4, st.CloudOpacity)
	assert.False(t, st.Playing)
}
