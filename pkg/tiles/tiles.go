// Package tiles builds tile-template URLs for radar and satellite overlay
// layers. Templates keep {z}/{x}/{y} placeholders; the render surface
// resolves them per tile.
package tiles

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"stormglass/pkg/model"
)

// Options is the mutable rendering configuration. It affects URL
// construction and overlay-cache validity; the player owns the single
// process-wide instance.
type Options struct {
	RadarOpacity float64
	CloudOpacity float64
	Scheme       ColorScheme
	Smooth       bool
	SnowColors   bool
	ImageFormat  string
}

// Opacity returns the configured opacity for a layer kind.
func (o Options) Opacity(kind model.LayerKind) float64 {
	if kind == model.KindRadar {
		return o.RadarOpacity
	}
	return o.CloudOpacity
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RadarURL builds the tile template for a radar frame:
// {host}{path}/256/{z}/{x}/{y}/{scheme}/{smooth}_{snow}.{format}
func RadarURL(host string, frame model.Frame, opts Options) string {
	return fmt.Sprintf("%s%s/256/{z}/{x}/{y}/%d/%d_%d.%s",
		host, frame.Path, int(opts.Scheme), boolFlag(opts.Smooth), boolFlag(opts.SnowColors), opts.ImageFormat)
}

// SatelliteURL builds the tile template for a satellite frame. The provider
// renders infrared tiles only with the raw palette and without smoothing or
// snow colors, so those parts are fixed; only the image format is inherited.
func SatelliteURL(host string, frame model.Frame, opts Options) string {
	return fmt.Sprintf("%s%s/256/{z}/{x}/{y}/0/0_0.%s", host, frame.Path, opts.ImageFormat)
}

// URL builds the tile template for the given layer kind.
func URL(kind model.LayerKind, host string, frame model.Frame, opts Options) string {
	if kind == model.KindRadar {
		return RadarURL(host, frame, opts)
	}
	return SatelliteURL(host, frame, opts)
}

// Resolve substitutes concrete tile coordinates into a template.
func Resolve(template string, tile maptile.Tile) string {
	r := strings.NewReplacer(
		"{z}", fmt.Sprintf("%d", tile.Z),
		"{x}", fmt.Sprintf("%d", tile.X),
		"{y}", fmt.Sprintf("%d", tile.Y),
	)
	return r.Replace(template)
}

// CenterTile returns the tile containing the given lon/lat at a zoom level.
func CenterTile(lon, lat float64, zoom int) maptile.Tile {
	return maptile.At(orb.Point{lon, lat}, maptile.Zoom(zoom))
}
