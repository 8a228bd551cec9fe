package tiles

import "sort"

// BaseStyle describes one entry of the base-layer style table. The base
// layer is independent of the frame animation and is never cached.
type BaseStyle struct {
	URLTemplate string `json:"url_template"`
	Attribution string `json:"attribution"`
}

var baseStyles = map[string]BaseStyle{
	"osm": {
		URLTemplate: "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors",
	},
	"dark": {
		URLTemplate: "https://basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors, © CARTO",
	},
	"light": {
		URLTemplate: "https://basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors, © CARTO",
	},
	"topo": {
		URLTemplate: "https://tile.opentopomap.org/{z}/{x}/{y}.png",
		Attribution: "© OpenStreetMap contributors, SRTM | © OpenTopoMap",
	},
}

// LookupBaseStyle returns the style for a key.
func LookupBaseStyle(key string) (BaseStyle, bool) {
	s, ok := baseStyles[key]
	return s, ok
}

// BaseStyleKeys returns the known style keys, sorted.
func BaseStyleKeys() []string {
	keys := make([]string, 0, len(baseStyles))
	for k := range baseStyles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
