package tiles

import "fmt"

// ColorScheme selects the server-side rendering palette for radar tiles.
// The integer value is the provider's palette ID.
type ColorScheme int

const (
	SchemeRaw ColorScheme = iota
	SchemeOriginal
	SchemeUniversalBlue
	SchemeTitan
	SchemeWeatherChannel
	SchemeMeteored
	SchemeNexrad
	SchemeRainbow
	SchemeDarkSky
)

var schemeNames = map[ColorScheme]string{
	SchemeRaw:            "raw",
	SchemeOriginal:       "original",
	SchemeUniversalBlue:  "universal_blue",
	SchemeTitan:          "titan",
	SchemeWeatherChannel: "weatherchannel",
	SchemeMeteored:       "meteored",
	SchemeNexrad:         "nexrad",
	SchemeRainbow:        "rainbow",
	SchemeDarkSky:        "darksky",
}

var schemesByName = func() map[string]ColorScheme {
	m := make(map[string]ColorScheme, len(schemeNames))
	for s, name := range schemeNames {
		m[name] = s
	}
	return m
}()

// String returns the scheme's key name.
func (s ColorScheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scheme(%d)", int(s))
}

// ParseScheme resolves a scheme key name.
func ParseScheme(name string) (ColorScheme, error) {
	if s, ok := schemesByName[name]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("unknown color scheme %q", name)
}

// SchemeNames returns all known scheme keys in palette-ID order.
func SchemeNames() []string {
	out := make([]string, len(schemeNames))
	for s, name := range schemeNames {
		out[int(s)] = name
	}
	return out
}
