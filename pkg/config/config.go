package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML marshalling ("700ms", "15s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Request RequestConfig `yaml:"request"`
	Catalog CatalogConfig `yaml:"catalog"`
	Map     MapConfig     `yaml:"map"`
	Player  PlayerConfig  `yaml:"player"`
}

// ServerConfig holds the local API server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// CatalogConfig holds the frame metadata source settings.
type CatalogConfig struct {
	URL string `yaml:"url"`
}

// MapConfig holds the initial map view settings.
type MapConfig struct {
	CenterLon float64 `yaml:"center_lon"`
	CenterLat float64 `yaml:"center_lat"`
	Zoom      int     `yaml:"zoom"`
	BaseStyle string  `yaml:"base_style"`
}

// PlayerConfig holds animation and overlay rendering settings.
type PlayerConfig struct {
	Interval     Duration `yaml:"interval"`
	RadarOpacity float64  `yaml:"radar_opacity"`
	CloudOpacity float64  `yaml:"cloud_opacity"`
	ColorScheme  string   `yaml:"color_scheme"`
	Smooth       bool     `yaml:"smooth"`
	SnowColors   bool     `yaml:"snow_colors"`
	ImageFormat  string   `yaml:"image_format"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: "127.0.0.1:8750",
		},
		Log: LogConfig{
			Path:  "logs/stormglass.log",
			Level: "INFO",
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(15 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(10 * time.Second),
			},
		},
		Catalog: CatalogConfig{
			URL: "https://api.rainviewer.com/public/weather-maps.json",
		},
		Map: MapConfig{
			CenterLon: 8.54,
			CenterLat: 47.37,
			Zoom:      6,
			BaseStyle: "dark",
		},
		Player: PlayerConfig{
			Interval:     Duration(700 * time.Millisecond),
			RadarOpacity: 0.8,
			CloudOpacity: 0.4,
			ColorScheme:  "universal_blue",
			Smooth:       true,
			SnowColors:   true,
			ImageFormat:  "png",
		},
	}
}

// Load reads the config file at path, creating it with defaults if absent.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// First run: persist the defaults so the user has something to edit.
	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) validate() error {
	if c.Player.RadarOpacity < 0 || c.Player.RadarOpacity > 1 {
		return fmt.Errorf("player.radar_opacity %v out of range [0,1]", c.Player.RadarOpacity)
	}
	if c.Player.CloudOpacity < 0 || c.Player.CloudOpacity > 1 {
		return fmt.Errorf("player.cloud_opacity %v out of range [0,1]", c.Player.CloudOpacity)
	}
	if time.Duration(c.Player.Interval) <= 0 {
		return fmt.Errorf("player.interval must be positive")
	}
	if c.Catalog.URL == "" {
		return fmt.Errorf("catalog.url must not be empty")
	}
	return nil
}
