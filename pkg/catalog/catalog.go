// Package catalog fetches the frame metadata document that drives the
// animation: the ordered lists of available radar and satellite frames.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"stormglass/pkg/model"
)

// Fetcher is the subset of the request client the catalog needs.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// FetchError indicates the metadata request failed or returned invalid JSON.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("catalog fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// document mirrors the provider's weather-maps JSON. Every field is
// optional; missing sections degrade to empty frame lists.
type document struct {
	Host  string `json:"host"`
	Radar struct {
		Past    []model.Frame `json:"past"`
		Nowcast []model.Frame `json:"nowcast"`
	} `json:"radar"`
	Satellite struct {
		Infrared []model.Frame `json:"infrared"`
	} `json:"satellite"`
}

// Catalog holds the ordered frame lists obtained from the metadata source.
// It is populated once per fetch and never updated incrementally.
type Catalog struct {
	Host      string
	Radar     []model.Frame
	Satellite []model.Frame
}

// Fetch performs the one-shot metadata request and parses the result.
func Fetch(ctx context.Context, client Fetcher, url string) (*Catalog, error) {
	body, err := client.Get(ctx, url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("malformed metadata: %w", err)}
	}

	cat := &Catalog{
		Host:      doc.Host,
		Radar:     append(doc.Radar.Past, doc.Radar.Nowcast...),
		Satellite: doc.Satellite.Infrared,
	}

	slog.Info("catalog loaded",
		"host", cat.Host,
		"radar_frames", len(cat.Radar),
		"satellite_frames", len(cat.Satellite),
		"usable_frames", cat.FrameCount())
	return cat, nil
}

// FrameCount returns the number of indexes usable for animation. Radar and
// satellite sequences are driven by one shared index, so the range is
// truncated to the shorter sequence; trailing frames of the longer one are
// silently unused.
func (c *Catalog) FrameCount() int {
	n := len(c.Radar)
	if len(c.Satellite) < n {
		n = len(c.Satellite)
	}
	return n
}
