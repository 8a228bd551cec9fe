package tracker

import (
	"sync"
	"sync/atomic"
)

// Tracker tracks request statistics per provider (host).
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*ProviderStats
}

// ProviderStats holds metrics for a specific provider.
// Fields are accessed atomically.
type ProviderStats struct {
	Success  int64
	Failures int64
	Retries  int64
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*ProviderStats),
	}
}

// getStats returns the stats object for a provider, creating it if needed.
func (t *Tracker) getStats(provider string) *ProviderStats {
	t.mu.RLock()
	s, ok := t.stats[provider]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[provider]; ok {
		return s
	}
	s = &ProviderStats{}
	t.stats[provider] = s
	return s
}

// TrackSuccess increments the success counter.
func (t *Tracker) TrackSuccess(provider string) {
	atomic.AddInt64(&t.getStats(provider).Success, 1)
}

// TrackFailure increments the failure counter.
func (t *Tracker) TrackFailure(provider string) {
	atomic.AddInt64(&t.getStats(provider).Failures, 1)
}

// TrackRetry increments the retry counter.
func (t *Tracker) TrackRetry(provider string) {
	atomic.AddInt64(&t.getStats(provider).Retries, 1)
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]ProviderStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]ProviderStats, len(t.stats))
	for k, v := range t.stats {
		out[k] = ProviderStats{
			Success:  atomic.LoadInt64(&v.Success),
			Failures: atomic.LoadInt64(&v.Failures),
			Retries:  atomic.LoadInt64(&v.Retries),
		}
	}
	return out
}
