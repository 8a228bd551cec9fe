package logging

import (
	"strings"
	"sync"
)

// captureSize is the number of recent log lines kept for the UI overlay.
const captureSize = 50

// CaptureWriter is a thread-safe ring of the most recent log lines.
type CaptureWriter struct {
	mu    sync.RWMutex
	lines []string
	next  int
	full  bool
}

// Capture is the singleton instance wired into the default logger.
var Capture = NewCaptureWriter()

// NewCaptureWriter creates an empty capture ring.
func NewCaptureWriter() *CaptureWriter {
	return &CaptureWriter{lines: make([]string, captureSize)}
}

// Write implements io.Writer.
func (w *CaptureWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines[w.next] = strings.TrimRight(string(p), "\n")
	w.next = (w.next + 1) % len(w.lines)
	if w.next == 0 {
		w.full = true
	}
	return len(p), nil
}

// Last returns the most recent log line, or "" if nothing was written.
func (w *CaptureWriter) Last() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	idx := (w.next - 1 + len(w.lines)) % len(w.lines)
	return w.lines[idx]
}

// Recent returns up to n recent lines, oldest first.
func (w *CaptureWriter) Recent(n int) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []string
	start := 0
	count := w.next
	if w.full {
		start = w.next
		count = len(w.lines)
	}
	for i := 0; i < count; i++ {
		line := w.lines[(start+i)%len(w.lines)]
		if line != "" {
			out = append(out, line)
		}
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
