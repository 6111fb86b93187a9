package monitor

import (
	"sync"

	"github.com/resteretter/mailcow-monitor/pkg/model"
)

// DefaultRetention keeps 24h of points at the default 30s cadence.
const DefaultRetention = 2880

// History is a bounded FIFO of trend points. The poll cycle is the only
// writer; query handlers read concurrently.
type History struct {
	mu     sync.RWMutex
	cap    int
	points []model.HistoricalPoint
}

// NewHistory creates a buffer retaining at most capacity points.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultRetention
	}
	return &History{cap: capacity}
}

// Append adds a point at the tail, evicting from the head once the retention
// cap is exceeded.
func (h *History) Append(p model.HistoricalPoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.points = append(h.points, p)
	if len(h.points) > h.cap {
		h.points = h.points[len(h.points)-h.cap:]
	}
}

// Recent returns the last limit points in insertion order. A limit that is
// zero, negative, or larger than the buffer returns the whole buffer.
func (h *History) Recent(limit int) []model.HistoricalPoint {
	h.mu.RLock()
	defer h.mu.RUnlock()
	start := 0
	if limit > 0 && limit < len(h.points) {
		start = len(h.points) - limit
	}
	out := make([]model.HistoricalPoint, len(h.points)-start)
	copy(out, h.points[start:])
	return out
}

// Len reports the current number of retained points.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.points)
}
