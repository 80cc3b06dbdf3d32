// Package trend keeps a time-windowed history of the appliance readings and
// draws it as a chart.
package trend

import (
	"sync"
	"time"
)

// Point is one sample of the appliance state.
type Point struct {
	Time        time.Duration // simulated time since start
	CPM         uint32
	Voltage     int32   // voltage measured by the regulator
	TubeVolts   float32 // true supply output
	DutyPercent uint32
}

// History is a FIFO of points, ordered oldest first. Points older than the
// window, measured from the newest point, are dropped.
type History struct {
	mu     sync.RWMutex
	points []Point
	window time.Duration

	callbacks []func(points []Point)
	cbMu      sync.RWMutex
}

// NewHistory creates a history keeping window worth of points.
func NewHistory(window time.Duration) *History {
	return &History{
		points: make([]Point, 0),
		window: window,
	}
}

// Add appends p. A point older than the newest one resets the history, which
// happens when the simulation restarts.
func (h *History) Add(p Point) {
	h.mu.Lock()
	if n := len(h.points); n > 0 && p.Time < h.points[n-1].Time {
		h.points = h.points[:0]
	}
	h.points = append(h.points, p)

	cutoff := p.Time - h.window
	drop := 0
	for drop < len(h.points) && h.points[drop].Time < cutoff {
		drop++
	}
	if drop > 0 {
		h.points = append(h.points[:0], h.points[drop:]...)
	}
	snapshot := h.snapshot()
	h.mu.Unlock()

	h.notify(snapshot)
}

// Points returns a copy of the history.
func (h *History) Points() []Point {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot()
}

// Len returns the number of points held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.points)
}

// Window returns the configured window.
func (h *History) Window() time.Duration {
	return h.window
}

// OnUpdate registers a callback invoked after every Add.
func (h *History) OnUpdate(callback func(points []Point)) {
	h.cbMu.Lock()
	defer h.cbMu.Unlock()
	h.callbacks = append(h.callbacks, callback)
}

func (h *History) snapshot() []Point {
	out := make([]Point, len(h.points))
	copy(out, h.points)
	return out
}

func (h *History) notify(points []Point) {
	h.cbMu.RLock()
	callbacks := make([]func([]Point), len(h.callbacks))
	copy(callbacks, h.callbacks)
	h.cbMu.RUnlock()

	for _, cb := range callbacks {
		cb(points)
	}
}
