package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/chewxy/math32"
)

// Source emits decay events as a Poisson process.
type Source struct {
	mu   sync.Mutex
	rng  *rand.Rand
	cpm  float32
	wait float32 // seconds until the next event
}

// NewSource creates a source with the given mean rate.
func NewSource(cpm float32, rng *rand.Rand) *Source {
	s := &Source{rng: rng}
	s.SetCPM(cpm)
	return s
}

// SetCPM changes the mean rate. The next arrival is redrawn.
func (s *Source) SetCPM(cpm float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cpm = math32.Max(cpm, 0)
	s.wait = s.draw()
}

// CPM returns the mean rate.
func (s *Source) CPM() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cpm
}

// Pulses returns the number of events during the next dt.
func (s *Source) Pulses(dt time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cpm == 0 {
		return 0
	}
	left := float32(dt.Seconds())
	n := 0
	for s.wait <= left {
		left -= s.wait
		s.wait = s.draw()
		n++
	}
	s.wait -= left
	return n
}

// draw returns an exponentially distributed inter-arrival time.
func (s *Source) draw() float32 {
	if s.cpm == 0 {
		return math32.Inf(1)
	}
	return float32(s.rng.ExpFloat64()) * 60 / s.cpm
}
