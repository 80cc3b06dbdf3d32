// Package bins keeps the per-second pulse history and derives counts per
// minute from it.
package bins

// Capacity is the number of one-second bins kept, one minute of history.
const Capacity = 60

// Bins is a fixed-capacity circular buffer of per-second pulse counts.
// Once full, every Add overwrites the oldest bin.
//
// Bins is owned by the main loop and is not safe for concurrent use.
type Bins struct {
	bins  [Capacity]uint32
	pos   int // next write position
	count int // valid bins, saturates at Capacity
}

// Add stores the pulse count of the most recently completed second.
func (b *Bins) Add(pulses uint32) {
	b.bins[b.pos] = pulses
	b.pos++
	if b.pos == Capacity {
		b.pos = 0
	}
	if b.count < Capacity {
		b.count++
	}
}

// Len returns the number of valid bins.
func (b *Bins) Len() int {
	return b.count
}

// Full reports whether a whole minute of history is available.
func (b *Bins) Full() bool {
	return b.count == Capacity
}

// Sum returns the total pulses over all valid bins.
func (b *Bins) Sum() uint32 {
	var sum uint32
	for i := 0; i < b.count; i++ {
		sum += b.bins[i]
	}
	return sum
}

// CPM returns the counts-per-minute estimate.
//
// With fewer than 60 bins the sum is extrapolated to a minute by the integer
// factor 60/len, so the first minute after start is a coarse, noisy estimate
// that converges to the plain trailing 60-second sum once the buffer is full.
func (b *Bins) CPM() uint32 {
	n := b.count
	if n == 0 {
		return 0
	}
	return b.Sum() * uint32(Capacity/n)
}

// Values returns a copy of the valid bins ordered oldest to newest.
func (b *Bins) Values() []uint32 {
	out := make([]uint32, 0, b.count)
	start := 0
	if b.count == Capacity {
		start = b.pos
	}
	for i := 0; i < b.count; i++ {
		out = append(out, b.bins[(start+i)%Capacity])
	}
	return out
}

// Last returns the most recently added bin, or 0 when empty.
func (b *Bins) Last() uint32 {
	if b.count == 0 {
		return 0
	}
	return b.bins[(b.pos+Capacity-1)%Capacity]
}
