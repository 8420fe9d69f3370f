package ni

import "github.com/iti/rngstream"

// RandSource draws the pseudo-random numbers of a network interface.
type RandSource interface {
	// RandInt returns an integer in [lo, hi].
	RandInt(lo, hi int) int
}

// StreamRand is a RandSource backed by an independent random number stream.
type StreamRand struct {
	stream *rngstream.RngStream
}

// NewStreamRand creates a random source. Sources created with different names
// draw from independent streams.
func NewStreamRand(name string) *StreamRand {
	return &StreamRand{stream: rngstream.New(name)}
}

// RandInt returns an integer in [lo, hi].
func (r *StreamRand) RandInt(lo, hi int) int {
	return r.stream.RandInt(lo, hi)
}

// RandU01 returns a float in (0, 1).
func (r *StreamRand) RandU01() float64 {
	return r.stream.RandU01()
}
