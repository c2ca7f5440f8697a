// Package spin implements the reward wheel and the feedback gate that must
// be passed before a drawn prize is credited.
package spin

import "math/rand/v2"

// DefaultSegments are the wheel's eight equally likely slots.
var DefaultSegments = []int{10, 20, 30, 40, 10, 20, 30, 40}

type Wheel struct {
	segments []int
	intn     func(n int) int
}

// NewWheel creates a wheel over segments. intn picks a slot in [0, n); nil
// uses math/rand/v2.
func NewWheel(segments []int, intn func(n int) int) *Wheel {
	if len(segments) == 0 {
		segments = DefaultSegments
	}
	if intn == nil {
		intn = rand.IntN
	}
	return &Wheel{segments: segments, intn: intn}
}

// Draw picks a slot uniformly and returns its index and prize.
func (w *Wheel) Draw() (slot, prize int) {
	slot = w.intn(len(w.segments))
	return slot, w.segments[slot]
}

func (w *Wheel) Segments() []int {
	return append([]int(nil), w.segments...)
}
