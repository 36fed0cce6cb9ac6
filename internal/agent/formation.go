package agent

import (
	"math"

	"hollowmarch/sim/internal/world"
)

// RingSlots is the number of base compass positions around the leader.
// Indices beyond it wrap onto earlier angles.
const RingSlots = 8

// DefaultRingRadius is the spread radius of the idle formation circle.
const DefaultRingRadius = 80.0

// Ring assigns friendly agents stable angular slots around the leader so
// idle units spread out instead of stacking on one point.
type Ring struct {
	radius float64
	next   int
	free   []int
}

// NewRing builds a formation ring with the given spread radius.
func NewRing(radius float64) *Ring {
	if radius <= 0 {
		radius = DefaultRingRadius
	}
	return &Ring{radius: radius, free: make([]int, 0)}
}

// Assign reserves a slot: the lowest released index when one is free,
// otherwise a fresh monotonically increasing index. Two simultaneously-live
// agents never hold the same index.
func (r *Ring) Assign() int {
	if r == nil {
		return 0
	}
	if len(r.free) > 0 {
		best := 0
		for i := 1; i < len(r.free); i++ {
			if r.free[i] < r.free[best] {
				best = i
			}
		}
		slot := r.free[best]
		r.free[best] = r.free[len(r.free)-1]
		r.free = r.free[:len(r.free)-1]
		return slot
	}
	slot := r.next
	r.next++
	return slot
}

// Release returns a slot to the pool. Releasing a slot that was never
// assigned, or releasing twice, is a no-op.
func (r *Ring) Release(slot int) {
	if r == nil || slot < 0 || slot >= r.next {
		return
	}
	for _, existing := range r.free {
		if existing == slot {
			return
		}
	}
	r.free = append(r.free, slot)
}

// Offset maps a slot index to its displacement from the leader. The ring is a
// soft spacing aid: overlapping offsets from wrapped indices are acceptable.
func (r *Ring) Offset(slot int) world.Vec2 {
	if r == nil || slot < 0 {
		return world.Vec2{}
	}
	// Reduce before the trig so slot 8 lands on slot 0's offset exactly,
	// not within floating-point error of it.
	angle := float64(slot%RingSlots) * (2 * math.Pi / RingSlots)
	return world.Vec2{X: math.Cos(angle) * r.radius, Y: math.Sin(angle) * r.radius}
}
