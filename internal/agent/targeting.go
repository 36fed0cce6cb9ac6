package agent

import (
	"math"

	"hollowmarch/sim/internal/world"
)

// FindNearestHostile returns the ID of the closest living opposing-faction
// agent within radius of origin. The spatial index narrows the first pass;
// when it yields nothing the full roster is scanned with the same distance
// filter, so both paths agree on eligibility. Equal distances break toward
// the lowest agent ID.
func FindNearestHostile(env *Env, origin world.Vec2, radius float64, faction Faction, selfID string) (string, bool) {
	if env == nil || radius <= 0 {
		return "", false
	}
	opponent := faction.Opponent()
	radiusSq := radius * radius
	bestID := ""
	bestDistSq := math.MaxFloat64

	consider := func(other *Agent) {
		if other == nil || other.ID == selfID || other.Faction != opponent || !other.Alive() {
			return
		}
		distSq := world.DistSq(origin, other.Pos)
		if distSq > radiusSq {
			return
		}
		if distSq < bestDistSq-1e-6 || (math.Abs(distSq-bestDistSq) <= 1e-6 && other.ID < bestID) {
			bestDistSq = distSq
			bestID = other.ID
		}
	}

	if env.Index != nil && env.Lookup != nil {
		env.Index.QueryCircle(origin.X, origin.Y, radius, func(id string) bool {
			consider(env.Lookup(id))
			return true
		})
	}
	if bestID == "" {
		for _, other := range env.Agents {
			consider(other)
		}
	}
	if bestID == "" {
		return "", false
	}
	return bestID, true
}
