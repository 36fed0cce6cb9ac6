package world

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// DefaultSeed labels the RNG stream used when a caller supplies none.
const DefaultSeed = "hollowmarch"

// DeterministicSeedValue folds a root seed and a stream label into a stable
// 64-bit seed so independent systems draw from decorrelated streams.
func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// NewDeterministicRNG builds a rand.Rand for the labeled stream.
func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeterministicSeedValue(rootSeed, label)))
}

// RandomFloat draws from rng, falling back to the default stream when nil.
func RandomFloat(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.New(rand.NewSource(DeterministicSeedValue(DefaultSeed, "world"))).Float64()
	}
	return rng.Float64()
}

// RandomAngle draws a uniform angle in [0, 2π).
func RandomAngle(rng *rand.Rand) float64 {
	return RandomFloat(rng) * 2 * math.Pi
}

// RandomDistance draws a uniform distance in [min, max].
func RandomDistance(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + RandomFloat(rng)*(max-min)
}
