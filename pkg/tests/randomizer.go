package tests

import (
	"math/rand/v2"
	"time"
)

// Randomizer produces pseudo-random test data. A fixed seed replays a run.
type Randomizer struct {
	rnd  *rand.Rand
	Seed uint64
}

// NewRandomizer seeds from the clock when seed is zero.
func NewRandomizer(seed uint64) Randomizer {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec // for tests
	}

	return Randomizer{
		rnd:  rand.New(rand.NewPCG(seed, seed>>1)), //nolint:gosec // for tests
		Seed: seed,
	}
}

// Between returns a value in [lo, hi).
func (r Randomizer) Between(lo, hi float64) float64 {
	return lo + r.rnd.Float64()*(hi-lo)
}

// Coordinates returns a point away from the poles and the antimeridian,
// which tests place explicitly.
func (r Randomizer) Coordinates() (lat, lon float64) {
	return r.Between(-89, 89), r.Between(-179, 179) //nolint:mnd // skip
}
