package simulate

import (
	"math"

	"golang.org/x/exp/rand"
)

// dispersionWindow is the half-width of the mean window used when
// matching an empirical dispersion to a target mean.
const dispersionWindow = 20.0

// matchDispersion returns a plausible dispersion for a gene with the
// given mean. Every pool entry whose mean lies strictly within +-20 of
// the target is a candidate; one is picked uniformly at random from the
// shared stream. With no candidate in the window the dispersion of the
// single closest mean is returned, ties broken by first occurrence.
// The fallback path never draws from rng and never fails.
func matchDispersion(target float64, meanPool, dispPool []float64, rng *rand.Rand) float64 {
	var candidates []int
	for i, m := range meanPool {
		if m > target-dispersionWindow && m < target+dispersionWindow {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		best := 0
		bestDist := math.Abs(meanPool[0] - target)
		for i := 1; i < len(meanPool); i++ {
			if d := math.Abs(meanPool[i] - target); d < bestDist {
				best, bestDist = i, d
			}
		}
		return dispPool[best]
	}
	return dispPool[candidates[rng.Intn(len(candidates))]]
}
