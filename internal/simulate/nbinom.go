package simulate

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"debench/internal/errors"
)

// sampleNB draws n observations from a negative binomial distribution
// in its mean/dispersion parameterization: number of successes 1/disp,
// success probability 1/(mean*disp+1). The draw is realized as a
// Gamma-Poisson mixture so the expected value is mean and the variance
// is mean + disp*mean^2.
//
// disp must be strictly positive; the parameterization divides by it.
func sampleNB(mean, disp float64, n int, rng *rand.Rand) ([]float64, error) {
	if disp <= 0 {
		return nil, errors.InvalidInputf("negative binomial dispersion must be positive, got %g", disp)
	}
	out := make([]float64, n)
	if mean <= 0 {
		// Success probability 1 leaves no room for failures.
		return out, nil
	}
	gamma := distuv.Gamma{Alpha: 1 / disp, Beta: 1 / (mean * disp), Src: rng}
	for i := range out {
		lambda := gamma.Rand()
		if lambda > 0 {
			out[i] = distuv.Poisson{Lambda: lambda, Src: rng}.Rand()
		}
	}
	return out, nil
}
