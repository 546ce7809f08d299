package simul

import (
	"debench/internal/errors"
)

// MetricsInput holds one DE method's output joined against ground
// truth, oriented so that larger scores mean "more likely DE".
type MetricsInput struct {
	Truth     []bool
	Scores    []float64
	Predicted []bool
}

// NewMetricsInput orients raw method scores and derives predicted
// labels. Raw scores are significance values (p/q-values) where smaller
// is more significant, so the stored score is 1-raw and a gene is
// predicted DE when raw < threshold.
func NewMetricsInput(truth []bool, raw []float64, threshold float64) (*MetricsInput, error) {
	if len(truth) != len(raw) {
		return nil, errors.InvalidInputf("truth and score lengths differ: %d vs %d", len(truth), len(raw))
	}
	in := &MetricsInput{
		Truth:     truth,
		Scores:    make([]float64, len(raw)),
		Predicted: make([]bool, len(raw)),
	}
	for i, s := range raw {
		in.Scores[i] = 1 - s
		in.Predicted[i] = s < threshold
	}
	return in, nil
}

// Len returns the number of genes in the input.
func (in *MetricsInput) Len() int { return len(in.Truth) }
