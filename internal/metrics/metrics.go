// Package metrics converts a DE method's scored output and the
// simulated ground truth into standard classification metrics.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"debench/domain/simul"
	"debench/internal/errors"
)

// Compute evaluates one metric over an oriented metrics input.
func Compute(kind simul.MetricKind, in *simul.MetricsInput) (float64, error) {
	if in.Len() == 0 {
		return 0, errors.InvalidInput("metrics input is empty")
	}
	switch kind {
	case simul.MetricAUC:
		return auc(in), nil
	case simul.MetricTPR:
		return recall(in), nil
	case simul.MetricFDR:
		return 1 - precision(in), nil
	case simul.MetricCutoff:
		return bestCutoff(in), nil
	case simul.MetricF1:
		return f1Score(in), nil
	case simul.MetricKappa:
		return cohenKappa(in), nil
	}
	return 0, errors.InvalidInputf("unknown metric kind %q", kind)
}

// confusion tallies the 2x2 table of predicted vs true DE labels.
func confusion(in *simul.MetricsInput) (tp, fp, fn, tn float64) {
	for i, truth := range in.Truth {
		switch {
		case truth && in.Predicted[i]:
			tp++
		case !truth && in.Predicted[i]:
			fp++
		case truth && !in.Predicted[i]:
			fn++
		default:
			tn++
		}
	}
	return tp, fp, fn, tn
}

// recall is the true positive rate over the DE class.
func recall(in *simul.MetricsInput) float64 {
	tp, _, fn, _ := confusion(in)
	if tp+fn == 0 {
		return 0
	}
	return tp / (tp + fn)
}

// precision over the DE class; defined as 0 when the method makes no
// positive predictions.
func precision(in *simul.MetricsInput) float64 {
	tp, fp, _, _ := confusion(in)
	if tp+fp == 0 {
		return 0
	}
	return tp / (tp + fp)
}

func f1Score(in *simul.MetricsInput) float64 {
	p := precision(in)
	r := recall(in)
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// cohenKappa measures agreement between predicted and true labels
// beyond chance. Degenerate inputs where chance agreement is total
// yield 1 for perfect observed agreement and 0 otherwise.
func cohenKappa(in *simul.MetricsInput) float64 {
	tp, fp, fn, tn := confusion(in)
	n := tp + fp + fn + tn
	po := (tp + tn) / n
	pe := ((tp+fp)/n)*((tp+fn)/n) + ((fn+tn)/n)*((fp+tn)/n)
	if 1-pe == 0 {
		if po == 1 {
			return 1
		}
		return 0
	}
	return (po - pe) / (1 - pe)
}

// rocCurve computes the ROC curve of the oriented scores against truth.
func rocCurve(in *simul.MetricsInput) (tprs, fprs, thresholds []float64) {
	scores := append([]float64(nil), in.Scores...)
	classes := append([]bool(nil), in.Truth...)
	stat.SortWeightedLabeled(scores, classes, nil)
	return stat.ROC(nil, scores, classes, nil)
}

func auc(in *simul.MetricsInput) float64 {
	tprs, fprs, _ := rocCurve(in)
	if len(fprs) < 2 {
		return 0
	}
	// Trapezoidal integration needs the abscissa ascending; ROC points
	// are ordered by cutoff.
	if fprs[0] > fprs[len(fprs)-1] {
		reverse(fprs)
		reverse(tprs)
	}
	return integrate.Trapezoidal(fprs, tprs)
}

// bestCutoff finds the ROC threshold closest to the perfect-classifier
// corner (FPR 0, TPR 1) and maps it back to the raw significance scale:
// the oriented score was 1-raw, so the reported cutoff is 1-threshold.
func bestCutoff(in *simul.MetricsInput) float64 {
	tprs, fprs, thresholds := rocCurve(in)
	best := 0
	bestDist := math.Inf(1)
	for i := range thresholds {
		d := fprs[i]*fprs[i] + (1-tprs[i])*(1-tprs[i])
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return 1 - thresholds[best]
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
