// Package simulate generates synthetic gene-expression count matrices
// that reproduce the mean/dispersion structure of empirical reference
// datasets, with controlled DE signal and outlier injection.
package simulate

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"debench/domain/simul"
	"debench/internal/errors"
	"debench/internal/params"
)

const (
	// outlierDispFactor inflates the dispersion of the outlier third of
	// each group in OS mode.
	outlierDispFactor = 5.0
	// loweredDispFactor divides all dispersions in DL mode, approximating
	// the lower noise of the SEQC reference platform.
	loweredDispFactor = 22.5
	// largeSamplePercent of non-outlier cells get their counts inflated
	// when large-sample injection is on.
	largeSamplePercent = 3.0
)

// Generator produces synthetic count tables from the reference
// parameter tables. It is stateless apart from the read-only tables and
// safe for concurrent use; each Generate call runs on its own seeded
// stream.
type Generator struct {
	tables *params.Tables
}

// New creates a generator over loaded reference tables.
func New(tables *params.Tables) *Generator {
	return &Generator{tables: tables}
}

// Generate runs the full simulation pipeline for one request: base mean
// assignment, DE injection, dispersion assignment, count sampling and
// assembly. All stages consume a single stream seeded from req.Seed in
// a fixed order, so identical requests reproduce identical tables.
func (g *Generator) Generate(req simul.Request) (*simul.CountTable, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(uint64(req.Seed)))

	meanSrc := g.tables.MeanSource(req.Dataset)
	dispSrc := g.tables.DispSource(req.Dataset)

	// Base mean assignment. The primary means drive the counts; hybrid
	// datasets also draw secondary means from the dispersion dataset for
	// the dispersion matching below.
	idx1, mean1, err := drawWithoutReplacement(meanSrc.TotalMean, req.NGenes, rng)
	if err != nil {
		return nil, err
	}
	var subIdx []int
	var subMean1, subMean2 []float64
	if req.Dataset.Hybrid() {
		subIdx, subMean1, err = drawWithoutReplacement(dispSrc.TotalMean, req.NGenes, rng)
		if err != nil {
			return nil, err
		}
		subMean2 = append([]float64(nil), subMean1...)
	}
	mean2 := append([]float64(nil), mean1...)

	// DE injection perturbs a prefix of the condition-2 means.
	upCount := req.UpCount()
	if req.NDE > 0 {
		if req.FixedFold {
			injectFixedFoldDE(mean2, req.NDE)
		} else {
			injectExponentialDE(mean2, subMean2, req.NDE, upCount, req.NSample, rng)
		}
	}

	disp1, disp2 := g.assignDispersion(req, dispSrc, idx1, subIdx, mean1, mean2, subMean1, subMean2, rng)

	counts, err := g.sampleCounts(req, mean1, mean2, disp1, disp2, rng)
	if err != nil {
		return nil, err
	}

	return simul.NewCountTable(counts, req.NSample, upCount, req.NDE), nil
}

// drawWithoutReplacement samples n values from series without
// replacement, returning both the drawn values and their original
// positions in the series.
func drawWithoutReplacement(series []float64, n int, rng *rand.Rand) ([]int, []float64, error) {
	if n > len(series) {
		return nil, nil, errors.DataUnavailablef(
			"cannot draw %d genes from a reference series of %d entries", n, len(series))
	}
	perm := rng.Perm(len(series))
	idx := perm[:n]
	values := make([]float64, n)
	for i, p := range idx {
		values[i] = series[p]
	}
	return idx, values, nil
}

// injectFixedFoldDE applies fixed fold changes in equal thirds: the
// first two thirds up at 1.15x and 1.30x, the last third down at 1.60x.
func injectFixedFoldDE(mean2 []float64, nde int) {
	oneThird := int(math.Round(float64(nde) / 3))
	upCount := int(math.Round(2 * float64(nde) / 3))
	for i := 0; i < oneThird; i++ {
		mean2[i] *= 1.15
	}
	for i := oneThird; i < upCount; i++ {
		mean2[i] *= 1.3
	}
	for i := upCount; i < nde; i++ {
		mean2[i] /= 1.6
	}
}

// injectExponentialDE perturbs DE means by 1+Exponential(1) fold
// changes above a floor that shrinks with sample size (smaller groups
// need larger effects to stay detectable). Up-regulated genes multiply,
// down-regulated divide. Hybrid secondary means receive the identical
// factors at the same indices to preserve rank correlation.
func injectExponentialDE(mean2, subMean2 []float64, nde, upCount, nsample int, rng *rand.Rand) {
	var floor float64
	switch {
	case nsample <= 3:
		floor = 1.5
	case nsample <= 5:
		floor = 1.3
	default:
		floor = 1.2
	}
	expDist := distuv.Exponential{Rate: 1, Src: rng}
	upFactor := make([]float64, upCount)
	for i := range upFactor {
		upFactor[i] = expDist.Rand() + floor
	}
	dnFactor := make([]float64, nde-upCount)
	for i := range dnFactor {
		dnFactor[i] = expDist.Rand() + floor
	}
	for i := 0; i < upCount; i++ {
		mean2[i] *= upFactor[i]
	}
	for i := upCount; i < nde; i++ {
		mean2[i] /= dnFactor[i-upCount]
	}
	if subMean2 != nil {
		for i := 0; i < upCount; i++ {
			subMean2[i] *= upFactor[i]
		}
		for i := upCount; i < nde; i++ {
			subMean2[i] /= dnFactor[i-upCount]
		}
	}
}

// assignDispersion builds the per-condition dispersion vectors.
//
// In "different" mode each gene's dispersion is matched against the
// per-condition reference pools. Pure datasets match in gene order on
// the baseline means; hybrid datasets match the secondary means in
// sorted order and realign the results with the primary gene order via
// the inverse rank permutation, so the k-th smallest primary mean pairs
// with the dispersion of the k-th smallest secondary mean.
//
// In "same" mode both conditions share one vector taken from the total
// dispersion series at the drawn positions (permuted the same way for
// hybrid datasets); condition 2 gets a copy.
func (g *Generator) assignDispersion(
	req simul.Request,
	dispSrc *params.DatasetParams,
	idx1, subIdx []int,
	mean1, mean2, subMean1, subMean2 []float64,
	rng *rand.Rand,
) (disp1, disp2 []float64) {
	n := len(mean1)
	disp1 = make([]float64, n)
	disp2 = make([]float64, n)

	if req.DispMode == simul.DispDifferent {
		if !req.Dataset.Hybrid() {
			for i := 0; i < n; i++ {
				disp1[i] = matchDispersion(mean1[i], dispSrc.Cond1Mean, dispSrc.Cond1Disp, rng)
			}
			for i := 0; i < n; i++ {
				disp2[i] = matchDispersion(mean1[i], dispSrc.Cond2Mean, dispSrc.Cond2Disp, rng)
			}
			return disp1, disp2
		}
		order1 := rankPermutation(subMean1)
		sorted1 := make([]float64, n)
		for k, src := range order1 {
			sorted1[k] = matchDispersion(subMean1[src], dispSrc.Cond1Mean, dispSrc.Cond1Disp, rng)
		}
		ranks1 := invertPermutation(rankPermutation(mean1))
		for i := 0; i < n; i++ {
			disp1[i] = sorted1[ranks1[i]]
		}

		order2 := rankPermutation(subMean2)
		sorted2 := make([]float64, n)
		for k, src := range order2 {
			sorted2[k] = matchDispersion(subMean2[src], dispSrc.Cond2Mean, dispSrc.Cond2Disp, rng)
		}
		ranks2 := invertPermutation(rankPermutation(mean2))
		for i := 0; i < n; i++ {
			disp2[i] = sorted2[ranks2[i]]
		}
		return disp1, disp2
	}

	// Same dispersion for both conditions.
	if !req.Dataset.Hybrid() {
		for i, p := range idx1 {
			disp1[i] = dispSrc.TotalDisp[p]
		}
	} else {
		order1 := rankPermutation(subMean1)
		sorted := make([]float64, n)
		for k, src := range order1 {
			sorted[k] = dispSrc.TotalDisp[subIdx[src]]
		}
		ranks1 := invertPermutation(rankPermutation(mean1))
		for i := 0; i < n; i++ {
			disp1[i] = sorted[ranks1[i]]
		}
	}
	copy(disp2, disp1)
	return disp1, disp2
}

// sampleCounts draws the count matrix, branching on the outlier mode.
// Columns 0..nsample-1 hold the treatment group (condition 2),
// nsample..2*nsample-1 the control group (condition 1).
func (g *Generator) sampleCounts(
	req simul.Request,
	mean1, mean2, disp1, disp2 []float64,
	rng *rand.Rand,
) ([][]int64, error) {
	ngenes := req.NGenes
	nsample := req.NSample
	ncols := 2 * nsample

	counts := make([][]float64, ngenes)
	for i := range counts {
		counts[i] = make([]float64, ncols)
	}

	oneThird := int(math.Round(float64(nsample) / 3))
	fourThirds := nsample + oneThird

	switch {
	case req.OutlierMode == simul.OutlierSample || req.LargeSample:
		// One third of each group is an outlier sample drawn at inflated
		// dispersion; the rest are nominal.
		for i := 0; i < ngenes; i++ {
			if err := fillBlocks(counts[i], rng,
				block{mean2[i], outlierDispFactor * disp2[i], 0, oneThird},
				block{mean2[i], disp2[i], oneThird, nsample},
				block{mean1[i], outlierDispFactor * disp1[i], nsample, fourThirds},
				block{mean1[i], disp1[i], fourThirds, ncols},
			); err != nil {
				return nil, err
			}
		}
		if req.LargeSample {
			// Inflate ~3% of the cells belonging to non-outlier samples.
			// Cell indices run column-major: flat = col*ngenes + gene.
			eligible := func(flat int) bool {
				return (flat >= ngenes*oneThird && flat < ngenes*nsample) ||
					(flat >= ngenes*fourThirds && flat < ngenes*ncols)
			}
			inflateCells(counts, ngenes, ncols, largeSamplePercent, eligible, rng)
		}

	case req.OutlierMode == simul.OutlierDispLowered:
		for i := 0; i < ngenes; i++ {
			if err := fillBlocks(counts[i], rng,
				block{mean2[i], disp2[i] / loweredDispFactor, 0, nsample},
				block{mean1[i], disp1[i] / loweredDispFactor, nsample, ncols},
			); err != nil {
				return nil, err
			}
		}

	default: // OutlierNone and OutlierRandom base sampling
		scale1 := make([]float64, nsample)
		scale2 := make([]float64, nsample)
		for j := range scale1 {
			scale1[j], scale2[j] = 1, 1
		}
		if req.RandomSampling {
			u := distuv.Uniform{Min: 0.7, Max: 1.3, Src: rng}
			for j := range scale1 {
				scale1[j] = u.Rand()
			}
			for j := range scale2 {
				scale2[j] = u.Rand()
			}
		}
		for i := 0; i < ngenes; i++ {
			for j := 0; j < nsample; j++ {
				one, err := sampleNB(mean2[i]*scale1[j], disp2[i], 1, rng)
				if err != nil {
					return nil, err
				}
				counts[i][j] = one[0]
			}
			for j := 0; j < nsample; j++ {
				one, err := sampleNB(mean1[i]*scale2[j], disp1[i], 1, rng)
				if err != nil {
					return nil, err
				}
				counts[i][nsample+j] = one[0]
			}
		}
	}

	if req.OutlierMode == simul.OutlierRandom {
		inflateCells(counts, ngenes, ncols, req.ROProp, func(int) bool { return true }, rng)
	}

	out := make([][]int64, ngenes)
	for i := range counts {
		out[i] = make([]int64, ncols)
		for j, v := range counts[i] {
			out[i][j] = int64(v)
		}
	}
	return out, nil
}

// block describes one run of columns sampled at a common mean/dispersion.
type block struct {
	mean, disp float64
	from, to   int
}

func fillBlocks(row []float64, rng *rand.Rand, blocks ...block) error {
	for _, b := range blocks {
		if b.to <= b.from {
			continue
		}
		vals, err := sampleNB(b.mean, b.disp, b.to-b.from, rng)
		if err != nil {
			return err
		}
		copy(row[b.from:b.to], vals)
	}
	return nil
}

// inflateCells flags each cell with probability pct/100 (one uniform
// draw per cell, column-major order) and multiplies flagged cells that
// pass the eligibility filter by Uniform(5, 10), rounding to the
// nearest integer. The flag draws always cover the whole matrix so the
// stream position after this step is independent of the filter.
func inflateCells(counts [][]float64, ngenes, ncols int, pct float64, eligible func(flat int) bool, rng *rand.Rand) {
	flagDist := distuv.Uniform{Min: 0, Max: 100, Src: rng}
	var flagged []int
	for k := 0; k < ngenes*ncols; k++ {
		if flagDist.Rand() < pct && eligible(k) {
			flagged = append(flagged, k)
		}
	}
	factorDist := distuv.Uniform{Min: 5, Max: 10, Src: rng}
	for _, k := range flagged {
		col, gene := k/ngenes, k%ngenes
		counts[gene][col] = math.Round(counts[gene][col] * factorDist.Rand())
	}
}
