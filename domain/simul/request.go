package simul

import (
	"fmt"
	"math"

	"debench/internal/errors"
)

// Request fully determines one synthetic count matrix. Identical
// requests reproduce bit-identical counts through the seeded generator.
type Request struct {
	Dataset     Dataset
	DispMode    DispMode
	NSample     int // samples per group
	NGenes      int
	NDE         int     // number of DE genes
	FracUp      float64 // fraction of DE genes that are up-regulated
	OutlierMode OutlierMode
	ROProp      float64 // random outlier percentage, outlier mode R only

	// RandomSampling scales each sample column's mean by Uniform(0.7, 1.3)
	// before sampling, introducing inter-sample variation within a group.
	RandomSampling bool
	// LargeSample additionally inflates ~3% of non-outlier cells 5-10x.
	// Only valid together with outlier mode D or OS.
	LargeSample bool
	// FixedFold replaces the exponential fold-change draw with fixed
	// factors (1.15, 1.30, /1.60 in equal thirds). KIRC only.
	FixedFold bool

	Seed int64
}

// NDEForPDE converts a percentage of DE genes into a gene count.
func NDEForPDE(ngenes int, pde float64) int {
	return int(math.Round(float64(ngenes) * pde / 100))
}

// UpCount returns the number of up-regulated DE genes the request produces.
func (r Request) UpCount() int {
	if r.NDE == 0 {
		return 0
	}
	if r.FixedFold {
		return int(math.Round(2 * float64(r.NDE) / 3))
	}
	return int(math.Round(float64(r.NDE) * r.FracUp))
}

// Validate checks the request before any sampling occurs.
func (r Request) Validate() error {
	if _, err := ParseDataset(string(r.Dataset)); err != nil {
		return errors.InvalidInput(err.Error())
	}
	if _, err := ParseDispMode(string(r.DispMode)); err != nil {
		return errors.InvalidInput(err.Error())
	}
	if _, err := ParseOutlierMode(string(r.OutlierMode)); err != nil {
		return errors.InvalidInput(err.Error())
	}
	if r.NSample <= 0 {
		return errors.InvalidInputf("nsample must be positive, got %d", r.NSample)
	}
	if r.NGenes <= 0 {
		return errors.InvalidInputf("ngenes must be positive, got %d", r.NGenes)
	}
	if r.NDE < 0 || r.NDE > r.NGenes {
		return errors.InvalidInputf("nde must be in [0, ngenes], got nde=%d ngenes=%d", r.NDE, r.NGenes)
	}
	if r.FracUp < 0 || r.FracUp > 1 {
		return errors.InvalidInputf("frac_up must be in [0, 1], got %g", r.FracUp)
	}
	if r.OutlierMode == OutlierRandom && (r.ROProp < 0 || r.ROProp > 100) {
		return errors.InvalidInputf("ro_prop must be in [0, 100], got %g", r.ROProp)
	}
	if r.FixedFold && r.Dataset != DatasetKIRC {
		return errors.InvalidInput("fixed-fold simulation must be based on the KIRC dataset")
	}
	if r.LargeSample && r.OutlierMode != OutlierNone && r.OutlierMode != OutlierSample {
		return errors.InvalidInputf("large-sample injection cannot combine with outlier mode %s", r.OutlierMode)
	}
	return nil
}

// Key returns a deterministic identifier for the request, used to name
// cached count matrices. Two requests with equal keys generate equal data.
func (r Request) Key() string {
	return fmt.Sprintf("%s_%s_up%g_s%d_%s_de%d_seed%d",
		r.Dataset, r.DispMode, r.FracUp, r.NSample, r.OutlierMode, r.NDE, r.Seed)
}
