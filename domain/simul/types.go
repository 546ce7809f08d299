package simul

import (
	"fmt"
	"strings"
)

// Dataset identifies which empirical reference seeds a simulation.
// The hybrid datasets combine the mean structure of one reference with
// the dispersion structure of the other.
type Dataset string

const (
	DatasetKIRC     Dataset = "KIRC"
	DatasetBottomly Dataset = "Bottomly"
	DatasetMKdB     Dataset = "mKdB" // KIRC means, Bottomly dispersions
	DatasetMBdK     Dataset = "mBdK" // Bottomly means, KIRC dispersions
)

// Datasets lists all supported datasets in canonical order.
var Datasets = []Dataset{DatasetKIRC, DatasetBottomly, DatasetMKdB, DatasetMBdK}

// ParseDataset parses a dataset name (case-sensitive, matching the reference tables).
func ParseDataset(s string) (Dataset, error) {
	for _, d := range Datasets {
		if s == string(d) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dataset %q (want KIRC, Bottomly, mKdB or mBdK)", s)
}

func (d Dataset) String() string { return string(d) }

// MeansFromKIRC reports whether the primary mean structure comes from KIRC.
func (d Dataset) MeansFromKIRC() bool {
	return d == DatasetKIRC || d == DatasetMKdB
}

// DispersionFromKIRC reports whether the dispersion structure comes from KIRC.
func (d Dataset) DispersionFromKIRC() bool {
	return d == DatasetKIRC || d == DatasetMBdK
}

// Hybrid reports whether the dataset mixes mean and dispersion references.
func (d Dataset) Hybrid() bool {
	return d == DatasetMKdB || d == DatasetMBdK
}

// DefaultNGenes returns the gene count used for this dataset in the
// reference study (10000 for KIRC, 5000 otherwise).
func (d Dataset) DefaultNGenes() int {
	if d == DatasetKIRC {
		return 10000
	}
	return 5000
}

// DispMode controls whether the two conditions share one dispersion vector.
type DispMode string

const (
	DispSame      DispMode = "same"
	DispDifferent DispMode = "different"
)

var DispModes = []DispMode{DispSame, DispDifferent}

func ParseDispMode(s string) (DispMode, error) {
	switch strings.ToLower(s) {
	case string(DispSame):
		return DispSame, nil
	case string(DispDifferent):
		return DispDifferent, nil
	}
	return "", fmt.Errorf("unknown dispersion mode %q (want same or different)", s)
}

func (m DispMode) String() string { return string(m) }

// OutlierMode names the strategy for injecting anomalous counts.
type OutlierMode string

const (
	// OutlierNone is the basic simulation without injected outliers.
	OutlierNone OutlierMode = "D"
	// OutlierRandom inflates a configured percentage of random cells.
	OutlierRandom OutlierMode = "R"
	// OutlierSample samples a third of each group at 5x dispersion.
	OutlierSample OutlierMode = "OS"
	// OutlierDispLowered samples everything at dispersion/22.5,
	// approximating a lower-noise platform.
	OutlierDispLowered OutlierMode = "DL"
)

var OutlierModes = []OutlierMode{OutlierNone, OutlierRandom, OutlierSample, OutlierDispLowered}

func ParseOutlierMode(s string) (OutlierMode, error) {
	switch strings.ToUpper(s) {
	case string(OutlierNone):
		return OutlierNone, nil
	case string(OutlierRandom):
		return OutlierRandom, nil
	case string(OutlierSample):
		return OutlierSample, nil
	case string(OutlierDispLowered):
		return OutlierDispLowered, nil
	}
	return "", fmt.Errorf("unknown outlier mode %q (want D, R, OS or DL)", s)
}

func (m OutlierMode) String() string { return string(m) }

// MetricKind names one of the classification metrics computed from a
// DE method's output against the simulated ground truth.
type MetricKind string

const (
	MetricAUC    MetricKind = "auc"
	MetricTPR    MetricKind = "tpr"
	MetricFDR    MetricKind = "fdr"
	MetricCutoff MetricKind = "cutoff"
	MetricF1     MetricKind = "f1score"
	MetricKappa  MetricKind = "kappa"
)

var MetricKinds = []MetricKind{MetricAUC, MetricTPR, MetricFDR, MetricCutoff, MetricF1, MetricKappa}

func ParseMetricKind(s string) (MetricKind, error) {
	for _, k := range MetricKinds {
		if strings.ToLower(s) == string(k) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q (want auc, tpr, fdr, cutoff, f1score or kappa)", s)
}

func (k MetricKind) String() string { return string(k) }

// Defaults recovered from the reference study configuration.
const (
	DefaultSeed    int64 = 368697996
	DefaultNRep          = 50
	DefaultROProp        = 5.0
)

// Default condition sets for the full benchmark sweep.
var (
	DefaultFracUp  = []float64{0.5, 0.7, 0.9}
	DefaultNSample = []int{3, 10}
	// DefaultPDE lists the percentages of DE genes swept over.
	DefaultPDE = []float64{0.27, 5, 10, 30, 60}
)
