package app

import (
	"fmt"

	"debench/domain/simul"
)

// Condition is one point in the benchmark's configuration space: the
// merged, immutable parameter set a single dataset is generated under.
type Condition struct {
	Dataset     simul.Dataset
	DispMode    simul.DispMode
	FracUp      float64
	NSample     int
	OutlierMode simul.OutlierMode
	PDE         float64 // percent of genes that are DE
}

// String renders the condition as a stable, human-readable key.
func (c Condition) String() string {
	return fmt.Sprintf("%s/%s/up%g/s%d/%s/pde%g",
		c.Dataset, c.DispMode, c.FracUp, c.NSample, c.OutlierMode, c.PDE)
}

// Request materializes the condition into a simulation request for one
// replicate seed. Gene counts follow the dataset defaults and the DE
// count derives from the PDE percentage.
func (c Condition) Request(seed int64) simul.Request {
	ngenes := c.Dataset.DefaultNGenes()
	return simul.Request{
		Dataset:        c.Dataset,
		DispMode:       c.DispMode,
		NSample:        c.NSample,
		NGenes:         ngenes,
		NDE:            simul.NDEForPDE(ngenes, c.PDE),
		FracUp:         c.FracUp,
		OutlierMode:    c.OutlierMode,
		ROProp:         simul.DefaultROProp,
		RandomSampling: true,
		Seed:           seed,
	}
}

// ConditionSets enumerates the values swept over per dimension.
type ConditionSets struct {
	Datasets     []simul.Dataset
	DispModes    []simul.DispMode
	FracUp       []float64
	NSamples     []int
	OutlierModes []simul.OutlierMode
	PDE          []float64
}

// DefaultConditionSets mirrors the reference study's full sweep.
func DefaultConditionSets() ConditionSets {
	return ConditionSets{
		Datasets:     simul.Datasets,
		DispModes:    simul.DispModes,
		FracUp:       simul.DefaultFracUp,
		NSamples:     simul.DefaultNSample,
		OutlierModes: simul.OutlierModes,
		PDE:          simul.DefaultPDE,
	}
}

// Enumerate expands the sets into the explicit Cartesian product of
// conditions, in a fixed nesting order (dataset, dispersion, up
// fraction, sample size, outlier mode, DE fraction).
func (s ConditionSets) Enumerate() []Condition {
	var out []Condition
	for _, ds := range s.Datasets {
		for _, dm := range s.DispModes {
			for _, up := range s.FracUp {
				for _, n := range s.NSamples {
					for _, om := range s.OutlierModes {
						for _, pde := range s.PDE {
							out = append(out, Condition{
								Dataset:     ds,
								DispMode:    dm,
								FracUp:      up,
								NSample:     n,
								OutlierMode: om,
								PDE:         pde,
							})
						}
					}
				}
			}
		}
	}
	return out
}
