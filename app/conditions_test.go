package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"debench/domain/simul"
)

func TestEnumerate(t *testing.T) {
	sets := ConditionSets{
		Datasets:     []simul.Dataset{simul.DatasetKIRC, simul.DatasetBottomly},
		DispModes:    []simul.DispMode{simul.DispSame},
		FracUp:       []float64{0.5, 0.9},
		NSamples:     []int{3},
		OutlierModes: []simul.OutlierMode{simul.OutlierNone, simul.OutlierRandom},
		PDE:          []float64{5, 10},
	}
	conditions := sets.Enumerate()
	assert.Len(t, conditions, 16)

	// Innermost dimension (PDE) varies first, outermost (dataset) last.
	assert.Equal(t, Condition{
		Dataset: simul.DatasetKIRC, DispMode: simul.DispSame,
		FracUp: 0.5, NSample: 3, OutlierMode: simul.OutlierNone, PDE: 5,
	}, conditions[0])
	assert.Equal(t, 10.0, conditions[1].PDE)
	assert.Equal(t, simul.OutlierRandom, conditions[2].OutlierMode)
	assert.Equal(t, simul.DatasetBottomly, conditions[8].Dataset)
}

func TestDefaultConditionSetsSize(t *testing.T) {
	// 4 datasets x 2 dispersion modes x 3 up fractions x 2 sample sizes
	// x 4 outlier modes x 5 DE percentages.
	assert.Len(t, DefaultConditionSets().Enumerate(), 960)
}

func TestConditionRequest(t *testing.T) {
	c := Condition{
		Dataset:     simul.DatasetKIRC,
		DispMode:    simul.DispDifferent,
		FracUp:      0.7,
		NSample:     10,
		OutlierMode: simul.OutlierSample,
		PDE:         0.27,
	}
	req := c.Request(99)

	assert.Equal(t, 10000, req.NGenes)
	assert.Equal(t, 27, req.NDE)
	assert.Equal(t, int64(99), req.Seed)
	assert.True(t, req.RandomSampling)
	assert.Equal(t, simul.DefaultROProp, req.ROProp)
	assert.NoError(t, req.Validate())

	assert.Equal(t, "KIRC/different/up0.7/s10/OS/pde0.27", c.String())
}
