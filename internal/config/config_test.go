package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debench/domain/simul"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.Paths.ParamsDir)
	assert.Equal(t, "./cache", cfg.Paths.CacheDir)
	assert.Equal(t, "./out", cfg.Paths.OutputDir)

	assert.Equal(t, []string{"fc", "nc", "rp", "cp", "deseq2"}, cfg.Sweep.Methods)
	assert.Equal(t, simul.DefaultNRep, cfg.Sweep.NRep)
	assert.Equal(t, simul.DefaultSeed, cfg.Sweep.Seed)
	assert.Equal(t, 4, cfg.Sweep.Workers)
	assert.Equal(t, 0.1, cfg.Sweep.Threshold)
	assert.Equal(t, simul.MetricKinds, cfg.Sweep.Metrics)

	assert.Equal(t, simul.Datasets, cfg.Conditions.Datasets)
	assert.Equal(t, simul.DefaultPDE, cfg.Conditions.PDE)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DEBENCH_PARAMS_DIR", "/srv/params")
	t.Setenv("DEBENCH_METHODS", "deseq2, edger")
	t.Setenv("DEBENCH_METRICS", "auc,fdr")
	t.Setenv("DEBENCH_NREP", "5")
	t.Setenv("DEBENCH_SEED", "12345")
	t.Setenv("DEBENCH_THRESHOLD", "0.05")
	t.Setenv("DEBENCH_DATASETS", "KIRC")
	t.Setenv("DEBENCH_DISP_MODES", "same")
	t.Setenv("DEBENCH_OUTLIER_MODES", "D,OS")
	t.Setenv("DEBENCH_FRAC_UP", "0.5")
	t.Setenv("DEBENCH_PDE", "5,10")
	t.Setenv("DEBENCH_NSAMPLES", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/params", cfg.Paths.ParamsDir)
	assert.Equal(t, []string{"deseq2", "edger"}, cfg.Sweep.Methods)
	assert.Equal(t, []simul.MetricKind{simul.MetricAUC, simul.MetricFDR}, cfg.Sweep.Metrics)
	assert.Equal(t, 5, cfg.Sweep.NRep)
	assert.Equal(t, int64(12345), cfg.Sweep.Seed)
	assert.Equal(t, 0.05, cfg.Sweep.Threshold)

	assert.Equal(t, []simul.Dataset{simul.DatasetKIRC}, cfg.Conditions.Datasets)
	assert.Equal(t, []simul.DispMode{simul.DispSame}, cfg.Conditions.DispModes)
	assert.Equal(t, []simul.OutlierMode{simul.OutlierNone, simul.OutlierSample}, cfg.Conditions.OutlierModes)
	assert.Equal(t, []float64{0.5}, cfg.Conditions.FracUp)
	assert.Equal(t, []float64{5, 10}, cfg.Conditions.PDE)
	assert.Equal(t, []int{3}, cfg.Conditions.NSamples)

	// One condition set remains: KIRC/same/0.5/3 crossed with D,OS and 5,10.
	assert.Len(t, cfg.Conditions.Enumerate(), 4)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown metric", "DEBENCH_METRICS", "auc,lift"},
		{"unknown dataset", "DEBENCH_DATASETS", "GTEx"},
		{"unknown dispersion mode", "DEBENCH_DISP_MODES", "pooled"},
		{"unknown outlier mode", "DEBENCH_OUTLIER_MODES", "XX"},
		{"non-numeric frac_up", "DEBENCH_FRAC_UP", "half"},
		{"non-numeric nsamples", "DEBENCH_NSAMPLES", "three"},
		{"threshold out of range", "DEBENCH_THRESHOLD", "1.5"},
		{"empty methods", "DEBENCH_METHODS", " , "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestScoreOptions(t *testing.T) {
	c := SweepConfig{TruthCol: "Description", ScoreCol: "pvalue", Threshold: 0.05}
	opts := c.ScoreOptions()
	assert.Equal(t, "Description", opts.TruthColumn)
	assert.Equal(t, "pvalue", opts.ScoreColumn)
	assert.Equal(t, 0.05, opts.Threshold)
}
