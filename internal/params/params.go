// Package params loads the precomputed empirical mean/dispersion
// reference tables that seed the synthetic data generator.
package params

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"debench/domain/simul"
	"debench/internal/errors"
)

// File names of the two reference tables inside the parameter directory.
const (
	KIRCFile     = "k_params.csv"
	BottomlyFile = "b_params.csv"
)

// DatasetParams holds the six empirical series estimated from one
// reference dataset: pooled (total) and per-condition mean/dispersion.
// Condition 1 is the control group (k_normal / b_D), condition 2 the
// treatment group (k_cancer / b_C).
type DatasetParams struct {
	TotalMean []float64
	TotalDisp []float64
	Cond1Mean []float64
	Cond1Disp []float64
	Cond2Mean []float64
	Cond2Disp []float64
}

// Tables holds the reference parameters for both base datasets.
type Tables struct {
	KIRC     DatasetParams
	Bottomly DatasetParams
}

// MeanSource returns the dataset parameters supplying the primary mean
// structure for a simulated dataset.
func (t *Tables) MeanSource(d simul.Dataset) *DatasetParams {
	if d.MeansFromKIRC() {
		return &t.KIRC
	}
	return &t.Bottomly
}

// DispSource returns the dataset parameters supplying the dispersion
// structure (and, for hybrid datasets, the secondary means used for
// dispersion matching).
func (t *Tables) DispSource(d simul.Dataset) *DatasetParams {
	if d.DispersionFromKIRC() {
		return &t.KIRC
	}
	return &t.Bottomly
}

var (
	loadOnce   sync.Once
	loadedTabs *Tables
	loadedErr  error
)

// Load reads the reference tables from dir, caching the result for the
// process lifetime. Subsequent calls return the cached tables regardless
// of dir. The tables are read-only after initialization and safe for
// concurrent readers.
func Load(dir string) (*Tables, error) {
	loadOnce.Do(func() {
		loadedTabs, loadedErr = ReadTables(dir)
	})
	return loadedTabs, loadedErr
}

// ReadTables reads both reference tables without touching the process cache.
func ReadTables(dir string) (*Tables, error) {
	k, err := readParamsFile(filepath.Join(dir, KIRCFile), "k_total", "k_normal", "k_cancer")
	if err != nil {
		return nil, errors.Wrap(err, "loading KIRC reference parameters")
	}
	b, err := readParamsFile(filepath.Join(dir, BottomlyFile), "b_total", "b_D", "b_C")
	if err != nil {
		return nil, errors.Wrap(err, "loading Bottomly reference parameters")
	}
	return &Tables{KIRC: *k, Bottomly: *b}, nil
}

// readParamsFile parses one CSV, expecting <scope>_mean / <scope>_disp
// column pairs for the total, condition-1 and condition-2 scopes. The
// first column is a row index and is ignored. Condition series may be
// shorter than the total series; trailing empty cells are dropped.
func readParamsFile(path, totalScope, cond1Scope, cond2Scope string) (*DatasetParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.DataUnavailablef("reference table %s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.DataUnavailablef("reference table %s: %v", path, err)
	}
	if len(rows) < 2 {
		return nil, errors.DataUnavailablef("reference table %s: no data rows", path)
	}

	header := rows[0]
	series := make(map[string][]float64, len(header))
	for col := 1; col < len(header); col++ {
		name := header[col]
		var values []float64
		for i := 1; i < len(rows); i++ {
			if col >= len(rows[i]) || rows[i][col] == "" {
				continue
			}
			v, err := strconv.ParseFloat(rows[i][col], 64)
			if err != nil {
				return nil, errors.DataUnavailablef(
					"reference table %s: non-numeric value %q in column %s row %d", path, rows[i][col], name, i)
			}
			values = append(values, v)
		}
		series[name] = values
	}

	p := &DatasetParams{}
	for _, pair := range []struct {
		scope      string
		mean, disp *[]float64
	}{
		{totalScope, &p.TotalMean, &p.TotalDisp},
		{cond1Scope, &p.Cond1Mean, &p.Cond1Disp},
		{cond2Scope, &p.Cond2Mean, &p.Cond2Disp},
	} {
		mean, ok := series[pair.scope+"_mean"]
		if !ok {
			return nil, errors.DataUnavailablef("reference table %s: missing column %s_mean", path, pair.scope)
		}
		disp, ok := series[pair.scope+"_disp"]
		if !ok {
			return nil, errors.DataUnavailablef("reference table %s: missing column %s_disp", path, pair.scope)
		}
		if len(mean) != len(disp) {
			return nil, errors.DataUnavailable(fmt.Sprintf(
				"reference table %s: scope %s has %d means but %d dispersions", path, pair.scope, len(mean), len(disp)))
		}
		if len(mean) == 0 {
			return nil, errors.DataUnavailablef("reference table %s: scope %s is empty", path, pair.scope)
		}
		*pair.mean = mean
		*pair.disp = disp
	}
	return p, nil
}
