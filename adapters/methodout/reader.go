// Package methodout reads the CSV output of a DE-analysis method and
// joins it against the simulated ground truth.
package methodout

import (
	"encoding/csv"
	"os"
	"strconv"

	"debench/domain/simul"
	"debench/internal/errors"
)

// Default column names in a method's output file.
const (
	DefaultTruthColumn = "Description"
	DefaultScoreColumn = "padj"
)

// Options selects the columns and decision threshold used to build a
// metrics input from a method output file.
type Options struct {
	TruthColumn string
	ScoreColumn string
	Threshold   float64
}

// Read parses a method output CSV into an oriented metrics input. The
// file must contain the truth column (up/dn/ns labels) and a numeric
// score column (a significance value, smaller = more significant),
// one row per gene in table order.
func Read(path string, opts Options) (*simul.MetricsInput, error) {
	if opts.TruthColumn == "" {
		opts.TruthColumn = DefaultTruthColumn
	}
	if opts.ScoreColumn == "" {
		opts.ScoreColumn = DefaultScoreColumn
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.DataUnavailablef("method output %s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.DataUnavailablef("method output %s: %v", path, err)
	}
	if len(rows) < 2 {
		return nil, errors.DataUnavailablef("method output %s: no data rows", path)
	}

	truthCol, scoreCol := -1, -1
	for i, name := range rows[0] {
		switch name {
		case opts.TruthColumn:
			truthCol = i
		case opts.ScoreColumn:
			scoreCol = i
		}
	}
	if truthCol < 0 {
		return nil, errors.DataUnavailablef("method output %s: missing truth column %q", path, opts.TruthColumn)
	}
	if scoreCol < 0 {
		return nil, errors.DataUnavailablef("method output %s: missing score column %q", path, opts.ScoreColumn)
	}

	truth := make([]bool, 0, len(rows)-1)
	raw := make([]float64, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if truthCol >= len(row) || scoreCol >= len(row) {
			return nil, errors.DataUnavailablef("method output %s: short row %d", path, i+1)
		}
		v, err := strconv.ParseFloat(row[scoreCol], 64)
		if err != nil {
			return nil, errors.DataUnavailablef("method output %s: non-numeric score %q in row %d", path, row[scoreCol], i+1)
		}
		truth = append(truth, row[truthCol] != simul.LabelNS)
		raw = append(raw, v)
	}
	return simul.NewMetricsInput(truth, raw, opts.Threshold)
}
