// Package countfile reads and writes synthetic count matrices in the
// tab-separated format consumed by external DE-analysis tools.
package countfile

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"debench/domain/simul"
	"debench/internal/errors"
)

// Fixed leading columns of the count file format.
var headerPrefix = []string{"Gene_ID", "Gene_Symbol", "Description"}

// CachePath returns the deterministic cache location for a request's
// count matrix. Requests with equal keys share one file.
func CachePath(dir string, req simul.Request) string {
	return filepath.Join(dir, req.Key()+".tsv")
}

// Write stores the table as a TSV file at path.
func Write(path string, t *simul.CountTable) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating count file %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	header := append(append([]string{}, headerPrefix...), t.SampleNames...)
	if err := w.Write(header); err != nil {
		return errors.Wrapf(err, "writing count file %s", path)
	}
	row := make([]string, len(header))
	for g := 0; g < t.NGenes(); g++ {
		row[0] = strconv.Itoa(t.GeneIDs[g])
		row[1] = t.Symbols[g]
		row[2] = t.Labels[g]
		for s, v := range t.Counts[g] {
			row[3+s] = strconv.FormatInt(v, 10)
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "writing count file %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "writing count file %s", path)
	}
	return f.Close()
}

// Read loads a count table previously written by Write.
func Read(path string) (*simul.CountTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.DataUnavailablef("count file %s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.DataUnavailablef("count file %s: %v", path, err)
	}
	if len(rows) < 2 {
		return nil, errors.DataUnavailablef("count file %s: no data rows", path)
	}
	header := rows[0]
	if len(header) < len(headerPrefix)+2 {
		return nil, errors.DataUnavailablef("count file %s: too few columns", path)
	}
	for i, want := range headerPrefix {
		if header[i] != want {
			return nil, errors.DataUnavailablef("count file %s: column %d is %q, want %q", path, i, header[i], want)
		}
	}

	nsamples := len(header) - len(headerPrefix)
	t := &simul.CountTable{SampleNames: header[len(headerPrefix):]}
	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, errors.DataUnavailablef("count file %s: row %d has %d fields, want %d", path, i+1, len(row), len(header))
		}
		id, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, errors.DataUnavailablef("count file %s: bad gene id %q in row %d", path, row[0], i+1)
		}
		counts := make([]int64, nsamples)
		for s := 0; s < nsamples; s++ {
			v, err := strconv.ParseInt(row[len(headerPrefix)+s], 10, 64)
			if err != nil {
				return nil, errors.DataUnavailablef("count file %s: bad count %q in row %d", path, row[len(headerPrefix)+s], i+1)
			}
			counts[s] = v
		}
		t.GeneIDs = append(t.GeneIDs, id)
		t.Symbols = append(t.Symbols, row[1])
		t.Labels = append(t.Labels, row[2])
		t.Counts = append(t.Counts, counts)
	}
	return t, nil
}
