// Package testkit provides in-process stand-ins for external
// collaborators, used by tests and the built-in demo sweep.
package testkit

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"debench/adapters/countfile"
	"debench/domain/simul"
	"debench/internal/errors"
)

// OracleRunner is a MethodRunner that scores genes from the ground
// truth embedded in the count file instead of analyzing the counts.
// With FlipRate 0 it separates DE from non-DE genes perfectly; raising
// FlipRate mislabels that fraction of genes, degrading every metric in
// a controlled way.
type OracleRunner struct {
	FlipRate float64
	Seed     uint64
}

// Run reads the count file and writes `<countPath>.<method>.csv` with
// the truth column and a padj score column.
func (o OracleRunner) Run(_ context.Context, method, countPath string) (string, error) {
	table, err := countfile.Read(countPath)
	if err != nil {
		return "", err
	}
	outPath := fmt.Sprintf("%s.%s.csv", countPath, method)
	f, err := os.Create(outPath)
	if err != nil {
		return "", errors.Wrapf(err, "creating method output %s", outPath)
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(o.Seed))
	sig := distuv.Uniform{Min: 0.0001, Max: 0.01, Src: rng}
	bland := distuv.Uniform{Min: 0.2, Max: 1, Src: rng}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Gene_ID", "Description", "padj"}); err != nil {
		return "", errors.Wrapf(err, "writing method output %s", outPath)
	}
	for g, label := range table.Labels {
		de := label != simul.LabelNS
		if rng.Float64() < o.FlipRate {
			de = !de
		}
		score := bland.Rand()
		if de {
			score = sig.Rand()
		}
		row := []string{
			strconv.Itoa(table.GeneIDs[g]),
			label,
			strconv.FormatFloat(score, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return "", errors.Wrapf(err, "writing method output %s", outPath)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrapf(err, "writing method output %s", outPath)
	}
	return outPath, f.Close()
}
