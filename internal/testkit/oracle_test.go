package testkit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debench/adapters/countfile"
	"debench/adapters/methodout"
	"debench/domain/simul"
)

func writeCounts(t *testing.T) string {
	t.Helper()
	counts := [][]int64{
		{40, 55, 10, 12},
		{8, 9, 30, 28},
		{15, 14, 16, 15},
		{100, 90, 95, 105},
	}
	path := filepath.Join(t.TempDir(), "counts.tsv")
	require.NoError(t, countfile.Write(path, simul.NewCountTable(counts, 2, 1, 2)))
	return path
}

func TestOracleRunnerPerfect(t *testing.T) {
	countPath := writeCounts(t)
	outPath, err := OracleRunner{Seed: 3}.Run(context.Background(), "oracle", countPath)
	require.NoError(t, err)
	assert.Equal(t, countPath+".oracle.csv", outPath)

	in, err := methodout.Read(outPath, methodout.Options{Threshold: 0.05})
	require.NoError(t, err)
	require.Equal(t, 4, in.Len())

	assert.Equal(t, []bool{true, true, false, false}, in.Truth)
	// With no label flipping, significance tracks the truth exactly.
	assert.Equal(t, in.Truth, in.Predicted)
}

func TestOracleRunnerFlipsEverything(t *testing.T) {
	countPath := writeCounts(t)
	outPath, err := OracleRunner{FlipRate: 1, Seed: 3}.Run(context.Background(), "oracle", countPath)
	require.NoError(t, err)

	in, err := methodout.Read(outPath, methodout.Options{Threshold: 0.05})
	require.NoError(t, err)
	for i, truth := range in.Truth {
		assert.Equal(t, !truth, in.Predicted[i], "gene %d", i)
	}
}

func TestOracleRunnerMissingInput(t *testing.T) {
	_, err := OracleRunner{}.Run(context.Background(), "oracle", filepath.Join(t.TempDir(), "nope.tsv"))
	assert.Error(t, err)
}
