package simul

import (
	"fmt"

	"github.com/samber/lo"
)

// DE status labels attached to each gene row.
const (
	LabelUp = "up"
	LabelDn = "dn"
	LabelNS = "ns"
)

// CountTable is one synthetic count matrix with its ground-truth
// annotation. Rows follow generation order: up-regulated DE genes,
// then down-regulated, then non-DE.
type CountTable struct {
	// GeneIDs are 1-based integer identifiers.
	GeneIDs []int
	// Symbols are synthetic gene symbols (LOC<id>).
	Symbols []string
	// Labels holds the DE status per gene: "up", "dn" or "ns".
	Labels []string
	// SampleNames are column labels, TRT-1..n then CTRL-1..n.
	SampleNames []string
	// Counts is gene-major: Counts[g][s] is the count of gene g in sample s.
	Counts [][]int64
}

// NewCountTable builds an annotated table around a sampled count matrix.
// counts must be ngenes rows of 2*nsample columns; the first nsample
// columns are the treatment group.
func NewCountTable(counts [][]int64, nsample, upCount, deCount int) *CountTable {
	ngenes := len(counts)
	t := &CountTable{
		GeneIDs:     make([]int, ngenes),
		Symbols:     make([]string, ngenes),
		Labels:      make([]string, ngenes),
		SampleNames: SampleNames(nsample),
		Counts:      counts,
	}
	for g := 0; g < ngenes; g++ {
		t.GeneIDs[g] = g + 1
		t.Symbols[g] = fmt.Sprintf("LOC%d", g+1)
		switch {
		case g < upCount:
			t.Labels[g] = LabelUp
		case g < deCount:
			t.Labels[g] = LabelDn
		default:
			t.Labels[g] = LabelNS
		}
	}
	return t
}

// SampleNames returns the column labels TRT-1..n, CTRL-1..n.
func SampleNames(nsample int) []string {
	trt := lo.RepeatBy(nsample, func(i int) string { return fmt.Sprintf("TRT-%d", i+1) })
	ctrl := lo.RepeatBy(nsample, func(i int) string { return fmt.Sprintf("CTRL-%d", i+1) })
	return append(trt, ctrl...)
}

// NGenes returns the number of gene rows.
func (t *CountTable) NGenes() int { return len(t.GeneIDs) }

// NSamples returns the total number of sample columns across both groups.
func (t *CountTable) NSamples() int { return len(t.SampleNames) }

// TrueDE returns the ground-truth DE indicator per gene.
func (t *CountTable) TrueDE() []bool {
	return lo.Map(t.Labels, func(label string, _ int) bool { return label != LabelNS })
}

// LabelCounts returns the number of up, dn and ns rows.
func (t *CountTable) LabelCounts() (up, dn, ns int) {
	for _, label := range t.Labels {
		switch label {
		case LabelUp:
			up++
		case LabelDn:
			dn++
		default:
			ns++
		}
	}
	return up, dn, ns
}
