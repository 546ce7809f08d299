package simulate

import (
	"testing"

	"golang.org/x/exp/rand"

	"debench/domain/simul"
	apperrors "debench/internal/errors"
	"debench/internal/params"
)

// testDatasetParams builds a synthetic reference with n genes, means
// spread far enough apart that both the window and the fallback paths
// of the dispersion matcher get exercised.
func testDatasetParams(n int, scale float64) params.DatasetParams {
	mk := func(base, step, dispBase float64) (means, disps []float64) {
		means = make([]float64, n)
		disps = make([]float64, n)
		for i := 0; i < n; i++ {
			means[i] = base + step*float64(i)
			disps[i] = dispBase + 0.001*float64(i)
		}
		return means, disps
	}
	p := params.DatasetParams{}
	p.TotalMean, p.TotalDisp = mk(2*scale, 2.5*scale, 0.05)
	p.Cond1Mean, p.Cond1Disp = mk(1.5*scale, 2.4*scale, 0.08)
	p.Cond2Mean, p.Cond2Disp = mk(2.5*scale, 2.6*scale, 0.11)
	return p
}

func testTables() *params.Tables {
	return &params.Tables{
		KIRC:     testDatasetParams(400, 1),
		Bottomly: testDatasetParams(300, 1.3),
	}
}

func baseRequest() simul.Request {
	return simul.Request{
		Dataset:        simul.DatasetBottomly,
		DispMode:       simul.DispSame,
		NSample:        3,
		NGenes:         100,
		NDE:            10,
		FracUp:         0.5,
		OutlierMode:    simul.OutlierNone,
		ROProp:         simul.DefaultROProp,
		RandomSampling: true,
		Seed:           42,
	}
}

func tablesEqual(a, b *simul.CountTable) bool {
	if a.NGenes() != b.NGenes() || a.NSamples() != b.NSamples() {
		return false
	}
	for g := range a.Counts {
		if a.Labels[g] != b.Labels[g] {
			return false
		}
		for s := range a.Counts[g] {
			if a.Counts[g][s] != b.Counts[g][s] {
				return false
			}
		}
	}
	return true
}

// TestGenerateDeterministic is the end-to-end reproducibility scenario:
// an identical request generated twice yields identical tables.
func TestGenerateDeterministic(t *testing.T) {
	gen := New(testTables())
	req := baseRequest()

	first, err := gen.Generate(req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := gen.Generate(req)
	if err != nil {
		t.Fatal(err)
	}
	if first.NGenes() != 100 {
		t.Fatalf("table has %d rows, want 100", first.NGenes())
	}
	if !tablesEqual(first, second) {
		t.Fatal("identical requests generated different tables")
	}

	// A different seed must change the counts.
	req.Seed = 43
	third, err := gen.Generate(req)
	if err != nil {
		t.Fatal(err)
	}
	if tablesEqual(first, third) {
		t.Fatal("different seeds generated identical tables")
	}
}

func TestGenerateShapeInvariants(t *testing.T) {
	gen := New(testTables())
	cases := []struct {
		name   string
		mutate func(*simul.Request)
	}{
		{"default", func(r *simul.Request) {}},
		{"kirc different disp", func(r *simul.Request) {
			r.Dataset = simul.DatasetKIRC
			r.DispMode = simul.DispDifferent
		}},
		{"hybrid mKdB", func(r *simul.Request) {
			r.Dataset = simul.DatasetMKdB
			r.DispMode = simul.DispDifferent
		}},
		{"hybrid mBdK same disp", func(r *simul.Request) {
			r.Dataset = simul.DatasetMBdK
		}},
		{"outlier sample", func(r *simul.Request) { r.OutlierMode = simul.OutlierSample }},
		{"dispersion lowered", func(r *simul.Request) { r.OutlierMode = simul.OutlierDispLowered }},
		{"random outlier", func(r *simul.Request) { r.OutlierMode = simul.OutlierRandom }},
		{"large sample", func(r *simul.Request) {
			r.OutlierMode = simul.OutlierSample
			r.LargeSample = true
			r.NSample = 10
		}},
		{"no random sampling", func(r *simul.Request) { r.RandomSampling = false }},
		{"no DE genes", func(r *simul.Request) { r.NDE = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest()
			tc.mutate(&req)
			table, err := gen.Generate(req)
			if err != nil {
				t.Fatal(err)
			}
			if table.NGenes() != req.NGenes {
				t.Fatalf("rows = %d, want %d", table.NGenes(), req.NGenes)
			}
			if table.NSamples() != 2*req.NSample {
				t.Fatalf("sample columns = %d, want %d", table.NSamples(), 2*req.NSample)
			}
			for g, row := range table.Counts {
				if len(row) != 2*req.NSample {
					t.Fatalf("gene %d has %d columns, want %d", g, len(row), 2*req.NSample)
				}
				for s, v := range row {
					if v < 0 {
						t.Fatalf("negative count %d at gene %d sample %d", v, g, s)
					}
				}
			}
		})
	}
}

func TestGenerateDESplit(t *testing.T) {
	gen := New(testTables())
	req := baseRequest()
	req.NDE = 10
	req.FracUp = 0.7

	table, err := gen.Generate(req)
	if err != nil {
		t.Fatal(err)
	}
	up, dn, ns := table.LabelCounts()
	if up != 7 || dn != 3 || ns != 90 {
		t.Fatalf("label split = %d/%d/%d, want 7/3/90", up, dn, ns)
	}
	// Rows come in generation order: up first, then dn, then ns.
	for g, label := range table.Labels {
		switch {
		case g < 7 && label != simul.LabelUp,
			g >= 7 && g < 10 && label != simul.LabelDn,
			g >= 10 && label != simul.LabelNS:
			t.Fatalf("row %d labeled %q", g, label)
		}
	}
}

func TestGenerateFixedFoldSplit(t *testing.T) {
	gen := New(testTables())
	req := baseRequest()
	req.Dataset = simul.DatasetKIRC
	req.FixedFold = true
	req.NDE = 9

	table, err := gen.Generate(req)
	if err != nil {
		t.Fatal(err)
	}
	up, dn, _ := table.LabelCounts()
	if up != 6 || dn != 3 {
		t.Fatalf("fixed-fold split = %d up / %d dn, want 6/3", up, dn)
	}
}

func TestGenerateValidation(t *testing.T) {
	gen := New(testTables())
	cases := []struct {
		name   string
		mutate func(*simul.Request)
	}{
		{"nde exceeds ngenes", func(r *simul.Request) { r.NDE = r.NGenes + 1 }},
		{"non-positive nsample", func(r *simul.Request) { r.NSample = 0 }},
		{"unknown outlier mode", func(r *simul.Request) { r.OutlierMode = "XX" }},
		{"fixed fold off KIRC", func(r *simul.Request) { r.FixedFold = true }},
		{"large sample with DL", func(r *simul.Request) {
			r.OutlierMode = simul.OutlierDispLowered
			r.LargeSample = true
		}},
		{"large sample with R", func(r *simul.Request) {
			r.OutlierMode = simul.OutlierRandom
			r.LargeSample = true
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest()
			tc.mutate(&req)
			if _, err := gen.Generate(req); err == nil {
				t.Fatal("expected validation error")
			} else if apperrors.GetCode(err) != apperrors.CodeInvalidInput {
				t.Fatalf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeInvalidInput)
			}
		})
	}
}

// TestSampleCountsDispersionLowered reconstructs the DL branch sample
// by sample: every draw must come from the nominal dispersion divided
// by exactly 22.5, never from the 5x outlier-sample inflation.
func TestSampleCountsDispersionLowered(t *testing.T) {
	gen := &Generator{}
	req := baseRequest()
	req.OutlierMode = simul.OutlierDispLowered
	req.NGenes = 4
	mean1 := []float64{10, 50, 200, 700}
	mean2 := []float64{12, 45, 260, 650}
	disp1 := []float64{0.2, 0.3, 0.4, 0.5}
	disp2 := []float64{0.25, 0.35, 0.45, 0.55}

	got, err := gen.sampleCounts(req, mean1, mean2, disp1, disp2, rand.New(rand.NewSource(17)))
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(17))
	for i := range mean1 {
		trt, err := sampleNB(mean2[i], disp2[i]/22.5, req.NSample, rng)
		if err != nil {
			t.Fatal(err)
		}
		ctrl, err := sampleNB(mean1[i], disp1[i]/22.5, req.NSample, rng)
		if err != nil {
			t.Fatal(err)
		}
		for j := 0; j < req.NSample; j++ {
			if got[i][j] != int64(trt[j]) {
				t.Fatalf("gene %d treatment col %d = %d, want %d", i, j, got[i][j], int64(trt[j]))
			}
			if got[i][req.NSample+j] != int64(ctrl[j]) {
				t.Fatalf("gene %d control col %d = %d, want %d", i, j, got[i][req.NSample+j], int64(ctrl[j]))
			}
		}
	}
}

// TestSampleCountsOutlierSample reconstructs the OS branch: one third
// of each group at exactly 5x dispersion, the rest nominal.
func TestSampleCountsOutlierSample(t *testing.T) {
	gen := &Generator{}
	req := baseRequest()
	req.OutlierMode = simul.OutlierSample
	req.NGenes = 3
	mean1 := []float64{20, 90, 400}
	mean2 := []float64{25, 80, 450}
	disp1 := []float64{0.2, 0.3, 0.4}
	disp2 := []float64{0.25, 0.35, 0.45}

	got, err := gen.sampleCounts(req, mean1, mean2, disp1, disp2, rand.New(rand.NewSource(23)))
	if err != nil {
		t.Fatal(err)
	}

	// nsample=3: outlier third is one column per group.
	rng := rand.New(rand.NewSource(23))
	for i := range mean1 {
		want := make([]float64, 0, 6)
		for _, b := range []struct {
			mean, disp float64
			n          int
		}{
			{mean2[i], 5 * disp2[i], 1},
			{mean2[i], disp2[i], 2},
			{mean1[i], 5 * disp1[i], 1},
			{mean1[i], disp1[i], 2},
		} {
			vals, err := sampleNB(b.mean, b.disp, b.n, rng)
			if err != nil {
				t.Fatal(err)
			}
			want = append(want, vals...)
		}
		for j := range want {
			if got[i][j] != int64(want[j]) {
				t.Fatalf("gene %d col %d = %d, want %d", i, j, got[i][j], int64(want[j]))
			}
		}
	}
}

func TestGenerateZeroDispersionSurfaces(t *testing.T) {
	tables := testTables()
	for i := range tables.Bottomly.TotalDisp {
		tables.Bottomly.TotalDisp[i] = 0
	}
	gen := New(tables)
	if _, err := gen.Generate(baseRequest()); err == nil {
		t.Fatal("expected zero-dispersion sampling to fail")
	}
}

func TestGenerateDispModesDiffer(t *testing.T) {
	gen := New(testTables())
	same := baseRequest()
	diff := baseRequest()
	diff.DispMode = simul.DispDifferent

	a, err := gen.Generate(same)
	if err != nil {
		t.Fatal(err)
	}
	b, err := gen.Generate(diff)
	if err != nil {
		t.Fatal(err)
	}
	if tablesEqual(a, b) {
		t.Fatal("same and different dispersion modes generated identical tables")
	}
}
