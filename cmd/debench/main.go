package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"debench/adapters/methodout"
	"debench/adapters/report"
	"debench/app"
	"debench/domain/simul"
	"debench/internal/config"
	"debench/internal/metrics"
	"debench/internal/params"
	"debench/internal/simulate"
	"debench/internal/testkit"
)

func main() {
	// Optional .env; environment variables win.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "debench",
		Short: "Synthetic RNA-seq benchmark for differential-expression methods",
	}

	rootCmd.AddCommand(
		newGenerateCmd(),
		newMetricsCmd(),
		newSweepCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newGenerateCmd() *cobra.Command {
	var (
		dataset   string
		dispMode  string
		outlier   string
		nsample   int
		ngenes    int
		nde       int
		fracUp    float64
		roProp    float64
		seed      int64
		out       string
		fixedFold bool
		largeSamp bool
		noRandom  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one synthetic count matrix and write it as TSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tables, err := params.Load(cfg.Paths.ParamsDir)
			if err != nil {
				return err
			}

			ds, err := simul.ParseDataset(dataset)
			if err != nil {
				return err
			}
			dm, err := simul.ParseDispMode(dispMode)
			if err != nil {
				return err
			}
			om, err := simul.ParseOutlierMode(outlier)
			if err != nil {
				return err
			}
			if ngenes == 0 {
				ngenes = ds.DefaultNGenes()
			}

			req := simul.Request{
				Dataset:        ds,
				DispMode:       dm,
				NSample:        nsample,
				NGenes:         ngenes,
				NDE:            nde,
				FracUp:         fracUp,
				OutlierMode:    om,
				ROProp:         roProp,
				RandomSampling: !noRandom,
				LargeSample:    largeSamp,
				FixedFold:      fixedFold,
				Seed:           seed,
			}
			gen := app.NewGenerationService(simulate.New(tables), cfg.Paths.CacheDir)
			_, path, err := gen.Table(req)
			if err != nil {
				return err
			}
			if out != "" {
				if err := os.Rename(path, out); err != nil {
					return fmt.Errorf("moving count file to %s: %w", out, err)
				}
				path = out
			}
			log.Printf("count matrix written to %s", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "KIRC", "reference dataset: KIRC, Bottomly, mKdB or mBdK")
	cmd.Flags().StringVar(&dispMode, "disp", "same", "dispersion mode: same or different")
	cmd.Flags().StringVar(&outlier, "outlier", "D", "outlier mode: D, R, OS or DL")
	cmd.Flags().IntVar(&nsample, "nsample", 3, "samples per group")
	cmd.Flags().IntVar(&ngenes, "ngenes", 0, "total gene count (0 = dataset default)")
	cmd.Flags().IntVar(&nde, "nde", 250, "number of DE genes")
	cmd.Flags().Float64Var(&fracUp, "frac-up", 0.5, "fraction of DE genes up-regulated")
	cmd.Flags().Float64Var(&roProp, "ro-prop", simul.DefaultROProp, "random outlier percentage (mode R)")
	cmd.Flags().Int64Var(&seed, "seed", simul.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&out, "out", "", "output path (default: cache location)")
	cmd.Flags().BoolVar(&fixedFold, "fixed-fold", false, "use fixed fold changes (KIRC only)")
	cmd.Flags().BoolVar(&largeSamp, "large-sample", false, "inflate ~3% of non-outlier cells 5-10x")
	cmd.Flags().BoolVar(&noRandom, "no-random-sampling", false, "disable per-sample mean scaling")
	return cmd
}

func newMetricsCmd() *cobra.Command {
	var (
		metric    string
		threshold float64
		truthCol  string
		scoreCol  string
	)

	cmd := &cobra.Command{
		Use:   "metrics <method-output.csv>",
		Short: "Score a DE method's output file against its embedded ground truth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := simul.ParseMetricKind(metric)
			if err != nil {
				return err
			}
			input, err := methodout.Read(args[0], methodout.Options{
				TruthColumn: truthCol,
				ScoreColumn: scoreCol,
				Threshold:   threshold,
			})
			if err != nil {
				return err
			}
			value, err := metrics.Compute(kind, input)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%g\n", kind, value)
			return nil
		},
	}

	cmd.Flags().StringVar(&metric, "metric", "auc", "metric: auc, tpr, fdr, cutoff, f1score or kappa")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.1, "significance threshold for predicted labels")
	cmd.Flags().StringVar(&truthCol, "truth-col", methodout.DefaultTruthColumn, "truth column name")
	cmd.Flags().StringVar(&scoreCol, "score-col", methodout.DefaultScoreColumn, "score column name")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var flipRate float64

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the full condition sweep and export a report",
		Long: `Run the Cartesian product of configured conditions, replicate each with
consecutive seeds, score every configured method and metric, and write
an xlsx workbook plus a flat CSV to the output directory.

The built-in oracle scorer stands in for external DE tools; --flip-rate
controls how far from perfect its calls are.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tables, err := params.Load(cfg.Paths.ParamsDir)
			if err != nil {
				return err
			}

			generation := app.NewGenerationService(simulate.New(tables), cfg.Paths.CacheDir)
			runner := testkit.OracleRunner{FlipRate: flipRate, Seed: uint64(cfg.Sweep.Seed)}
			sweep, err := app.NewSweepService(generation, runner, app.SweepOptions{
				Methods: cfg.Sweep.Methods,
				Metrics: cfg.Sweep.Metrics,
				NRep:    cfg.Sweep.NRep,
				Seed:    cfg.Sweep.Seed,
				Workers: cfg.Sweep.Workers,
				Score:   cfg.Sweep.ScoreOptions(),
			})
			if err != nil {
				return err
			}

			results, err := sweep.Run(cmd.Context(), cfg.Conditions.Enumerate())
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
				return err
			}
			xlsxPath := filepath.Join(cfg.Paths.OutputDir, "benchmark.xlsx")
			csvPath := filepath.Join(cfg.Paths.OutputDir, "benchmark.csv")
			if err := report.WriteWorkbook(xlsxPath, results, cfg.Sweep.Methods, cfg.Sweep.Metrics); err != nil {
				return err
			}
			if err := report.WriteCSV(csvPath, results); err != nil {
				return err
			}
			log.Printf("report written to %s and %s", xlsxPath, csvPath)
			return nil
		},
	}

	cmd.Flags().Float64Var(&flipRate, "flip-rate", 0, "fraction of genes the oracle scorer mislabels")
	return cmd
}
