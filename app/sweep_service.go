package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"debench/adapters/methodout"
	"debench/domain/simul"
	"debench/internal"
	"debench/internal/errors"
	"debench/internal/metrics"
	"debench/ports"
)

// Result is one scored cell of the benchmark: a metric value for one
// method under one condition and replicate seed.
type Result struct {
	Condition Condition
	Method    string
	Metric    simul.MetricKind
	Seed      int64
	Value     float64
}

// SweepOptions configures a benchmark sweep.
type SweepOptions struct {
	// Methods is the ordered set of DE method names to run.
	Methods []string
	// Metrics lists the metrics computed per method output.
	Metrics []simul.MetricKind
	// NRep replicates each condition with seeds Seed..Seed+NRep-1.
	NRep int
	// Seed is the base random seed.
	Seed int64
	// Workers bounds how many replicates generate in parallel. Within a
	// replicate the pipeline stays strictly sequential.
	Workers int
	// Score selects the columns and threshold read from method outputs.
	Score methodout.Options
}

// SweepService runs the full condition sweep: for every condition and
// replicate it generates (or loads) the synthetic dataset, runs each DE
// method through the runner port, and scores the output with each metric.
type SweepService struct {
	generation *GenerationService
	runner     ports.MethodRunner
	opts       SweepOptions
}

// NewSweepService creates a sweep service.
func NewSweepService(generation *GenerationService, runner ports.MethodRunner, opts SweepOptions) (*SweepService, error) {
	if len(opts.Methods) == 0 {
		return nil, errors.ConfigInvalid("sweep needs at least one method name")
	}
	if len(opts.Metrics) == 0 {
		return nil, errors.ConfigInvalid("sweep needs at least one metric")
	}
	if opts.NRep <= 0 {
		return nil, errors.ConfigInvalid("nrep must be positive")
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &SweepService{generation: generation, runner: runner, opts: opts}, nil
}

// Run executes the sweep over the given conditions and returns all
// results ordered by condition, method, metric and seed.
func (s *SweepService) Run(ctx context.Context, conditions []Condition) ([]Result, error) {
	sweepID := uuid.NewString()
	start := time.Now()
	internal.DefaultLogger.Info("[sweep %s] %d conditions x %d replicates x %d methods",
		sweepID, len(conditions), s.opts.NRep, len(s.opts.Methods))

	var mu sync.Mutex
	var results []Result

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for _, cond := range conditions {
		for rep := 0; rep < s.opts.NRep; rep++ {
			seed := s.opts.Seed + int64(rep)
			g.Go(func() error {
				rows, err := s.runReplicate(ctx, cond, seed)
				if err != nil {
					return errors.Wrapf(err, "condition %s seed %d", cond, seed)
				}
				mu.Lock()
				results = append(results, rows...)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortResults(results)
	internal.DefaultLogger.Info("[sweep %s] %d results in %s", sweepID, len(results), time.Since(start).Round(time.Millisecond))
	return results, nil
}

// runReplicate generates one dataset and scores every method on it.
func (s *SweepService) runReplicate(ctx context.Context, cond Condition, seed int64) ([]Result, error) {
	_, countPath, err := s.generation.Table(cond.Request(seed))
	if err != nil {
		return nil, err
	}
	var rows []Result
	for _, method := range s.opts.Methods {
		outPath, err := s.runner.Run(ctx, method, countPath)
		if err != nil {
			return nil, errors.Wrapf(err, "running method %s", method)
		}
		input, err := methodout.Read(outPath, s.opts.Score)
		if err != nil {
			return nil, err
		}
		for _, kind := range s.opts.Metrics {
			value, err := metrics.Compute(kind, input)
			if err != nil {
				return nil, err
			}
			rows = append(rows, Result{
				Condition: cond,
				Method:    method,
				Metric:    kind,
				Seed:      seed,
				Value:     value,
			})
		}
	}
	return rows, nil
}

func sortResults(results []Result) {
	sort.SliceStable(results, func(a, b int) bool {
		ra, rb := results[a], results[b]
		if ra.Condition.String() != rb.Condition.String() {
			return ra.Condition.String() < rb.Condition.String()
		}
		if ra.Method != rb.Method {
			return ra.Method < rb.Method
		}
		if ra.Metric != rb.Metric {
			return ra.Metric < rb.Metric
		}
		return ra.Seed < rb.Seed
	})
}
