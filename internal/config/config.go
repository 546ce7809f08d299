// Package config loads benchmark configuration from environment
// variables (optionally seeded from a .env file by the caller).
package config

import (
	"os"
	"strconv"
	"strings"

	"debench/adapters/methodout"
	"debench/app"
	"debench/domain/simul"
	"debench/internal/errors"
)

// Config represents the complete benchmark configuration.
type Config struct {
	Paths      PathConfig
	Sweep      SweepConfig
	Conditions app.ConditionSets
}

// PathConfig holds file system locations.
type PathConfig struct {
	// ParamsDir contains the k_params.csv / b_params.csv reference tables.
	ParamsDir string
	// CacheDir stores generated count matrices keyed by request.
	CacheDir string
	// OutputDir receives sweep reports.
	OutputDir string
}

// SweepConfig holds the sweep execution settings.
type SweepConfig struct {
	Methods   []string
	Metrics   []simul.MetricKind
	NRep      int
	Seed      int64
	Workers   int
	Threshold float64
	TruthCol  string
	ScoreCol  string
}

// ScoreOptions converts the sweep settings into method-output reader options.
func (c SweepConfig) ScoreOptions() methodout.Options {
	return methodout.Options{
		TruthColumn: c.TruthCol,
		ScoreColumn: c.ScoreCol,
		Threshold:   c.Threshold,
	}
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	conditions, err := loadConditionSets()
	if err != nil {
		return nil, errors.Wrap(err, "loading condition sets")
	}

	config := &Config{
		Paths: PathConfig{
			ParamsDir: getEnvOrDefault("DEBENCH_PARAMS_DIR", "./data"),
			CacheDir:  getEnvOrDefault("DEBENCH_CACHE_DIR", "./cache"),
			OutputDir: getEnvOrDefault("DEBENCH_OUTPUT_DIR", "./out"),
		},
		Sweep: SweepConfig{
			Methods:   splitList(getEnvOrDefault("DEBENCH_METHODS", "fc,nc,rp,cp,deseq2")),
			NRep:      getEnvIntOrDefault("DEBENCH_NREP", simul.DefaultNRep),
			Seed:      getEnvInt64OrDefault("DEBENCH_SEED", simul.DefaultSeed),
			Workers:   getEnvIntOrDefault("DEBENCH_WORKERS", 4),
			Threshold: getEnvFloatOrDefault("DEBENCH_THRESHOLD", 0.1),
			TruthCol:  getEnvOrDefault("DEBENCH_TRUTH_COLUMN", methodout.DefaultTruthColumn),
			ScoreCol:  getEnvOrDefault("DEBENCH_SCORE_COLUMN", methodout.DefaultScoreColumn),
		},
		Conditions: conditions,
	}

	metricNames := splitList(getEnvOrDefault("DEBENCH_METRICS", "auc,tpr,fdr,cutoff,f1score,kappa"))
	for _, name := range metricNames {
		kind, err := simul.ParseMetricKind(name)
		if err != nil {
			return nil, errors.ConfigInvalid(err.Error())
		}
		config.Sweep.Metrics = append(config.Sweep.Metrics, kind)
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadConditionSets() (app.ConditionSets, error) {
	sets := app.DefaultConditionSets()

	if v := os.Getenv("DEBENCH_DATASETS"); v != "" {
		sets.Datasets = nil
		for _, s := range splitList(v) {
			d, err := simul.ParseDataset(s)
			if err != nil {
				return sets, errors.ConfigInvalid(err.Error())
			}
			sets.Datasets = append(sets.Datasets, d)
		}
	}
	if v := os.Getenv("DEBENCH_DISP_MODES"); v != "" {
		sets.DispModes = nil
		for _, s := range splitList(v) {
			m, err := simul.ParseDispMode(s)
			if err != nil {
				return sets, errors.ConfigInvalid(err.Error())
			}
			sets.DispModes = append(sets.DispModes, m)
		}
	}
	if v := os.Getenv("DEBENCH_OUTLIER_MODES"); v != "" {
		sets.OutlierModes = nil
		for _, s := range splitList(v) {
			m, err := simul.ParseOutlierMode(s)
			if err != nil {
				return sets, errors.ConfigInvalid(err.Error())
			}
			sets.OutlierModes = append(sets.OutlierModes, m)
		}
	}
	var err error
	if sets.FracUp, err = floatListOrDefault("DEBENCH_FRAC_UP", sets.FracUp); err != nil {
		return sets, err
	}
	if sets.PDE, err = floatListOrDefault("DEBENCH_PDE", sets.PDE); err != nil {
		return sets, err
	}
	if v := os.Getenv("DEBENCH_NSAMPLES"); v != "" {
		sets.NSamples = nil
		for _, s := range splitList(v) {
			n, err := strconv.Atoi(s)
			if err != nil {
				return sets, errors.ConfigInvalid("DEBENCH_NSAMPLES: " + err.Error())
			}
			sets.NSamples = append(sets.NSamples, n)
		}
	}
	return sets, nil
}

func validateConfig(config *Config) error {
	if config.Paths.ParamsDir == "" {
		return errors.ConfigInvalid("parameter directory is required")
	}
	if len(config.Sweep.Methods) == 0 {
		return errors.ConfigInvalid("at least one method name is required")
	}
	if config.Sweep.NRep <= 0 {
		return errors.ConfigInvalid("nrep must be positive")
	}
	if config.Sweep.Threshold <= 0 || config.Sweep.Threshold >= 1 {
		return errors.ConfigInvalid("score threshold must be in (0, 1)")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func floatListOrDefault(key string, defaultValue []float64) ([]float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	var out []float64
	for _, s := range splitList(v) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.ConfigInvalid(key + ": " + err.Error())
		}
		out = append(out, f)
	}
	return out, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
