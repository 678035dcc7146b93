// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Defaults come from New; Load layers a YAML file and env vars on top.
// - Keys are flat so SENTINELA_<KEY> maps one-to-one onto koanf tags.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/okian/sentinela/internal/domain/model"
	"github.com/okian/sentinela/internal/domain/validate"
	"github.com/okian/sentinela/pkg/metrics"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// DataDir is the directory scanned for exam records.
	DataDir string `koanf:"data_dir"`
	// FilePattern is the glob matched inside DataDir.
	FilePattern string `koanf:"file_pattern"`
	// Workers bounds concurrent file decoding.
	Workers int `koanf:"workers"`

	// DedupeExams drops repeated (patient, collection date) exams.
	DedupeExams bool `koanf:"dedupe_exams"`
	// DedupeSize bounds the dedupe memory; <= 0 means unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// Thresholds, in RDW-CV percent.
	CriticalRDW        float64 `koanf:"critical_rdw"`
	GroupMeanAlert     float64 `koanf:"group_mean_alert"`
	ElevatedShareAlert float64 `koanf:"elevated_share_alert"`
	HighRDW            float64 `koanf:"high_rdw"`

	// RDWPath and GroupPath are dot-separated paths inside each record.
	RDWPath   string `koanf:"rdw_path"`
	GroupPath string `koanf:"group_path"`
	// AgePath and SexPath locate the optional demographic attributes;
	// an empty path turns the attribute off.
	AgePath string `koanf:"age_path"`
	SexPath string `koanf:"sex_path"`

	// OutputFormat is text, json or yaml.
	OutputFormat string `koanf:"output_format"`
	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`
	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled   bool   `koanf:"metrics_enabled"`
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
	// MetricsPrefix is prepended to every metric name after the subsystem.
	MetricsPrefix string `koanf:"metrics_prefix"`
	// MetricsLabels are constant labels added to every series (YAML only).
	MetricsLabels map[string]string `koanf:"metrics_labels"`
	// MetricsBuckets overrides the duration histogram buckets, in ms.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`

	// Addr is the HTTP listen address for serve mode.
	Addr string `koanf:"addr"`
	// Watch re-runs the analysis when DataDir changes (serve mode).
	Watch bool `koanf:"watch"`
	// WatchDebounceMS waits for file events to settle before re-running.
	WatchDebounceMS int `koanf:"watch_debounce_ms"`
}

// New returns a Config populated with defaults.
func New() *Config {
	t := model.DefaultThresholds()
	s := validate.DefaultSchema()
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		DataDir:            "./dados/",
		FilePattern:        "*.json",
		Workers:            runtime.NumCPU(),
		DedupeExams:        false,
		DedupeSize:         100_000,
		CriticalRDW:        t.CriticalRDW,
		GroupMeanAlert:     t.GroupMeanAlert,
		ElevatedShareAlert: t.ElevatedShareAlert,
		HighRDW:            t.HighRDW,
		RDWPath:            strings.Join(s.RDWPath, "."),
		GroupPath:          strings.Join(s.GroupPath, "."),
		AgePath:            strings.Join(s.AgePath, "."),
		SexPath:            strings.Join(s.SexPath, "."),
		OutputFormat:       FormatText,
		MetricsEnabled:     true,
		MetricsNamespace:   "sentinela",
		MetricsSubsystem:   "rdw",
		Addr:               ":9080",
		WatchDebounceMS:    500,
	}
}

// Thresholds returns the classification thresholds as a model value.
func (c *Config) Thresholds() model.Thresholds {
	return model.Thresholds{
		CriticalRDW:        c.CriticalRDW,
		GroupMeanAlert:     c.GroupMeanAlert,
		ElevatedShareAlert: c.ElevatedShareAlert,
		HighRDW:            c.HighRDW,
	}
}

// Schema returns the record field layout to validate against.
func (c *Config) Schema() validate.Schema {
	s := validate.DefaultSchema()
	s.RDWPath = validate.ParsePath(c.RDWPath)
	s.GroupPath = validate.ParsePath(c.GroupPath)
	s.AgePath = validate.ParsePath(c.AgePath)
	s.SexPath = validate.ParsePath(c.SexPath)
	return s
}

// MetricsOptions translates the metrics_* keys into manager options.
func (c *Config) MetricsOptions() []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(c.MetricsEnabled),
		metrics.WithNamespace(c.MetricsNamespace),
		metrics.WithSubsystem(c.MetricsSubsystem),
		metrics.WithMetricPrefix(c.MetricsPrefix),
		metrics.WithCustomLabels(c.MetricsLabels),
		metrics.WithHistogramBuckets(c.MetricsBuckets),
	}
}

// GroupLabel names the grouping unit after the last segment of GroupPath,
// e.g. "Bairro" for dados_demograficos.localidade.bairro.
func (c *Config) GroupLabel() string {
	parts := validate.ParsePath(c.GroupPath)
	if len(parts) == 0 {
		return ""
	}
	last := []rune(parts[len(parts)-1])
	return strings.ToUpper(string(last[:1])) + string(last[1:])
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.DataDir) == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.FilePattern) == "":
		return fmt.Errorf("%w: file_pattern must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case len(validate.ParsePath(c.RDWPath)) == 0:
		return fmt.Errorf("%w: rdw_path must not be empty", ErrInvalidConfig)
	case len(validate.ParsePath(c.GroupPath)) == 0:
		return fmt.Errorf("%w: group_path must not be empty", ErrInvalidConfig)
	case c.WatchDebounceMS < 0:
		return fmt.Errorf("%w: watch_debounce_ms must not be negative", ErrInvalidConfig)
	}

	switch c.OutputFormat {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: unknown output_format %q", ErrInvalidConfig, c.OutputFormat)
	}

	if err := c.Thresholds().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c.validateMetrics()
}

func (c *Config) validateMetrics() error {
	for k := range c.MetricsLabels {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: metrics_labels keys must not be empty", ErrInvalidConfig)
		}
	}
	for i, b := range c.MetricsBuckets {
		if math.IsNaN(b) || (i > 0 && b <= c.MetricsBuckets[i-1]) {
			return fmt.Errorf("%w: metrics_buckets must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}
