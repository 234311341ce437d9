// Package config loads and validates anteater's session configuration:
// metric thresholds, technical-debt cost model, and logging setup. Adapted
// from the teacher's internal/config, trimmed to the analysis-pipeline
// concerns the core actually has (no LLM/shard/memory settings — those
// belonged to the agent runtime this was distilled from).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"anteater/internal/errs"

	"gopkg.in/yaml.v3"
)

// DebtType mirrors internal/debt.Type but is declared here too so config
// defaults can be expressed without importing the debt package (which in
// turn depends on config for thresholds — this avoids a cycle).
type DebtType string

const (
	DebtTODOComment       DebtType = "todo_comment"
	DebtSuppressedWarning DebtType = "suppressed_warning"
	DebtDynamicCast       DebtType = "dynamic_cast"
	DebtDeprecatedRef     DebtType = "deprecated_reference"
	DebtMetricViolation   DebtType = "metric_violation"
	DebtDuplicateCode     DebtType = "duplicate_code"
)

// DebtSeverity mirrors internal/debt.Severity.
type DebtSeverity string

const (
	SeverityCritical DebtSeverity = "critical"
	SeverityHigh     DebtSeverity = "high"
	SeverityMedium   DebtSeverity = "medium"
	SeverityLow      DebtSeverity = "low"
)

// MetricsThresholds gates the violations list the metrics engine (C8)
// attaches to its report. Defaults match spec.md §6 exactly.
type MetricsThresholds struct {
	MaxCyclomatic      int     `yaml:"max_cyclomatic"`
	MinMaintainability float64 `yaml:"min_maintainability"`
	MaxCognitive       int     `yaml:"max_cognitive"`
	MaxLinesOfCode      int     `yaml:"max_lines_of_code"`
}

// DefaultMetricsThresholds returns spec.md §6's documented defaults:
// CC 20, MI 50, cognitive 15, LOC 100.
func DefaultMetricsThresholds() MetricsThresholds {
	return MetricsThresholds{
		MaxCyclomatic:      20,
		MinMaintainability: 50,
		MaxCognitive:       15,
		MaxLinesOfCode:      100,
	}
}

// DebtCostConfig drives the debt aggregator (C9): per-type base cost,
// per-severity multiplier, the reporting unit, and the threshold above
// which a report is flagged as "exceeds budget".
type DebtCostConfig struct {
	Costs             map[DebtType]float64     `yaml:"costs"`
	Multipliers       map[DebtSeverity]float64 `yaml:"multipliers"`
	Unit              string                   `yaml:"unit"`
	Threshold         float64                  `yaml:"threshold"`
	MetricsThresholds MetricsThresholds        `yaml:"metrics_thresholds"`
	Exclude           []string                 `yaml:"exclude"`
}

// DefaultDebtCostConfig returns spec.md §6's documented defaults: unit
// "hours", critical=4.0, high=2.0, medium=1.0, low=0.5.
func DefaultDebtCostConfig() DebtCostConfig {
	return DebtCostConfig{
		Costs: map[DebtType]float64{
			DebtTODOComment:       0.5,
			DebtSuppressedWarning: 1.0,
			DebtDynamicCast:       0.5,
			DebtDeprecatedRef:     1.0,
			DebtMetricViolation:   2.0,
			DebtDuplicateCode:     3.0,
		},
		Multipliers: map[DebtSeverity]float64{
			SeverityCritical: 4.0,
			SeverityHigh:     2.0,
			SeverityMedium:   1.0,
			SeverityLow:      0.5,
		},
		Unit:              "hours",
		Threshold:         40.0,
		MetricsThresholds: DefaultMetricsThresholds(),
		Exclude:           []string{"**/*_test.*", "**/vendor/**", "**/testdata/**"},
	}
}

// LoggingConfig configures the categorized file logger in internal/logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultLoggingConfig returns a production-safe default: debug mode off,
// info level, JSON formatting (for downstream log aggregation).
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		DebugMode:  false,
		Level:      "info",
		JSONFormat: true,
	}
}

// SessionConfig bounds the worker pool and per-file limits a session
// enforces, per spec.md §5 "Concurrency & Resource Model".
type SessionConfig struct {
	MaxConcurrentFiles int   `yaml:"max_concurrent_files"`
	MaxIterations      int   `yaml:"max_iterations"`
	WideningThreshold  int   `yaml:"widening_threshold"`
	NarrowingCap       int   `yaml:"narrowing_cap"`
	MaxFileSizeBytes   int64 `yaml:"max_file_size_bytes"`
}

// DefaultSessionConfig mirrors spec.md §4.6's fixpoint defaults
// (maxIterations 1000, widening threshold 3, narrowing cap 10) and a
// worker count matching GOMAXPROCS-friendly parallelism of 4.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxConcurrentFiles: 4,
		MaxIterations:      1000,
		WideningThreshold:  3,
		NarrowingCap:       10,
		MaxFileSizeBytes:   5 * 1024 * 1024,
	}
}

// Config holds all of anteater's configuration.
type Config struct {
	Metrics MetricsThresholds `yaml:"metrics"`
	Debt    DebtCostConfig    `yaml:"debt"`
	Logging LoggingConfig     `yaml:"logging"`
	Session SessionConfig     `yaml:"session"`
}

// DefaultConfig returns the documented spec.md §6 defaults.
func DefaultConfig() *Config {
	return &Config{
		Metrics: DefaultMetricsThresholds(),
		Debt:    DefaultDebtCostConfig(),
		Logging: DefaultLoggingConfig(),
		Session: DefaultSessionConfig(),
	}
}

// Load reads configuration from a YAML file, falling back to defaults for
// any field the file omits (yaml.Unmarshal into a pre-populated struct).
// A missing file is not an error — sessions may run with pure defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, &errs.ConfigurationError{Field: "path", Reason: fmt.Sprintf("reading %s: %v", path, err)}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &errs.ConfigurationError{Field: "path", Reason: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path as YAML, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &errs.ConfigurationError{Field: "path", Reason: fmt.Sprintf("creating config directory %s: %v", dir, err)}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return &errs.ConfigurationError{Field: "path", Reason: fmt.Sprintf("marshaling config: %v", err)}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return &errs.ConfigurationError{Field: "path", Reason: fmt.Sprintf("writing %s: %v", path, err)}
	}
	return nil
}

// Validate rejects out-of-range threshold values, per spec.md §7
// ("ConfigurationError — invalid threshold value or malformed option.
// Fatal at session start").
func (c *Config) Validate() error {
	if c.Metrics.MaxCyclomatic <= 0 {
		return &errs.ConfigurationError{Field: "metrics.max_cyclomatic", Reason: "must be positive"}
	}
	if c.Metrics.MinMaintainability < 0 || c.Metrics.MinMaintainability > 100 {
		return &errs.ConfigurationError{Field: "metrics.min_maintainability", Reason: "must be in [0, 100]"}
	}
	if c.Metrics.MaxCognitive <= 0 {
		return &errs.ConfigurationError{Field: "metrics.max_cognitive", Reason: "must be positive"}
	}
	if c.Metrics.MaxLinesOfCode <= 0 {
		return &errs.ConfigurationError{Field: "metrics.max_lines_of_code", Reason: "must be positive"}
	}
	if c.Debt.Unit == "" {
		return &errs.ConfigurationError{Field: "debt.unit", Reason: "must not be empty"}
	}
	if c.Debt.Threshold < 0 {
		return &errs.ConfigurationError{Field: "debt.threshold", Reason: "must not be negative"}
	}
	if c.Session.MaxConcurrentFiles <= 0 {
		return &errs.ConfigurationError{Field: "session.max_concurrent_files", Reason: "must be positive"}
	}
	if c.Session.MaxIterations <= 0 {
		return &errs.ConfigurationError{Field: "session.max_iterations", Reason: "must be positive"}
	}
	return nil
}

// DebtCost looks up the base cost for a debt type, falling back to 0 if the
// config omits it (an unconfigured debt type contributes no cost rather
// than panicking mid-aggregation).
func (c *DebtCostConfig) DebtCost(t DebtType) float64 {
	return c.Costs[t]
}

// SeverityMultiplier looks up the cost multiplier for a severity level,
// defaulting to 1.0 (medium-equivalent) if unconfigured.
func (c *DebtCostConfig) SeverityMultiplier(s DebtSeverity) float64 {
	if m, ok := c.Multipliers[s]; ok {
		return m
	}
	return 1.0
}

// ExceedsThreshold reports whether a total cost exceeds the configured
// debt budget.
func (c *DebtCostConfig) ExceedsThreshold(totalCost float64) bool {
	return totalCost > c.Threshold
}
