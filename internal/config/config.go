// Package config loads and validates the chunkit run configuration.
//
// Configuration comes from an optional YAML file; command line flags are
// applied on top by cmd/chunkit, after which Validate must be called.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xtxerr/chunkit/config"
	"github.com/xtxerr/chunkit/internal/errors"
)

// Config represents the complete run configuration.
type Config struct {
	// Input names the measurements file.
	Input InputConfig `yaml:"input"`

	// Output configures the report file.
	Output OutputConfig `yaml:"output"`

	// Engine configures chunking and parallelism.
	Engine EngineConfig `yaml:"engine"`

	// Percentile configures DDSketch percentile calculation.
	Percentile PercentileConfig `yaml:"percentile"`

	// Diagnostics configures per-chunk result files.
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`

	// Verify configures the DuckDB cross-check.
	Verify VerifyConfig `yaml:"verify"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig names the measurements file.
type InputConfig struct {
	// Path is the file of "<key>;<value>" lines.
	Path string `yaml:"path"`
}

// OutputConfig configures the report file.
type OutputConfig struct {
	// Path receives the one-line report.
	Path string `yaml:"path"`
}

// EngineConfig configures chunking and parallelism.
type EngineConfig struct {
	// Chunks is the target number of chunks. 0 means one per worker.
	Chunks int `yaml:"chunks"`

	// Workers bounds concurrent tasks. 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`

	// Grain is the number of chunks handed to one task.
	Grain int `yaml:"grain"`
}

// PercentileConfig configures DDSketch percentile calculation.
type PercentileConfig struct {
	// Enabled enables percentile calculation.
	Enabled bool `yaml:"enabled"`

	// Accuracy is the relative accuracy (0.01 = 1% error).
	Accuracy float64 `yaml:"accuracy"`
}

// DiagnosticsConfig configures per-chunk result files.
type DiagnosticsConfig struct {
	// Enabled writes one file per chunk before merging.
	Enabled bool `yaml:"enabled"`

	// Dir receives the chunk files.
	Dir string `yaml:"dir"`

	// Format is json, parquet or protobuf.
	Format string `yaml:"format"`

	// Compression is the parquet codec: none, snappy, zstd, lz4, gzip.
	Compression string `yaml:"compression"`
}

// VerifyConfig configures the DuckDB cross-check.
type VerifyConfig struct {
	// Enabled runs the check after the report is written.
	Enabled bool `yaml:"enabled"`

	// MemoryLimit is the DuckDB memory limit.
	MemoryLimit string `yaml:"memory_limit"`

	// Tolerance is the allowed absolute difference between averages.
	Tolerance float64 `yaml:"tolerance"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text, json or auto.
	Format string `yaml:"format"`
}

// Load reads configuration from a YAML file on top of the defaults.
// The result is not validated; see Validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config file: %w", errors.ErrInvalidConfig, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse config file: %w", errors.ErrInvalidConfig, err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Path: config.DefaultOutputPath,
		},
		Engine: EngineConfig{
			Chunks:  config.DefaultChunks,
			Workers: config.DefaultWorkers,
			Grain:   config.DefaultGrain,
		},
		Percentile: PercentileConfig{
			Enabled:  false,
			Accuracy: config.DefaultPercentileAccuracy,
		},
		Diagnostics: DiagnosticsConfig{
			Enabled:     false,
			Dir:         config.DefaultDiagnosticsDir,
			Format:      config.DefaultDiagnosticsFormat,
			Compression: config.DefaultDiagnosticsCompression,
		},
		Verify: VerifyConfig{
			Enabled:     false,
			MemoryLimit: config.DefaultVerifyMemoryLimit,
			Tolerance:   config.DefaultVerifyTolerance,
		},
		Logging: LoggingConfig{
			Level:  config.DefaultLogLevel,
			Format: config.DefaultLogFormat,
		},
	}
}
