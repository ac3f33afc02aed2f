// Package config provides configuration defaults for chunkit.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via the YAML config file or command line flags.
package config

// =============================================================================
// Engine Defaults
// =============================================================================

const (
	// DefaultChunks is the target number of chunks.
	// Zero means one chunk per worker.
	// Override via config: engine.chunks
	DefaultChunks = 0

	// DefaultWorkers bounds concurrently running aggregation tasks.
	// Zero means runtime.GOMAXPROCS(0).
	// Override via config: engine.workers
	DefaultWorkers = 0

	// DefaultGrain is the number of chunks handed to one task.
	// Override via config: engine.grain
	DefaultGrain = 1

	// MaxChunks caps engine.chunks. Beyond this the per-chunk maps cost more
	// than the parallelism gains.
	MaxChunks = 1 << 16
)

// =============================================================================
// Output Defaults
// =============================================================================

const (
	// DefaultOutputPath is where the report is written.
	// Override via config: output.path
	DefaultOutputPath = "output.txt"

	// DefaultOutputFileMode is the permission of the report file.
	DefaultOutputFileMode = 0644
)

// =============================================================================
// Percentile Defaults
// =============================================================================

const (
	// DefaultPercentileAccuracy is the DDSketch relative accuracy.
	// Range: (0, 1)
	// Override via config: percentile.accuracy
	DefaultPercentileAccuracy = 0.01
)

// =============================================================================
// Diagnostics Defaults
// =============================================================================

const (
	// DefaultDiagnosticsDir receives one file per chunk.
	// Override via config: diagnostics.dir
	DefaultDiagnosticsDir = "diagnostics"

	// DefaultDiagnosticsFormat is one of json, parquet, protobuf.
	// Override via config: diagnostics.format
	DefaultDiagnosticsFormat = "json"

	// DefaultDiagnosticsCompression applies to parquet diagnostics.
	// Override via config: diagnostics.compression
	DefaultDiagnosticsCompression = "zstd"

	// DefaultMaxMessageSize limits a protobuf diagnostics message on read.
	DefaultMaxMessageSize = 64 * 1024 * 1024
)

// =============================================================================
// Verification Defaults
// =============================================================================

const (
	// DefaultVerifyMemoryLimit caps DuckDB memory during verification.
	// Override via config: verify.memory_limit
	DefaultVerifyMemoryLimit = "1GB"

	// DefaultVerifyTolerance is the allowed absolute difference of averages.
	// Min, max and count are compared exactly.
	// Override via config: verify.tolerance
	DefaultVerifyTolerance = 1e-6
)

// =============================================================================
// Logging Defaults
// =============================================================================

const (
	// DefaultLogLevel is one of debug, info, warn, error.
	// Override via config: logging.level
	DefaultLogLevel = "info"

	// DefaultLogFormat is one of text, json, auto.
	// Override via config: logging.format
	DefaultLogFormat = "auto"
)
