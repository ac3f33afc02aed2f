// Package pipeline runs one chunkit job end to end.
//
// The stages are strictly sequential except for aggregation:
//
//	map file -> split into chunks -> aggregate chunks in parallel (barrier)
//	-> per-chunk diagnostics -> merge -> unmap -> verify -> render and write
//
// Any failure aborts the run before the report is written, so a failed run
// never leaves a partial report behind.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/xtxerr/chunkit/internal/aggregate"
	"github.com/xtxerr/chunkit/internal/chunk"
	"github.com/xtxerr/chunkit/internal/config"
	"github.com/xtxerr/chunkit/internal/forkjoin"
	"github.com/xtxerr/chunkit/internal/logging"
	"github.com/xtxerr/chunkit/internal/mmap"
	"github.com/xtxerr/chunkit/internal/report"
	"github.com/xtxerr/chunkit/internal/verify"
)

// Options configures Run.
type Options struct {
	// Input is the measurements file.
	Input string

	// Output receives the report line.
	Output string

	// Engine holds chunk count, worker bound and grain. Zero values are
	// resolved as in config.EngineConfig.Resolve.
	Engine config.EngineConfig

	// PercentileAccuracy > 0 tracks percentiles per key.
	PercentileAccuracy float64

	// Diagnostics, when set, writes one file per chunk.
	Diagnostics *report.DiagnosticsOptions

	// Verify, when set, cross-checks the report with DuckDB.
	Verify *verify.Options
}

// OptionsFromConfig builds run options from a validated configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := Options{
		Input:              cfg.Input.Path,
		Output:             cfg.Output.Path,
		Engine:             cfg.Engine,
		PercentileAccuracy: cfg.Percentile.PercentileAccuracy(),
	}

	if cfg.Diagnostics.Enabled {
		format, err := report.ParseFormat(cfg.Diagnostics.Format)
		if err != nil {
			return Options{}, err
		}
		opts.Diagnostics = &report.DiagnosticsOptions{
			Dir:         cfg.Diagnostics.Dir,
			Format:      format,
			Compression: cfg.Diagnostics.Compression,
		}
	}

	if cfg.Verify.Enabled {
		opts.Verify = &verify.Options{
			MemoryLimit: cfg.Verify.MemoryLimit,
			Tolerance:   cfg.Verify.Tolerance,
		}
	}

	return opts, nil
}

// Result is the outcome of a successful run.
type Result struct {
	// Entries is the merged report, sorted by key.
	Entries []aggregate.Entry

	// Stats describes the run.
	Stats Stats

	// Verification is set when verification ran.
	Verification *verify.Result
}

// Run executes one job. The context only carries cancellation into the
// aggregation stage.
func Run(ctx context.Context, opts Options) (*Result, error) {
	eng := opts.Engine.Resolve()
	stats := Stats{RunID: uuid.NewString(), Workers: eng.Workers}

	ctx = logging.ContextWithRunID(ctx, stats.RunID)
	ctx = logging.ContextWithInput(ctx, opts.Input)
	log := logging.WithContext(ctx).With("component", "pipeline")

	started := time.Now()
	log.Info("run started",
		"output", opts.Output,
		"chunks", eng.Chunks,
		"workers", eng.Workers,
		"grain", eng.Grain,
		"percentiles", opts.PercentileAccuracy > 0)

	// Map
	t := time.Now()
	file, err := mmap.Open(opts.Input)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf := file.Bytes()
	stats.Bytes = int64(len(buf))
	stats.Mapped = file.Mapped()
	stats.MapTime = time.Since(t)
	log.Info("input mapped", "size", humanize.IBytes(uint64(stats.Bytes)), "mapped", stats.Mapped, "elapsed", stats.MapTime)

	// Split
	t = time.Now()
	chunks := chunk.Split(buf, eng.Chunks)
	if err := chunk.Validate(chunks, buf); err != nil {
		return nil, err
	}
	stats.Chunks = len(chunks)
	stats.SplitTime = time.Since(t)
	log.Debug("chunks planned", "requested", eng.Chunks, "chunks", stats.Chunks, "elapsed", stats.SplitTime)

	// Aggregate
	t = time.Now()
	results, err := aggregateChunks(ctx, buf, chunks, eng, opts.PercentileAccuracy)
	if err != nil {
		return nil, err
	}
	stats.AggregateTime = time.Since(t)
	for _, m := range results {
		stats.Records += m.Records()
	}
	log.Info("chunks aggregated", "chunks", stats.Chunks, "records", stats.Records, "elapsed", stats.AggregateTime)

	// Diagnostics
	if opts.Diagnostics != nil {
		t = time.Now()
		paths, err := writeDiagnostics(ctx, results, eng.Workers, *opts.Diagnostics)
		if err != nil {
			return nil, err
		}
		stats.Diagnostics = paths
		stats.DiagnosticsTime = time.Since(t)
		log.Info("diagnostics written", "dir", opts.Diagnostics.Dir, "format", opts.Diagnostics.Format, "files", len(paths), "elapsed", stats.DiagnosticsTime)
	}

	// Merge
	t = time.Now()
	entries := aggregate.Merge(results...)
	stats.Keys = len(entries)
	stats.MergeTime = time.Since(t)
	log.Debug("results merged", "keys", stats.Keys, "elapsed", stats.MergeTime)

	// Keys are Go strings by now; the mapping is no longer referenced.
	if err := file.Close(); err != nil {
		log.Warn("unmap failed", "error", err)
	}

	res := &Result{Entries: entries}

	// Verify before writing, so a rejected report never reaches Output.
	if opts.Verify != nil {
		t = time.Now()
		v, err := verify.Verify(ctx, opts.Input, entries, *opts.Verify)
		if err != nil {
			return nil, err
		}
		res.Verification = v
		stats.VerifyTime = time.Since(t)
		log.Info("report verified", "keys", v.Keys, "records", v.Records, "elapsed", stats.VerifyTime)
	}

	// Write
	t = time.Now()
	if err := report.WriteFile(opts.Output, entries); err != nil {
		return nil, err
	}
	stats.WriteTime = time.Since(t)
	log.Debug("report written", "path", opts.Output, "elapsed", stats.WriteTime)

	stats.Total = time.Since(started)
	res.Stats = stats

	log.Info("run finished",
		"keys", stats.Keys,
		"records", stats.Records,
		"throughput", stats.Throughput(),
		"elapsed", stats.Total)

	return res, nil
}

// aggregateChunks runs the aggregator over every chunk and returns one map
// per chunk, in chunk order.
func aggregateChunks(ctx context.Context, buf []byte, chunks []chunk.Chunk, eng config.EngineConfig, accuracy float64) ([]*aggregate.SummaryMap, error) {
	results := make([]*aggregate.SummaryMap, len(chunks))

	err := forkjoin.Run(ctx, forkjoin.NewZip(chunks, results),
		forkjoin.Options{Workers: eng.Workers, Grain: eng.Grain, Name: "aggregate"},
		func(ctx context.Context, part forkjoin.Zip[chunk.Chunk, *aggregate.SummaryMap]) error {
			for i, c := range part.In.All() {
				if err := ctx.Err(); err != nil {
					return err
				}
				m, err := aggregate.Aggregate(c.Bytes(buf), aggregate.Options{
					BaseOffset:         c.Start,
					PercentileAccuracy: accuracy,
				})
				index := part.Offset() + i
				if err != nil {
					return fmt.Errorf("chunk %d %v: %w", index, c, err)
				}
				*part.Out.At(i) = m

				logging.WithContext(logging.ContextWithChunk(ctx, index)).Debug("chunk aggregated",
					"range", c.String(),
					"keys", m.Len(),
					"records", m.Records())
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// writeDiagnostics writes one file per chunk map, in parallel.
func writeDiagnostics(ctx context.Context, results []*aggregate.SummaryMap, workers int, opts report.DiagnosticsOptions) ([]string, error) {
	paths := make([]string, len(results))

	err := forkjoin.Run(ctx, forkjoin.NewZip(results, paths),
		forkjoin.Options{Workers: workers, Name: "diagnostics"},
		func(ctx context.Context, part forkjoin.Zip[*aggregate.SummaryMap, string]) error {
			for i, m := range part.In.All() {
				path, err := report.WriteDiagnostics(part.Offset()+i, m, opts)
				if err != nil {
					return err
				}
				*part.Out.At(i) = path
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	return paths, nil
}
