// chunkit computes per-station min/avg/max over a "<station>;<value>" file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/xtxerr/chunkit/internal/config"
	"github.com/xtxerr/chunkit/internal/errors"
	"github.com/xtxerr/chunkit/internal/logging"
	"github.com/xtxerr/chunkit/internal/pipeline"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("chunkit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// CLI flags
	cfgPath := fs.String("config", "", "config file path")
	input := fs.String("input", "", "measurements file (or first argument)")
	output := fs.String("output", "", "report file (overrides config)")
	chunks := fs.Int("chunks", 0, "target chunk count, 0 = one per worker (overrides config)")
	workers := fs.Int("workers", 0, "concurrent workers, 0 = GOMAXPROCS (overrides config)")
	grain := fs.Int("grain", 0, "chunks per task (overrides config)")
	diagDir := fs.String("diagnostics", "", "write per-chunk results to this directory")
	diagFormat := fs.String("diagnostics-format", "", "diagnostics format: json, parquet, protobuf")
	percentiles := fs.Bool("percentiles", false, "track p50/p90/p99 per key")
	verifyRun := fs.Bool("verify", false, "cross-check the report with DuckDB")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "", "log format: text, json, auto")
	version := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errors.CodeOK
		}
		return errors.CodeConfig
	}

	if *version {
		fmt.Fprintf(stderr, "chunkit %s\n", Version)
		return errors.CodeOK
	}

	// Load config
	cfg := config.DefaultConfig()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(stderr, "chunkit: %v\n", err)
			return errors.ExitCode(err)
		}
		cfg = loaded
	}

	// CLI overrides
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if *input != "" {
		cfg.Input.Path = *input
	} else if fs.NArg() > 0 {
		cfg.Input.Path = fs.Arg(0)
	}
	if *output != "" {
		cfg.Output.Path = *output
	}
	if set["chunks"] {
		cfg.Engine.Chunks = *chunks
	}
	if set["workers"] {
		cfg.Engine.Workers = *workers
	}
	if set["grain"] {
		cfg.Engine.Grain = *grain
	}
	if *diagDir != "" {
		cfg.Diagnostics.Enabled = true
		cfg.Diagnostics.Dir = *diagDir
	}
	if *diagFormat != "" {
		cfg.Diagnostics.Format = *diagFormat
	}
	if *percentiles {
		cfg.Percentile.Enabled = true
	}
	if *verifyRun {
		cfg.Verify.Enabled = true
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "chunkit: %v\n", err)
		return errors.ExitCode(err)
	}

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	format, _ := logging.ParseFormat(cfg.Logging.Format)
	logging.InitWriter(stderr, level, format)
	logging.Debug("chunkit starting", "version", Version, "config", *cfgPath)

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		logging.Error("invalid options", "error", err)
		return errors.ExitCode(err)
	}

	// Run
	if _, err := pipeline.Run(ctx, opts); err != nil {
		code := errors.ExitCode(err)
		if !errors.IsFatal(err) && ctx.Err() != nil {
			logging.Warn("run interrupted", "error", err)
			return code
		}
		logging.Error("run failed", "error", err, "code", errors.CodeName(code))
		return code
	}
	return errors.CodeOK
}
