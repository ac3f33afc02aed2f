package config

import (
	"fmt"

	"github.com/xtxerr/chunkit/config"
	"github.com/xtxerr/chunkit/internal/errors"
	"github.com/xtxerr/chunkit/internal/logging"
	"github.com/xtxerr/chunkit/internal/report"
)

// Validate checks the configuration for errors.
// Every returned error wraps errors.ErrInvalidConfig or errors.ErrMissingField.
func (c *Config) Validate() error {
	var errs []error

	// Input
	if c.Input.Path == "" {
		errs = append(errs, errors.NewMissingField("input.path"))
	}

	// Output
	if c.Output.Path == "" {
		errs = append(errs, errors.NewMissingField("output.path"))
	}

	// Engine
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("engine: %w", err))
	}

	// Percentile
	if err := c.Percentile.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("percentile: %w", err))
	}

	// Diagnostics
	if err := c.Diagnostics.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("diagnostics: %w", err))
	}

	// Verify
	if err := c.Verify.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("verify: %w", err))
	}

	// Logging
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the engine configuration.
func (c *EngineConfig) Validate() error {
	v := errors.NewValidationErrors()

	if c.Chunks < 0 || c.Chunks > config.MaxChunks {
		v.Add(errors.NewInvalidValue("chunks", c.Chunks, fmt.Sprintf("must be between 0 and %d", config.MaxChunks)))
	}

	if c.Workers < 0 {
		v.Add(errors.NewInvalidValue("workers", c.Workers, "must not be negative"))
	}

	if c.Grain < 0 {
		v.Add(errors.NewInvalidValue("grain", c.Grain, "must not be negative"))
	}

	return v.Err()
}

// Validate checks the percentile configuration.
func (c *PercentileConfig) Validate() error {
	if c.Enabled && (c.Accuracy <= 0 || c.Accuracy >= 1) {
		return errors.NewInvalidValue("accuracy", c.Accuracy, "must be between 0 and 1")
	}
	return nil
}

// Validate checks the diagnostics configuration.
func (c *DiagnosticsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	v := errors.NewValidationErrors()

	if c.Dir == "" {
		v.AddMissing("dir")
	}

	format, err := report.ParseFormat(c.Format)
	v.Add(err)

	if format == report.FormatParquet {
		_, err := report.ParseCompression(c.Compression)
		v.Add(err)
	}

	return v.Err()
}

// Validate checks the verify configuration.
func (c *VerifyConfig) Validate() error {
	if c.Tolerance < 0 {
		return errors.NewInvalidValue("tolerance", c.Tolerance, "must not be negative")
	}
	return nil
}

// Validate checks the logging configuration.
func (c *LoggingConfig) Validate() error {
	v := errors.NewValidationErrors()

	if _, err := logging.ParseLevel(c.Level); err != nil {
		v.AddField("level", err.Error())
	}

	if _, err := logging.ParseFormat(c.Format); err != nil {
		v.AddField("format", err.Error())
	}

	return v.Err()
}
