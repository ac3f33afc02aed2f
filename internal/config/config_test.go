package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/xtxerr/chunkit/internal/errors"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Input.Path = "measurements.txt"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Output.Path == "" {
		t.Error("expected default output path")
	}

	if cfg.Engine.Grain != 1 {
		t.Errorf("expected grain=1, got %d", cfg.Engine.Grain)
	}

	if cfg.Percentile.Enabled {
		t.Error("expected percentiles disabled by default")
	}

	if cfg.Percentile.Accuracy <= 0 {
		t.Error("expected positive default accuracy")
	}

	if cfg.Diagnostics.Enabled || cfg.Verify.Enabled {
		t.Error("expected diagnostics and verify disabled by default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		target error
	}{
		{"valid", func(c *Config) {}, nil},
		{"missing input", func(c *Config) { c.Input.Path = "" }, errors.ErrMissingField},
		{"missing output", func(c *Config) { c.Output.Path = "" }, errors.ErrMissingField},
		{"negative chunks", func(c *Config) { c.Engine.Chunks = -1 }, errors.ErrInvalidConfig},
		{"too many chunks", func(c *Config) { c.Engine.Chunks = 1 << 20 }, errors.ErrInvalidConfig},
		{"negative workers", func(c *Config) { c.Engine.Workers = -2 }, errors.ErrInvalidConfig},
		{"negative grain", func(c *Config) { c.Engine.Grain = -1 }, errors.ErrInvalidConfig},
		{"accuracy out of range", func(c *Config) {
			c.Percentile.Enabled = true
			c.Percentile.Accuracy = 1.5
		}, errors.ErrInvalidConfig},
		{"accuracy ignored when disabled", func(c *Config) { c.Percentile.Accuracy = 0 }, nil},
		{"bad diagnostics format", func(c *Config) {
			c.Diagnostics.Enabled = true
			c.Diagnostics.Format = "csv"
		}, errors.ErrInvalidConfig},
		{"bad parquet compression", func(c *Config) {
			c.Diagnostics.Enabled = true
			c.Diagnostics.Format = "parquet"
			c.Diagnostics.Compression = "bogus"
		}, errors.ErrInvalidConfig},
		{"missing diagnostics dir", func(c *Config) {
			c.Diagnostics.Enabled = true
			c.Diagnostics.Dir = ""
		}, errors.ErrMissingField},
		{"negative tolerance", func(c *Config) { c.Verify.Tolerance = -1 }, errors.ErrInvalidConfig},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, errors.ErrInvalidConfig},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, errors.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.target == nil {
				if err != nil {
					t.Errorf("expected valid config, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
			if !errors.IsValidation(err) {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestConfigValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Workers = -1
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []error{errors.ErrMissingField, errors.ErrInvalidConfig} {
		if !errors.Is(err, want) {
			t.Errorf("expected %v in %v", want, err)
		}
	}
}

func TestEngineResolve(t *testing.T) {
	got := EngineConfig{}.Resolve()
	if got.Workers != runtime.GOMAXPROCS(0) {
		t.Errorf("workers = %d", got.Workers)
	}
	if got.Chunks != got.Workers {
		t.Errorf("chunks = %d, want one per worker (%d)", got.Chunks, got.Workers)
	}
	if got.Grain != 1 {
		t.Errorf("grain = %d", got.Grain)
	}

	got = EngineConfig{Chunks: 7, Workers: 3, Grain: 2}.Resolve()
	if got != (EngineConfig{Chunks: 7, Workers: 3, Grain: 2}) {
		t.Errorf("explicit values changed: %+v", got)
	}
}

func TestPercentileAccuracy(t *testing.T) {
	if a := (PercentileConfig{Enabled: false, Accuracy: 0.01}).PercentileAccuracy(); a != 0 {
		t.Errorf("disabled accuracy = %v", a)
	}
	if a := (PercentileConfig{Enabled: true, Accuracy: 0.02}).PercentileAccuracy(); a != 0.02 {
		t.Errorf("enabled accuracy = %v", a)
	}
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "chunkit.yaml")

	configContent := `
input:
  path: /data/measurements.txt
output:
  path: /tmp/report.txt
engine:
  chunks: 64
  workers: 8
percentile:
  enabled: true
  accuracy: 0.02
diagnostics:
  enabled: true
  dir: /tmp/diag
  format: parquet
  compression: snappy
verify:
  enabled: true
  memory_limit: 512MB
logging:
  level: debug
  format: json
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if cfg.Input.Path != "/data/measurements.txt" {
		t.Errorf("expected input path, got %s", cfg.Input.Path)
	}

	if cfg.Engine.Chunks != 64 || cfg.Engine.Workers != 8 {
		t.Errorf("engine = %+v", cfg.Engine)
	}

	if cfg.Engine.Grain != 1 {
		t.Errorf("expected default grain to survive, got %d", cfg.Engine.Grain)
	}

	if !cfg.Percentile.Enabled || cfg.Percentile.Accuracy != 0.02 {
		t.Errorf("percentile = %+v", cfg.Percentile)
	}

	if cfg.Diagnostics.Format != "parquet" || cfg.Diagnostics.Compression != "snappy" {
		t.Errorf("diagnostics = %+v", cfg.Diagnostics)
	}

	if cfg.Verify.MemoryLimit != "512MB" || cfg.Verify.Tolerance <= 0 {
		t.Errorf("verify = %+v", cfg.Verify)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadConfigInvalidFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("expected config error for nonexistent file, got %v", err)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	if err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	_, err := Load(configPath)
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("expected config error for invalid YAML, got %v", err)
	}
}
