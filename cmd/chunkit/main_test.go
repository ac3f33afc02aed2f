package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xtxerr/chunkit/internal/errors"
	chunktest "github.com/xtxerr/chunkit/internal/testing"
)

func TestRun_EndToEnd(t *testing.T) {
	input := chunktest.WriteFile(t, "measurements.txt", []byte("A;1.0\nB;2.0\nA;3.0\n"))
	output := filepath.Join(t.TempDir(), "out.txt")

	var stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-output", output,
		"-chunks", "2",
		"-workers", "2",
		"-log-format", "json",
		input,
	}, &stderr)
	if code != errors.CodeOK {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "{A=1.0/2.0/3.0, B=2.0/2.0/2.0}" {
		t.Errorf("output = %q", data)
	}
	if !strings.Contains(stderr.String(), `"msg":"run finished"`) {
		t.Errorf("expected JSON run summary on stderr:\n%s", stderr.String())
	}
}

func TestRun_ConfigFileWithOverrides(t *testing.T) {
	dir := t.TempDir()
	input := chunktest.WriteFile(t, "m.txt", []byte("x;1.5\nx;2.5\n"))
	output := filepath.Join(dir, "report.txt")
	diag := filepath.Join(dir, "diag")

	cfgPath := filepath.Join(dir, "chunkit.yaml")
	cfg := "input:\n  path: " + input + "\noutput:\n  path: " + output + "\nengine:\n  chunks: 4\nlogging:\n  format: text\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-config", cfgPath,
		"-diagnostics", diag,
		"-diagnostics-format", "parquet",
		"-percentiles",
	}, &stderr)
	if code != errors.CodeOK {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}

	data, _ := os.ReadFile(output)
	if string(data) != "{x=1.5/2.0/2.5}" {
		t.Errorf("output = %q", data)
	}

	files, _ := filepath.Glob(filepath.Join(diag, "chunk-*.parquet"))
	if len(files) == 0 {
		t.Error("expected parquet diagnostics files")
	}
}

func TestRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	good := chunktest.WriteFile(t, "good.txt", []byte("A;1.0\n"))
	bad := chunktest.WriteFile(t, "bad.txt", []byte("A;1.0\nB;nope\n"))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"missing input", []string{"-output", filepath.Join(dir, "o1.txt")}, errors.CodeConfig},
		{"unknown flag", []string{"-bogus"}, errors.CodeConfig},
		{"bad workers", []string{"-workers", "-3", good}, errors.CodeConfig},
		{"bad diagnostics format", []string{"-diagnostics", dir, "-diagnostics-format", "csv", good}, errors.CodeConfig},
		{"missing config file", []string{"-config", filepath.Join(dir, "nope.yaml"), good}, errors.CodeConfig},
		{"nonexistent input", []string{"-output", filepath.Join(dir, "o2.txt"), filepath.Join(dir, "nope.txt")}, errors.CodeIO},
		{"parse error", []string{"-output", filepath.Join(dir, "o3.txt"), bad}, errors.CodeParse},
		{"version", []string{"-version"}, errors.CodeOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if got := run(context.Background(), tt.args, &stderr); got != tt.want {
				t.Errorf("exit code = %s, want %s\nstderr:\n%s",
					errors.CodeName(got), errors.CodeName(tt.want), stderr.String())
			}
		})
	}
}
