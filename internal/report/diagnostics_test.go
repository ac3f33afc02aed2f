package report

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/xtxerr/chunkit/internal/aggregate"
	"github.com/xtxerr/chunkit/internal/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"", FormatJSON, false},
		{"Parquet", FormatParquet, false},
		{"protobuf", FormatProtobuf, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			continue
		}
		if tt.wantErr && !errors.Is(err, errors.ErrInvalidConfig) {
			t.Errorf("ParseFormat(%q) should be a config error, got %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseCompression(t *testing.T) {
	for _, name := range []string{"", "none", "snappy", "zstd", "lz4", "gzip"} {
		if _, err := ParseCompression(name); err != nil {
			t.Errorf("ParseCompression(%q): %v", name, err)
		}
	}
	if _, err := ParseCompression("brotli"); err == nil {
		t.Error("expected error for unsupported codec")
	}
}

func TestDiagnosticsPath(t *testing.T) {
	got := DiagnosticsPath("diag", 7, FormatProtobuf)
	if want := filepath.Join("diag", "chunk-0007.pb"); got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestWriteDiagnostics_RoundTrip(t *testing.T) {
	data := []byte("B;2.0\nA;1.0\nA;3.0\nA;2.0\n")

	for _, percentiles := range []bool{false, true} {
		opts := aggregate.Options{}
		if percentiles {
			opts.PercentileAccuracy = 0.01
		}
		m, err := aggregate.Aggregate(data, opts)
		if err != nil {
			t.Fatalf("Aggregate: %v", err)
		}

		for _, format := range []Format{FormatJSON, FormatParquet, FormatProtobuf} {
			t.Run(string(format), func(t *testing.T) {
				dir := t.TempDir()
				path, err := WriteDiagnostics(3, m, DiagnosticsOptions{
					Dir:         dir,
					Format:      format,
					Compression: "snappy",
				})
				if err != nil {
					t.Fatalf("WriteDiagnostics: %v", err)
				}
				if filepath.Base(path) != "chunk-0003."+format.Ext() {
					t.Errorf("unexpected file name %s", path)
				}

				rows, err := ReadDiagnostics(path)
				if err != nil {
					t.Fatalf("ReadDiagnostics: %v", err)
				}
				if len(rows) != 2 {
					t.Fatalf("expected 2 rows, got %d", len(rows))
				}

				a := rows[0]
				if a.Key != "A" || a.Min != 1.0 || a.Max != 3.0 || a.Count != 3 {
					t.Errorf("row A = %+v", a)
				}
				if math.Abs(a.Avg-2.0) > 1e-9 {
					t.Errorf("row A avg = %v", a.Avg)
				}
				if rows[1].Key != "B" || rows[1].Count != 1 {
					t.Errorf("row B = %+v", rows[1])
				}

				if percentiles {
					if a.P50 == nil || a.P90 == nil || a.P99 == nil {
						t.Fatalf("percentiles missing: %+v", a)
					}
					if math.Abs(*a.P50-2.0) > 0.05 {
						t.Errorf("p50 = %v, want near 2", *a.P50)
					}
				} else if a.P50 != nil {
					t.Errorf("unexpected percentile %v", *a.P50)
				}
			})
		}
	}
}

func TestWriteDiagnostics_BadCompression(t *testing.T) {
	m := aggregate.NewSummaryMap(0)
	_, err := WriteDiagnostics(0, m, DiagnosticsOptions{
		Dir:         t.TempDir(),
		Format:      FormatParquet,
		Compression: "bogus",
	})
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestReadDiagnostics_UnknownExtension(t *testing.T) {
	if _, err := ReadDiagnostics("chunk-0000.csv"); err == nil {
		t.Error("expected error")
	}
}
