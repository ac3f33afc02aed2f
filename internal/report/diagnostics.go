package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/xtxerr/chunkit/internal/aggregate"
	"github.com/xtxerr/chunkit/internal/errors"
)

// Format is a diagnostics file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatParquet  Format = "parquet"
	FormatProtobuf Format = "protobuf"
)

// Ext returns the file extension used for the format.
func (f Format) Ext() string {
	switch f {
	case FormatParquet:
		return "parquet"
	case FormatProtobuf:
		return "pb"
	default:
		return "json"
	}
}

// ParseFormat parses a diagnostics format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatParquet, FormatProtobuf:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", errors.NewInvalidValue("diagnostics.format", s, "must be json, parquet or protobuf")
	}
}

// ParseCompression maps a compression name to a parquet codec.
func ParseCompression(s string) (compress.Codec, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return &parquet.Uncompressed, nil
	case "snappy":
		return &parquet.Snappy, nil
	case "zstd":
		return &parquet.Zstd, nil
	case "lz4":
		return &parquet.Lz4Raw, nil
	case "gzip":
		return &parquet.Gzip, nil
	default:
		return nil, errors.NewInvalidValue("diagnostics.compression", s, "must be none, snappy, zstd, lz4 or gzip")
	}
}

// DiagnosticsOptions configures WriteDiagnostics.
type DiagnosticsOptions struct {
	Dir         string
	Format      Format
	Compression string
}

// Row is one key of a chunk's diagnostics. Percentiles are nil when they
// were not tracked.
type Row struct {
	Key   string   `parquet:"key,dict" json:"-"`
	Min   float64  `parquet:"min" json:"min"`
	Avg   float64  `parquet:"avg" json:"avg"`
	Max   float64  `parquet:"max" json:"max"`
	Count int64    `parquet:"count" json:"count"`
	P50   *float64 `parquet:"p50" json:"p50,omitempty"`
	P90   *float64 `parquet:"p90" json:"p90,omitempty"`
	P99   *float64 `parquet:"p99" json:"p99,omitempty"`
}

// EntryToRow converts a merged entry to a diagnostics row.
func EntryToRow(e *aggregate.Entry) Row {
	row := Row{
		Key:   e.Key,
		Min:   e.Min,
		Avg:   e.Avg(),
		Max:   e.Max,
		Count: e.Count,
	}

	if e.HasPercentiles() {
		row.P50 = quantile(e, 0.50)
		row.P90 = quantile(e, 0.90)
		row.P99 = quantile(e, 0.99)
	}

	return row
}

func quantile(e *aggregate.Entry, q float64) *float64 {
	v, ok := e.Quantile(q)
	if !ok {
		return nil
	}
	return &v
}

// DiagnosticsPath returns the file name for chunk index in dir.
func DiagnosticsPath(dir string, index int, format Format) string {
	return filepath.Join(dir, fmt.Sprintf("chunk-%04d.%s", index, format.Ext()))
}

// WriteDiagnostics writes the statistics of one chunk to its own file in
// opts.Dir and returns the path. Rows are ordered byte-wise by key.
func WriteDiagnostics(index int, m *aggregate.SummaryMap, opts DiagnosticsOptions) (string, error) {
	entries := m.Sorted()
	rows := make([]Row, len(entries))
	for i := range entries {
		rows[i] = EntryToRow(&entries[i])
	}

	path := DiagnosticsPath(opts.Dir, index, opts.Format)

	var fill func(w io.Writer) error
	switch opts.Format {
	case FormatParquet:
		codec, err := ParseCompression(opts.Compression)
		if err != nil {
			return "", err
		}
		fill = func(w io.Writer) error { return writeParquet(w, rows, codec) }
	case FormatProtobuf:
		fill = func(w io.Writer) error { return writeProtobuf(w, rows) }
	default:
		fill = func(w io.Writer) error { return writeJSON(w, rows) }
	}

	if err := writeAtomic(path, fill); err != nil {
		return "", fmt.Errorf("%w: diagnostics for chunk %d: %w", errors.ErrWrite, index, err)
	}
	return path, nil
}

// ReadDiagnostics reads a file written by WriteDiagnostics. The format is
// taken from the file extension. Rows come back ordered by key.
func ReadDiagnostics(path string) ([]Row, error) {
	switch filepath.Ext(path) {
	case ".parquet":
		return readParquet(path)
	case ".pb":
		return readProtobuf(path)
	case ".json":
		return readJSON(path)
	default:
		return nil, fmt.Errorf("unknown diagnostics file type: %s", path)
	}
}
