package report

import (
	"io"
	"os"
	"slices"
	"strings"

	"github.com/xtxerr/chunkit/internal/errors"
	"github.com/xtxerr/chunkit/internal/wire"
)

// Protobuf diagnostics are a single length-delimited google.protobuf.Struct
// keyed by name; each value is a Struct of the row's statistics.

func writeProtobuf(w io.Writer, rows []Row) error {
	byKey := make(map[string]any, len(rows))
	for _, r := range rows {
		fields := map[string]any{
			"min":   r.Min,
			"avg":   r.Avg,
			"max":   r.Max,
			"count": r.Count,
		}
		if r.P50 != nil {
			fields["p50"] = *r.P50
		}
		if r.P90 != nil {
			fields["p90"] = *r.P90
		}
		if r.P99 != nil {
			fields["p99"] = *r.P99
		}
		byKey[r.Key] = fields
	}

	return wire.NewWriter(w).WriteMap(byKey)
}

func readProtobuf(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}
	defer f.Close()

	msg, err := wire.NewReader(f).Read()
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(msg.GetFields()))
	for key, v := range msg.GetFields() {
		fields := v.GetStructValue().GetFields()
		row := Row{
			Key:   key,
			Min:   fields["min"].GetNumberValue(),
			Avg:   fields["avg"].GetNumberValue(),
			Max:   fields["max"].GetNumberValue(),
			Count: int64(fields["count"].GetNumberValue()),
		}
		if p, ok := fields["p50"]; ok {
			row.P50 = ptr(p.GetNumberValue())
		}
		if p, ok := fields["p90"]; ok {
			row.P90 = ptr(p.GetNumberValue())
		}
		if p, ok := fields["p99"]; ok {
			row.P99 = ptr(p.GetNumberValue())
		}
		rows = append(rows, row)
	}

	slices.SortFunc(rows, func(a, b Row) int { return strings.Compare(a.Key, b.Key) })
	return rows, nil
}

func ptr(v float64) *float64 {
	return &v
}
