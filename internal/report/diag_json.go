package report

import (
	"io"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-json"
)

// JSON diagnostics are one object keyed by name.

func writeJSON(w io.Writer, rows []Row) error {
	byKey := make(map[string]Row, len(rows))
	for _, r := range rows {
		byKey[r.Key] = r
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(byKey)
}

func readJSON(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var byKey map[string]Row
	if err := json.Unmarshal(data, &byKey); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(byKey))
	for k, r := range byKey {
		r.Key = k
		rows = append(rows, r)
	}
	slices.SortFunc(rows, func(a, b Row) int { return strings.Compare(a.Key, b.Key) })
	return rows, nil
}
