// Package verify cross-checks a finished report against DuckDB.
//
// DuckDB reads the input file as a ';'-delimited CSV and computes the same
// per-key aggregates with SQL. Min, max and count must agree exactly; the
// average may differ by the configured tolerance because the engine sums
// in a different order.
package verify

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/xtxerr/chunkit/config"
	"github.com/xtxerr/chunkit/internal/aggregate"
	"github.com/xtxerr/chunkit/internal/errors"
	"github.com/xtxerr/chunkit/internal/logging"
)

// Options configures the verifier.
type Options struct {
	// MemoryLimit is passed to DuckDB's memory_limit setting. Empty keeps
	// DuckDB's default.
	MemoryLimit string

	// Tolerance is the allowed absolute difference between averages.
	Tolerance float64
}

// DefaultOptions returns default verifier options.
func DefaultOptions() Options {
	return Options{
		MemoryLimit: config.DefaultVerifyMemoryLimit,
		Tolerance:   config.DefaultVerifyTolerance,
	}
}

// Summary is the reference aggregate of one key.
type Summary struct {
	Key   string
	Min   float64
	Max   float64
	Sum   float64
	Count int64
}

// Mismatch describes one disagreement between the engine and DuckDB.
type Mismatch struct {
	Key    string
	Field  string
	Engine float64
	DuckDB float64
}

// String implements fmt.Stringer.
func (m Mismatch) String() string {
	return fmt.Sprintf("%q %s: engine %v, duckdb %v", m.Key, m.Field, m.Engine, m.DuckDB)
}

// Result holds the outcome of a check.
type Result struct {
	Keys       int
	Records    int64
	Mismatches []Mismatch
}

// OK reports whether the engine and DuckDB agree.
func (r *Result) OK() bool {
	return len(r.Mismatches) == 0
}

// Verifier runs reference queries on an in-memory DuckDB database.
type Verifier struct {
	db   *sql.DB
	opts Options
}

// New opens an in-memory DuckDB database.
func New(opts Options) (*Verifier, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if opts.MemoryLimit != "" {
		_, err = db.Exec(fmt.Sprintf("SET memory_limit='%s'", quote(opts.MemoryLimit)))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("set memory limit: %w", err)
		}
	}

	return &Verifier{db: db, opts: opts}, nil
}

// Close closes the database.
func (v *Verifier) Close() error {
	if v.db != nil {
		return v.db.Close()
	}
	return nil
}

// Summarize aggregates the input file with SQL. Results are ordered by key.
func (v *Verifier) Summarize(ctx context.Context, path string) ([]Summary, error) {
	// Table function arguments are inlined; the path is the only input.
	query := fmt.Sprintf(`
		SELECT name, min(value), max(value), sum(value), count(*)
		FROM read_csv('%s',
			delim = ';',
			quote = '',
			escape = '',
			header = false,
			auto_detect = false,
			columns = {'name': 'VARCHAR', 'value': 'DOUBLE'})
		GROUP BY name
		ORDER BY name
	`, quote(path))

	rows, err := v.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var name sql.NullString
		if err := rows.Scan(&name, &s.Min, &s.Max, &s.Sum, &s.Count); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		s.Key = name.String
		out = append(out, s)
	}

	return out, rows.Err()
}

// Check compares entries with DuckDB's aggregates of the input file.
// A disagreement is returned as errors.ErrVerify together with the result.
func (v *Verifier) Check(ctx context.Context, path string, entries []aggregate.Entry) (*Result, error) {
	log := logging.Component("verify")

	ref, err := v.Summarize(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrVerify, err)
	}

	res := &Result{Keys: len(ref)}
	byKey := make(map[string]*aggregate.Entry, len(entries))
	for i := range entries {
		byKey[entries[i].Key] = &entries[i]
	}

	for _, s := range ref {
		res.Records += s.Count

		e, ok := byKey[s.Key]
		if !ok {
			res.Mismatches = append(res.Mismatches, Mismatch{Key: s.Key, Field: "missing", DuckDB: float64(s.Count)})
			continue
		}
		delete(byKey, s.Key)

		if e.Min != s.Min {
			res.Mismatches = append(res.Mismatches, Mismatch{s.Key, "min", e.Min, s.Min})
		}
		if e.Max != s.Max {
			res.Mismatches = append(res.Mismatches, Mismatch{s.Key, "max", e.Max, s.Max})
		}
		if e.Count != s.Count {
			res.Mismatches = append(res.Mismatches, Mismatch{s.Key, "count", float64(e.Count), float64(s.Count)})
		}
		avg := s.Sum / float64(s.Count)
		if math.Abs(e.Avg()-avg) > v.opts.Tolerance {
			res.Mismatches = append(res.Mismatches, Mismatch{s.Key, "avg", e.Avg(), avg})
		}
	}

	for key, e := range byKey {
		res.Mismatches = append(res.Mismatches, Mismatch{Key: key, Field: "unexpected", Engine: float64(e.Count)})
	}

	if !res.OK() {
		for _, m := range res.Mismatches {
			log.Warn("mismatch", "key", m.Key, "field", m.Field, "engine", m.Engine, "duckdb", m.DuckDB)
		}
		return res, fmt.Errorf("%w: %d mismatches, first: %s", errors.ErrVerify, len(res.Mismatches), res.Mismatches[0])
	}

	log.Debug("report verified", "keys", res.Keys, "records", res.Records)
	return res, nil
}

// Verify opens a verifier, checks entries against path and closes it.
func Verify(ctx context.Context, path string, entries []aggregate.Entry, opts Options) (*Result, error) {
	v, err := New(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrVerify, err)
	}
	defer v.Close()

	return v.Check(ctx, path, entries)
}

func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
