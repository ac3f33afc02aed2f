// Package aggregate turns chunks of "<key>;<value>\n" records into per-key
// statistics and folds the per-chunk results into one sorted answer.
//
// Aggregate is a pure function of its input bytes: it never touches shared
// state, so any number of chunks may be aggregated concurrently. Merge is
// commutative and associative over the resulting maps, so the final report
// does not depend on how the input was partitioned (up to floating-point
// rounding of Sum).
package aggregate

import (
	"bytes"
	"strconv"

	"github.com/xtxerr/chunkit/internal/errors"
)

// Options configures Aggregate.
type Options struct {
	// BaseOffset is the position of data[0] in the whole input. It only
	// affects the offsets reported in parse errors.
	BaseOffset int

	// PercentileAccuracy > 0 tracks a DDSketch per key with that relative
	// accuracy. Zero disables percentiles.
	PercentileAccuracy float64
}

// Aggregate scans data once and returns the statistics of every key in it.
//
// Empty lines are skipped. A final record without a trailing '\n' is
// included. A line without ';' or with a value that is not a number fails
// the whole chunk with errors.ErrParse. A percentile accuracy outside
// [0, 1) fails with errors.ErrInvalidConfig before any byte is read.
func Aggregate(data []byte, opts Options) (*SummaryMap, error) {
	if !(opts.PercentileAccuracy >= 0 && opts.PercentileAccuracy < 1) {
		return nil, errors.NewInvalidValue("percentile accuracy", opts.PercentileAccuracy, "must be in [0, 1)")
	}
	m := NewSummaryMap(opts.PercentileAccuracy)

	for start := 0; start < len(data); {
		end := bytes.IndexByte(data[start:], '\n')
		if end < 0 {
			end = len(data)
		} else {
			end += start
		}

		if line := data[start:end]; len(line) > 0 {
			sep := bytes.IndexByte(line, ';')
			if sep < 0 {
				return nil, errors.NewParse(opts.BaseOffset+start, line, "missing ';'")
			}
			value, ok := parseValue(line[sep+1:])
			if !ok {
				return nil, errors.NewParse(opts.BaseOffset+start+sep+1, line, "invalid number")
			}
			m.Observe(line[:sep], value)
		}

		start = end + 1
	}

	return m, nil
}

// maxFastDigits bounds the integer part handled without strconv, keeping
// the fixed-point accumulator exact in a float64 mantissa.
const maxFastDigits = 15

// parseValue parses a decimal number. The common shape -?digits.digit is
// decoded as fixed point; every other shape goes through strconv, restricted
// to decimal notation so that "nan", "inf" and hex floats are rejected.
func parseValue(b []byte) (float64, bool) {
	if v, ok := parseTenths(b); ok {
		return v, true
	}
	if !isDecimal(b) {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// isDecimal reports whether b holds only the bytes of a decimal float
// literal and at least one digit.
func isDecimal(b []byte) bool {
	digits := false
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case c == '+', c == '-', c == '.', c == 'e', c == 'E':
		default:
			return false
		}
	}
	return digits
}

func parseTenths(b []byte) (float64, bool) {
	neg := false
	if len(b) > 0 && b[0] == '-' {
		neg = true
		b = b[1:]
	}
	// digits '.' digit
	if len(b) < 3 || len(b)-2 > maxFastDigits || b[len(b)-2] != '.' {
		return 0, false
	}

	var n int64
	for i, c := range b {
		if i == len(b)-2 {
			continue
		}
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
	}

	// n and 10 are exact, so the quotient is the correctly rounded value.
	v := float64(n) / 10
	if neg {
		v = -v
	}
	return v, true
}
