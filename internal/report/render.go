// Package report renders merged statistics and writes them out.
//
// The primary output is one line:
//
//	{A=1.0/2.0/3.0, B=2.0/2.0/2.0}
//
// holding min/avg/max per key with one fractional digit, in the order of
// the entries given (the merger sorts them byte-wise). Per-chunk
// diagnostics files are written by WriteDiagnostics.
package report

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/xtxerr/chunkit/internal/aggregate"
)

// Render returns the report line for entries. No entries render as "{}".
func Render(entries []aggregate.Entry) string {
	var sb strings.Builder
	sb.Grow(2 + len(entries)*24)
	writeTo(&sb, entries)
	return sb.String()
}

// Write writes the report line for entries to w without a trailing newline.
func Write(w io.Writer, entries []aggregate.Entry) error {
	bw := bufio.NewWriter(w)
	writeTo(bw, entries)
	return bw.Flush()
}

type byteWriter interface {
	WriteString(s string) (int, error)
	WriteByte(c byte) error
	Write(p []byte) (int, error)
}

func writeTo(w byteWriter, entries []aggregate.Entry) {
	var num [32]byte

	w.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString(e.Key)
		w.WriteByte('=')
		w.Write(strconv.AppendFloat(num[:0], e.Min, 'f', 1, 64))
		w.WriteByte('/')
		w.Write(strconv.AppendFloat(num[:0], e.Avg(), 'f', 1, 64))
		w.WriteByte('/')
		w.Write(strconv.AppendFloat(num[:0], e.Max, 'f', 1, 64))
	}
	w.WriteByte('}')
}

// FormatValue formats v the way the report does.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
