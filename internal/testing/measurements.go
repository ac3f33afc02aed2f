package testing

import (
	"bytes"
	"math/rand"
	"sort"
	"strconv"
)

// Stations is the key pool used by GenerateMeasurements. It mixes ASCII and
// multi-byte names so byte-wise ordering is exercised.
var Stations = []string{
	"Abha", "Abidjan", "Abéché", "Accra", "Addis Ababa", "Bergen", "Bulawayo",
	"Lodwar", "Ouarzazate", "St. John's", "Tamale", "Whitehorse", "Zürich",
	"Ürümqi", "İzmir", "a", "Ab",
}

// GenerateMeasurements returns lines "<station>;<value>\n" drawn from the
// first keys stations (all of them when keys is out of range). Values lie in
// [-99.9, 99.9] with exactly one fractional digit.
func GenerateMeasurements(rng *rand.Rand, lines, keys int) []byte {
	if keys <= 0 || keys > len(Stations) {
		keys = len(Stations)
	}

	var buf bytes.Buffer
	for i := 0; i < lines; i++ {
		buf.WriteString(Stations[rng.Intn(keys)])
		buf.WriteByte(';')
		buf.WriteString(FormatTenths(rng.Intn(1999) - 999))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// FormatTenths formats an integer number of tenths as a one-decimal number.
func FormatTenths(t int) string {
	sign := ""
	if t < 0 {
		sign = "-"
		t = -t
	}
	return sign + strconv.Itoa(t/10) + "." + strconv.Itoa(t%10)
}

// RefStats is the reference result for one key.
type RefStats struct {
	Min   float64
	Max   float64
	Sum   float64
	Count int64
}

// Reference aggregates buf line by line with no tricks. It is the oracle
// the engine is compared against. Empty lines are skipped, a final line
// without '\n' is included, and malformed lines panic.
func Reference(buf []byte) map[string]RefStats {
	out := make(map[string]RefStats)

	for _, line := range bytes.Split(buf, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}
		sep := bytes.IndexByte(line, ';')
		if sep < 0 {
			panic("reference: no separator in " + strconv.Quote(string(line)))
		}
		v, err := strconv.ParseFloat(string(line[sep+1:]), 64)
		if err != nil {
			panic("reference: " + err.Error())
		}

		key := string(line[:sep])
		s, ok := out[key]
		if !ok {
			out[key] = RefStats{Min: v, Max: v, Sum: v, Count: 1}
			continue
		}
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
		s.Sum += v
		s.Count++
		out[key] = s
	}

	return out
}

// SortedKeys returns the keys of m in byte-wise order.
func SortedKeys(m map[string]RefStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
