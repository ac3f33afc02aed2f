package pipeline

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Stats describes one run.
type Stats struct {
	RunID string

	// Input
	Bytes  int64
	Mapped bool

	// Engine
	Chunks  int
	Workers int
	Records int64
	Keys    int

	// Diagnostics lists the per-chunk files, in chunk order.
	Diagnostics []string

	// Stage timings
	MapTime         time.Duration
	SplitTime       time.Duration
	AggregateTime   time.Duration
	DiagnosticsTime time.Duration
	MergeTime       time.Duration
	WriteTime       time.Duration
	VerifyTime      time.Duration
	Total           time.Duration
}

// Throughput returns the input rate over the whole run, e.g. "1.2 GB/s".
func (s Stats) Throughput() string {
	if s.Total <= 0 {
		return "n/a"
	}
	perSec := float64(s.Bytes) / s.Total.Seconds()
	return humanize.Bytes(uint64(perSec)) + "/s"
}
