package config

import (
	"runtime"
)

// Resolve returns the engine settings with every zero value replaced by
// its effective default: workers become GOMAXPROCS, chunks become one per
// worker, grain becomes 1.
func (c EngineConfig) Resolve() EngineConfig {
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Chunks <= 0 {
		c.Chunks = c.Workers
	}
	if c.Grain <= 0 {
		c.Grain = 1
	}
	return c
}

// PercentileAccuracy returns the sketch accuracy to use, or 0 when
// percentiles are disabled.
func (c PercentileConfig) PercentileAccuracy() float64 {
	if !c.Enabled {
		return 0
	}
	return c.Accuracy
}
