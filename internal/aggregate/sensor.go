package aggregate

import (
	"fmt"

	"github.com/DataDog/sketches-go/ddsketch"
)

// Sensor holds the running statistics of one key.
// It is seeded by the key's first observation, so Count is at least 1 and
// Min <= Max for every Sensor stored in a SummaryMap.
type Sensor struct {
	Min   float64
	Max   float64
	Sum   float64
	Count int64

	// DDSketch for percentiles (nil if disabled)
	sketch *ddsketch.DDSketch
}

func newSensor(value float64, accuracy float64) Sensor {
	s := Sensor{Min: value, Max: value, Sum: value, Count: 1}
	if accuracy > 0 {
		sketch, err := ddsketch.NewDefaultDDSketch(accuracy)
		if err != nil {
			// Aggregate rejects accuracies ddsketch cannot honor.
			panic(fmt.Sprintf("aggregate: percentile accuracy %v: %v", accuracy, err))
		}
		sketch.Add(value)
		s.sketch = sketch
	}
	return s
}

// Add folds one observation into the sensor.
func (s *Sensor) Add(value float64) {
	if value < s.Min {
		s.Min = value
	}
	if value > s.Max {
		s.Max = value
	}
	s.Sum += value
	s.Count++

	if s.sketch != nil {
		s.sketch.Add(value)
	}
}

// Merge folds other into s. Percentiles survive only if both sides track them.
func (s *Sensor) Merge(other *Sensor) {
	if other.Min < s.Min {
		s.Min = other.Min
	}
	if other.Max > s.Max {
		s.Max = other.Max
	}
	s.Sum += other.Sum
	s.Count += other.Count

	switch {
	case s.sketch != nil && other.sketch != nil:
		if err := s.sketch.MergeWith(other.sketch); err != nil {
			s.sketch = nil
		}
	case s.sketch != nil:
		s.sketch = nil
	}
}

// clone returns a copy that shares no mutable state with s.
func (s Sensor) clone() Sensor {
	if s.sketch != nil {
		s.sketch = s.sketch.Copy()
	}
	return s
}

// Avg returns Sum / Count.
func (s Sensor) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// HasPercentiles reports whether the sensor tracked a sketch.
func (s Sensor) HasPercentiles() bool {
	return s.sketch != nil
}

// Quantile returns the approximate value at quantile q in [0, 1].
// ok is false when percentiles were not tracked.
func (s Sensor) Quantile(q float64) (v float64, ok bool) {
	if s.sketch == nil {
		return 0, false
	}
	v, err := s.sketch.GetValueAtQuantile(q)
	if err != nil {
		return 0, false
	}
	return v, true
}
