package aggregate

import (
	"iter"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"
)

// Entry is one key of a report with its statistics.
type Entry struct {
	Key string
	Sensor
}

// slot is a cell of the open-addressing table. idx is 1 + the position of
// the entry in SummaryMap.entries; 0 marks an empty slot.
type slot struct {
	hash uint64
	idx  int32
}

// minSlots is the initial table size. It must be a power of two.
const minSlots = 1 << 10

// SummaryMap maps keys to Sensors. Keys are looked up by the xxh3 hash of
// their bytes with linear probing, so a lookup from a []byte does not
// allocate; only the first observation of a key copies it into a string.
//
// A SummaryMap is not safe for concurrent use.
type SummaryMap struct {
	slots   []slot
	entries []Entry
	records int64

	// accuracy > 0 enables a DDSketch per new key
	accuracy float64
}

// NewSummaryMap returns an empty map. accuracy > 0 makes every new Sensor
// track percentiles with that relative accuracy.
func NewSummaryMap(accuracy float64) *SummaryMap {
	return &SummaryMap{
		slots:    make([]slot, minSlots),
		accuracy: accuracy,
	}
}

// Len returns the number of distinct keys.
func (m *SummaryMap) Len() int {
	return len(m.entries)
}

// Records returns the number of observations folded into the map.
func (m *SummaryMap) Records() int64 {
	return m.records
}

// Observe records value for key. key is not retained.
func (m *SummaryMap) Observe(key []byte, value float64) {
	m.records++

	h := xxh3.Hash(key)
	mask := uint64(len(m.slots) - 1)
	for i := h & mask; ; i = (i + 1) & mask {
		s := m.slots[i]
		if s.idx == 0 {
			m.insert(i, h, Entry{Key: string(key), Sensor: newSensor(value, m.accuracy)})
			return
		}
		if s.hash == h && m.entries[s.idx-1].Key == string(key) {
			m.entries[s.idx-1].Add(value)
			return
		}
	}
}

// Get returns the sensor for key.
func (m *SummaryMap) Get(key string) (Sensor, bool) {
	if e := m.find(xxh3.HashString(key), key); e != nil {
		return e.Sensor, true
	}
	return Sensor{}, false
}

// All yields every key with its sensor in unspecified order.
func (m *SummaryMap) All() iter.Seq2[string, Sensor] {
	return func(yield func(string, Sensor) bool) {
		for _, e := range m.entries {
			if !yield(e.Key, e.Sensor) {
				return
			}
		}
	}
}

// Sorted returns a copy of the entries ordered byte-wise by key.
func (m *SummaryMap) Sorted() []Entry {
	out := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = Entry{Key: e.Key, Sensor: e.Sensor.clone()}
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

// mergeSensor folds s into the entry for key, copying it on first sight.
func (m *SummaryMap) mergeSensor(key string, s *Sensor) {
	m.records += s.Count

	h := xxh3.HashString(key)
	mask := uint64(len(m.slots) - 1)
	for i := h & mask; ; i = (i + 1) & mask {
		sl := m.slots[i]
		if sl.idx == 0 {
			m.insert(i, h, Entry{Key: key, Sensor: s.clone()})
			return
		}
		if sl.hash == h && m.entries[sl.idx-1].Key == key {
			m.entries[sl.idx-1].Merge(s)
			return
		}
	}
}

func (m *SummaryMap) find(h uint64, key string) *Entry {
	mask := uint64(len(m.slots) - 1)
	for i := h & mask; ; i = (i + 1) & mask {
		s := m.slots[i]
		if s.idx == 0 {
			return nil
		}
		if s.hash == h && m.entries[s.idx-1].Key == key {
			return &m.entries[s.idx-1]
		}
	}
}

func (m *SummaryMap) insert(i, h uint64, e Entry) {
	m.entries = append(m.entries, e)
	m.slots[i] = slot{hash: h, idx: int32(len(m.entries))}

	// Keep the load factor at or below one half.
	if 2*len(m.entries) > len(m.slots) {
		m.grow()
	}
}

func (m *SummaryMap) grow() {
	slots := make([]slot, 2*len(m.slots))
	mask := uint64(len(slots) - 1)
	for _, s := range m.slots {
		if s.idx == 0 {
			continue
		}
		i := s.hash & mask
		for slots[i].idx != 0 {
			i = (i + 1) & mask
		}
		slots[i] = s
	}
	m.slots = slots
}
