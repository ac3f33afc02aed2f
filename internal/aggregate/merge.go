package aggregate

// Merge folds maps into a fresh accumulator and returns its entries sorted
// byte-wise by key. The inputs are left untouched and nil maps are skipped.
//
// Min and max are exact whatever the order of maps; Sum may differ in the
// last bits between orders because float addition is not associative.
func Merge(maps ...*SummaryMap) []Entry {
	return MergeMaps(maps...).Sorted()
}

// MergeMaps is Merge without the final sort.
func MergeMaps(maps ...*SummaryMap) *SummaryMap {
	acc := &SummaryMap{slots: make([]slot, minSlots)}
	for _, m := range maps {
		if m == nil {
			continue
		}
		for i := range m.entries {
			acc.mergeSensor(m.entries[i].Key, &m.entries[i].Sensor)
		}
	}
	return acc
}
