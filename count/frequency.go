package count

import (
	"cmp"
	"slices"
)

// Frequency maps byte values to occurrence counts. Values that never
// occur are absent, never zero.
type Frequency map[byte]uint64

// Entry is one (value, count) pair of a Frequency.
type Entry struct {
	Value byte
	Count uint64
}

// Total returns the sum of all counts. On a freshly filled buffer this
// equals the content length.
func (f Frequency) Total() uint64 {
	var n uint64
	for _, c := range f {
		n += c
	}
	return n
}

// Unique returns the number of distinct byte values.
func (f Frequency) Unique() int { return len(f) }

// ByCount returns entries sorted by descending count. Equal counts
// order by ascending value, so the result is stable across runs.
func (f Frequency) ByCount() []Entry {
	entries := f.entries()
	slices.SortFunc(entries, func(a, b Entry) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return entries
}

// ByValue returns entries sorted by ascending byte value.
func (f Frequency) ByValue() []Entry {
	entries := f.entries()
	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Value, b.Value)
	})
	return entries
}

func (f Frequency) entries() []Entry {
	entries := make([]Entry, 0, len(f))
	for v, c := range f {
		entries = append(entries, Entry{Value: v, Count: c})
	}
	return entries
}

func newFrequency(counts *[256]uint64) Frequency {
	freq := make(Frequency)
	for v, c := range counts {
		if c > 0 {
			freq[byte(v)] = c
		}
	}
	return freq
}
