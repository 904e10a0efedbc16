package distribution

import (
	"cmp"
	"slices"
)

// Tally counts observations by exact output string.
type Tally map[string]int

// Entry is one row of a sorted Tally.
type Entry struct {
	Name  string
	Count int
}

func (t Tally) Add(name string) {
	t[name]++
}

// Total is the number of observations, the successful run count.
func (t Tally) Total() int {
	total := 0
	for _, c := range t {
		total += c
	}
	return total
}

// Sorted returns the entries by descending count, then name.
func (t Tally) Sorted() []Entry {
	entries := make([]Entry, 0, len(t))
	for name, count := range t {
		entries = append(entries, Entry{Name: name, Count: count})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return entries
}
