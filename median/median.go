// Package median implements a fixed-window median filter for noisy
// integer sensor readings. The window grows until full, then slides;
// Reset clears it so stale samples from a dark room are not carried
// into a just-woken bright one.
package median

import (
	"fmt"
	"sort"
)

// Filter is a fixed-size sliding median window. The zero value is not
// usable; construct with New.
type Filter struct {
	window []int
	next   int
	filled int
}

// New creates a filter with the given window size.
func New(size int) (*Filter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("median: invalid window size %d", size)
	}
	return &Filter{window: make([]int, size)}, nil
}

// Reset discards all buffered samples.
func (f *Filter) Reset() {
	f.next = 0
	f.filled = 0
}

// Map inserts sample and returns the median of the samples currently in
// the window.
func (f *Filter) Map(sample int) int {
	f.window[f.next] = sample
	f.next = (f.next + 1) % len(f.window)
	if f.filled < len(f.window) {
		f.filled++
	}

	sorted := make([]int, f.filled)
	copy(sorted, f.window[:f.filled])
	sort.Ints(sorted)
	return sorted[(f.filled-1)/2]
}

// Len reports how many samples the window currently holds.
func (f *Filter) Len() int { return f.filled }
