package common

import (
	"sort"
)

// Percentile returns the p-th percentile of input, for p in [0, 1], using
// linear interpolation between order statistics. The second return value is
// false when the input is empty, in which case the percentile is undefined.
func Percentile(input []int, p float64) (float64, bool) {
	if len(input) == 0 {
		return 0, false
	}

	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}

	// Start by sorting a copy of the slice
	s := make([]int, len(input))
	copy(s, input)
	sort.Ints(s)

	pos := p * float64(len(s)-1)
	lower := int(pos)
	frac := pos - float64(lower)

	if lower+1 >= len(s) {
		return float64(s[len(s)-1]), true
	}

	return float64(s[lower]) + frac*float64(s[lower+1]-s[lower]), true
}
