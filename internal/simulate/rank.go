package simulate

import "sort"

// rankPermutation returns indices such that values[indices[0]],
// values[indices[1]], ... is in ascending order. Ties keep the first
// occurrence first (stable sort).
func rankPermutation(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})
	return idx
}

// invertPermutation returns the inverse of p. When p is the rank
// permutation of some values, the inverse maps each position to its
// rank, which is what realigns a sorted lookup with the original order
// (the double-argsort trick).
func invertPermutation(p []int) []int {
	inv := make([]int, len(p))
	for pos, src := range p {
		inv[src] = pos
	}
	return inv
}
