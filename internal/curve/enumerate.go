package curve

import (
	"iter"

	"gonum.org/v1/gonum/stat/combin"
)

// Subsets returns a lazy sequence over every subset of items whose size lies
// in [minSize, maxSize]. Subsets are produced by size, then in lexicographic
// index order. The yielded slice is reused between iterations and must be
// copied by callers that keep it. Ranging over the sequence again restarts it.
func Subsets[T any](items []T, minSize, maxSize int) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		n := len(items)
		if minSize < 0 {
			minSize = 0
		}
		if maxSize > n {
			maxSize = n
		}
		if minSize > maxSize {
			return
		}

		buf := make([]T, maxSize)
		idx := make([]int, maxSize)
		for k := minSize; k <= maxSize; k++ {
			gen := combin.NewCombinationGenerator(n, k)
			for gen.Next() {
				for i, j := range gen.Combination(idx[:k]) {
					buf[i] = items[j]
				}
				if !yield(buf[:k]) {
					return
				}
			}
		}
	}
}

// Count returns how many subsets of an n-element collection Subsets yields
// for the window [minSize, maxSize]. The analyzer sizes a run with it before
// enumerating.
func Count(n, minSize, maxSize int) int {
	if minSize < 0 {
		minSize = 0
	}
	if maxSize > n {
		maxSize = n
	}
	total := 0
	for k := minSize; k <= maxSize; k++ {
		total += combin.Binomial(n, k)
	}
	return total
}
