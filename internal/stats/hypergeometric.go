// Package stats provides the draw probabilities used by the curve analysis.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// DefaultOpeningHandSize is the number of cards in an opening hand.
const DefaultOpeningHandSize = 7

// Exactly returns the probability that a sample of the given size, drawn
// without replacement from population items of which successes are
// successes, contains exactly k successes.
// Degenerate inputs (empty population, impossible counts) yield 0.
func Exactly(population, successes, sample, k int) float64 {
	if population <= 0 || successes < 0 || sample < 0 {
		return 0
	}
	successes = min(successes, population)
	sample = min(sample, population)
	failures := population - successes
	if k < 0 || k > sample || k > successes || sample-k > failures {
		return 0
	}

	logP := combin.LogGeneralizedBinomial(float64(successes), float64(k)) +
		combin.LogGeneralizedBinomial(float64(failures), float64(sample-k)) -
		combin.LogGeneralizedBinomial(float64(population), float64(sample))
	return math.Exp(logP)
}

// AtLeast returns the probability of drawing at least k successes.
// An empty population gives 0; k <= 0 otherwise gives 1; k larger than the
// sample or the number of successes gives 0.
func AtLeast(population, successes, sample, k int) float64 {
	if population <= 0 {
		return 0
	}
	if k <= 0 {
		return 1
	}
	sample = min(sample, population)
	if k > sample || k > successes {
		return 0
	}

	p := 0.0
	for i := k; i <= min(sample, successes); i++ {
		p += Exactly(population, successes, sample, i)
	}
	return math.Min(p, 1)
}

// Expected returns the mean number of successes in the sample.
func Expected(population, successes, sample int) float64 {
	if population <= 0 {
		return 0
	}
	return float64(sample) * float64(successes) / float64(population)
}

// HandSizeForTurn returns how many cards have been seen when casting a spell
// of the given mana value on curve: the opening hand, plus one draw for every
// turn after the second.
func HandSizeForTurn(openingHand, manaValue int) int {
	return openingHand + max(0, manaValue-2)
}
