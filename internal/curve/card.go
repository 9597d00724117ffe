// Package curve estimates how often each spell of a deck can be cast on the
// turn matching its mana value.
//
// The engine enumerates every land subset a player could realistically hold,
// asks an Evaluator whether the subset pays the spell's cost, memoizes the
// answer per (cost, land names) pair and folds the pass rate together with a
// hypergeometric draw probability.
package curve

import "strings"

// Land is a mana source after deck construction fixups.
type Land struct {
	Name     string
	TypeLine string

	// Colors lists the color symbols the land can tap for.
	Colors []string

	// EntersTapped is set when the land cannot tap the turn it is played.
	EntersTapped bool

	// ProducesMana is false for lands with no resolvable colors. Hands
	// holding one are never counted as castable.
	ProducesMana bool

	// FetchTargets names the land types a fetchland can search for.
	FetchTargets []string
}

// HasColor reports whether the land taps for the color symbol.
func (l Land) HasColor(color string) bool {
	for _, c := range l.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// IsMono reports whether the land taps for exactly the given color and nothing else.
func (l Land) IsMono(color string) bool {
	return len(l.Colors) == 1 && l.Colors[0] == color
}

// IsFetchland reports whether the land derives its colors from other lands.
func (l Land) IsFetchland() bool {
	return len(l.FetchTargets) > 0
}

// HasType reports whether the type line contains the given subtype or supertype.
func (l Land) HasType(t string) bool {
	return strings.Contains(l.TypeLine, t)
}

// Spell is a castable card face with a resolved cost.
type Spell struct {
	Name string

	// ManaCost is the raw Scryfall notation, kept for cache keys and output.
	ManaCost string

	Cost Cost
}

// ManaValue returns the spell's total cost.
func (s Spell) ManaValue() int {
	return s.Cost.ManaValue()
}

// Signature identifies the spell's payment requirement for memoization.
// It carries the raw notation so that two spells sharing a mana value but
// not their colors never collide.
func (s Spell) Signature() string {
	return s.ManaCost + "|" + s.Cost.Signature()
}

// Deck is the resolved input of an analysis.
type Deck struct {
	Spells []Spell
	Lands  []Land

	// Size is the number of cards in the main deck, lands included.
	Size int
}

// LandCount returns the number of land copies in the pool.
func (d *Deck) LandCount() int {
	return len(d.Lands)
}
