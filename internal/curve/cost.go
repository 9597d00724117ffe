package curve

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	// Generic is the synthetic cost symbol for mana any land can pay.
	Generic = "generic"

	// SymbolX is the variable cost symbol resolved before analysis.
	SymbolX = "X"
)

// costPattern matches a whole mana cost in Scryfall notation, e.g. "{2}{U}{U}".
var costPattern = regexp.MustCompile(`^(\{[^{}]+\})+$`)

// Pip is one symbol of a mana cost and the number of times it appears.
type Pip struct {
	Symbol string
	Count  int
}

// Cost is a structured mana cost. Pips keep the order in which symbols were
// first seen; payment uses that order to break ties between symbols of equal
// length, so it must not be replaced by a map.
type Cost []Pip

// ParseCost parses a mana cost such as "{1}{G}", "{X}{R}{R}" or "{W/U}{W/U}".
// Numbers accumulate into the generic pip, every other symbol is counted
// verbatim. Notation that cannot be parsed yields an empty cost.
func ParseCost(notation string) Cost {
	notation = strings.TrimSpace(notation)
	if notation == "" || !costPattern.MatchString(notation) {
		return Cost{}
	}

	var cost Cost
	for _, symbol := range strings.Split(notation[1:len(notation)-1], "}{") {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			return Cost{}
		}
		if n, err := strconv.Atoi(symbol); err == nil {
			if n > 0 {
				cost.add(Generic, n)
			}
			continue
		}
		cost.add(symbol, 1)
	}
	return cost
}

// add increments symbol by n, appending a new pip when the symbol is unseen.
func (c *Cost) add(symbol string, n int) {
	for i := range *c {
		if (*c)[i].Symbol == symbol {
			(*c)[i].Count += n
			return
		}
	}
	*c = append(*c, Pip{Symbol: symbol, Count: n})
}

// Get returns the count for symbol, or 0 when absent.
func (c Cost) Get(symbol string) int {
	for _, p := range c {
		if p.Symbol == symbol {
			return p.Count
		}
	}
	return 0
}

// Has reports whether the symbol appears in the cost at all.
func (c Cost) Has(symbol string) bool {
	for _, p := range c {
		if p.Symbol == symbol {
			return true
		}
	}
	return false
}

// ManaValue is the total of every pip.
func (c Cost) ManaValue() int {
	total := 0
	for _, p := range c {
		total += p.Count
	}
	return total
}

// Unresolved reports whether the cost still carries an X.
func (c Cost) Unresolved() bool {
	return c.Has(SymbolX)
}

// ResolveX folds x times the X count into generic and drops the X pip.
// A cost without X is returned unchanged. The receiver is never modified.
func (c Cost) ResolveX(x int) Cost {
	if !c.Unresolved() {
		return c
	}
	xCount := c.Get(SymbolX)

	resolved := make(Cost, 0, len(c))
	for _, p := range c {
		if p.Symbol != SymbolX {
			resolved = append(resolved, p)
		}
	}
	resolved.add(Generic, xCount*x)
	return resolved
}

// Signature renders the cost canonically: symbols sorted by name, zero
// counts omitted. Two costs with equal signatures are payable by the same
// land subsets.
func (c Cost) Signature() string {
	pips := make([]Pip, 0, len(c))
	for _, p := range c {
		if p.Count > 0 {
			pips = append(pips, p)
		}
	}
	sort.Slice(pips, func(i, j int) bool { return pips[i].Symbol < pips[j].Symbol })

	var b strings.Builder
	for i, p := range pips {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Symbol)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(p.Count))
	}
	return b.String()
}
