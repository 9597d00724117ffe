package curve

import (
	"fmt"
	"sort"
)

// Evaluator decides whether a set of lands pays a cost.
// Implementations must be pure: the same input always yields the same answer,
// and lands must not be modified or retained.
type Evaluator interface {
	Name() string
	CanPay(lands []Land, cost Cost) bool
}

// Strategy names an Evaluator implementation.
type Strategy string

const (
	// StrategyGreedy assigns lands to cost units greedily. This is the
	// default and the reference behavior.
	StrategyGreedy Strategy = "greedy"

	// StrategyExactHand runs the greedy assignment against every sub-hand
	// holding exactly mana-value lands and succeeds if any of them pays.
	StrategyExactHand Strategy = "exact-hand"

	// StrategyMatching solves the assignment exactly as a bipartite matching.
	StrategyMatching Strategy = "matching"
)

// ParseStrategy maps a configuration value to a Strategy. The empty string
// selects StrategyGreedy.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "", StrategyGreedy:
		return StrategyGreedy, nil
	case StrategyExactHand:
		return StrategyExactHand, nil
	case StrategyMatching:
		return StrategyMatching, nil
	default:
		return "", fmt.Errorf("unknown evaluation strategy %q", name)
	}
}

// NewEvaluator returns the Evaluator for a strategy.
func NewEvaluator(s Strategy) (Evaluator, error) {
	switch s {
	case "", StrategyGreedy:
		return GreedyEvaluator{}, nil
	case StrategyExactHand:
		return ExactHandEvaluator{}, nil
	case StrategyMatching:
		return MatchingEvaluator{}, nil
	default:
		return nil, fmt.Errorf("unknown evaluation strategy %q", s)
	}
}

// CanPay evaluates cost against lands with the default greedy policy.
func CanPay(lands []Land, cost Cost) bool {
	return GreedyEvaluator{}.CanPay(lands, cost)
}

// GreedyEvaluator pays each cost unit with the least flexible land available.
//
// Symbols are processed by name length, shortest first, so colors are paid
// before generic. Each colored unit takes a mono-colored land of that color
// when one remains, otherwise the first remaining land producing it; generic
// units take whatever land is first in the pool. The pool is ordered by
// number of colors. The heuristic can miss assignments an exact matcher
// would find.
type GreedyEvaluator struct{}

// Name implements Evaluator.
func (GreedyEvaluator) Name() string { return string(StrategyGreedy) }

// CanPay implements Evaluator.
func (GreedyEvaluator) CanPay(lands []Land, cost Cost) bool {
	if !hasRequiredColors(lands, cost) || !hasUntapped(lands) {
		return false
	}
	return payGreedy(lands, cost)
}

// payGreedy runs the assignment without the availability prechecks.
func payGreedy(lands []Land, cost Cost) bool {
	pool := make([]Land, len(lands))
	copy(pool, lands)
	sort.SliceStable(pool, func(i, j int) bool {
		return len(pool[i].Colors) < len(pool[j].Colors)
	})

	order := make(Cost, len(cost))
	copy(order, cost)
	sort.SliceStable(order, func(i, j int) bool {
		return len(order[i].Symbol) < len(order[j].Symbol)
	})

	usedUntapped := false
	for _, pip := range order {
		for i := 0; i < pip.Count; i++ {
			at := pickLand(pool, pip.Symbol)
			if at < 0 {
				return false
			}
			if !pool[at].EntersTapped {
				usedUntapped = true
			}
			pool = append(pool[:at], pool[at+1:]...)
		}
	}
	return usedUntapped
}

// pickLand returns the index of the land that should pay one unit of symbol,
// or -1 when none can.
func pickLand(pool []Land, symbol string) int {
	if len(pool) == 0 {
		return -1
	}
	if symbol == Generic {
		return 0
	}
	for i, l := range pool {
		if l.IsMono(symbol) {
			return i
		}
	}
	for i, l := range pool {
		if l.HasColor(symbol) {
			return i
		}
	}
	return -1
}

// hasRequiredColors reports whether every colored symbol of cost is produced
// by at least one land, tapped or not.
func hasRequiredColors(lands []Land, cost Cost) bool {
	for _, pip := range cost {
		if pip.Symbol == Generic || pip.Count == 0 {
			continue
		}
		found := false
		for _, l := range lands {
			if l.HasColor(pip.Symbol) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func hasUntapped(lands []Land) bool {
	for _, l := range lands {
		if !l.EntersTapped {
			return true
		}
	}
	return false
}

// ExactHandEvaluator checks every sub-hand of exactly mana-value lands with
// the greedy policy. Extra lands in a hand then never steal a unit from a
// land that would have been better spent.
type ExactHandEvaluator struct{}

// Name implements Evaluator.
func (ExactHandEvaluator) Name() string { return string(StrategyExactHand) }

// CanPay implements Evaluator.
func (ExactHandEvaluator) CanPay(lands []Land, cost Cost) bool {
	if !hasRequiredColors(lands, cost) || !hasUntapped(lands) {
		return false
	}
	size := cost.ManaValue()
	if size > len(lands) {
		return false
	}
	for hand := range Subsets(lands, size, size) {
		if payGreedy(hand, cost) {
			return true
		}
	}
	return false
}

// MatchingEvaluator finds a complete assignment of cost units to distinct
// lands whenever one exists, with at least one untapped land spent.
type MatchingEvaluator struct{}

// Name implements Evaluator.
func (MatchingEvaluator) Name() string { return string(StrategyMatching) }

// CanPay implements Evaluator.
func (MatchingEvaluator) CanPay(lands []Land, cost Cost) bool {
	if !hasRequiredColors(lands, cost) || !hasUntapped(lands) {
		return false
	}
	units := expandUnits(cost)
	if len(units) == 0 || len(units) > len(lands) {
		return false
	}

	// Pin each untapped land to one unit it can pay, then match the rest.
	for li, land := range lands {
		if land.EntersTapped {
			continue
		}
		tried := make(map[string]bool)
		for ui, symbol := range units {
			if tried[symbol] || !canServe(land, symbol) {
				continue
			}
			tried[symbol] = true
			if completeMatching(lands, units, li, ui) {
				return true
			}
		}
	}
	return false
}

func expandUnits(cost Cost) []string {
	units := make([]string, 0, cost.ManaValue())
	for _, pip := range cost {
		for i := 0; i < pip.Count; i++ {
			units = append(units, pip.Symbol)
		}
	}
	return units
}

func canServe(land Land, symbol string) bool {
	return symbol == Generic || land.HasColor(symbol)
}

// completeMatching reports whether every unit except skipUnit can be paid by
// a distinct land other than skipLand. It uses augmenting paths (Kuhn).
func completeMatching(lands []Land, units []string, skipLand, skipUnit int) bool {
	owner := make([]int, len(lands))
	for i := range owner {
		owner[i] = -1
	}
	owner[skipLand] = skipUnit

	var augment func(u int, seen []bool) bool
	augment = func(u int, seen []bool) bool {
		for li := range lands {
			if li == skipLand || seen[li] || !canServe(lands[li], units[u]) {
				continue
			}
			seen[li] = true
			if owner[li] < 0 || augment(owner[li], seen) {
				owner[li] = u
				return true
			}
		}
		return false
	}

	for u := range units {
		if u == skipUnit {
			continue
		}
		if !augment(u, make([]bool, len(lands))) {
			return false
		}
	}
	return true
}
