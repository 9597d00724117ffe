package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		input     string
		expected  Cost
		manaValue int
	}{
		{"", Cost{}, 0},
		{"{1}", Cost{{Generic, 1}}, 1},
		{"{G}", Cost{{"G", 1}}, 1},
		{"{1}{G}", Cost{{Generic, 1}, {"G", 1}}, 2},
		{"{2}{R}{R}", Cost{{Generic, 2}, {"R", 2}}, 4},
		{"{X}{R}", Cost{{"X", 1}, {"R", 1}}, 2},
		{"{W}{U}{B}{R}{G}", Cost{{"W", 1}, {"U", 1}, {"B", 1}, {"R", 1}, {"G", 1}}, 5},
		{"{W/U}{W/U}", Cost{{"W/U", 2}}, 2},
		{"{0}", Cost(nil), 0},
		{"{u}", Cost{{"U", 1}}, 1},
		{"{10}{G}", Cost{{Generic, 10}, {"G", 1}}, 11},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseCost(tt.input)
			assert.Equal(t, tt.manaValue, got.ManaValue())
			if len(tt.expected) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseCost_Malformed(t *testing.T) {
	for _, input := range []string{"1G", "{1}{G", "{}", "{1}}{G}", "G}"} {
		t.Run(input, func(t *testing.T) {
			got := ParseCost(input)
			assert.Empty(t, got)
			assert.Zero(t, got.ManaValue())
		})
	}
}

func TestCost_ResolveX(t *testing.T) {
	cost := Cost{{"X", 1}, {Generic, 0}}

	resolved := cost.ResolveX(3)

	assert.Equal(t, Cost{{Generic, 3}}, resolved)
	assert.Equal(t, 3, resolved.ManaValue())
	assert.False(t, resolved.Has(SymbolX))
	// The original cost is left untouched.
	assert.True(t, cost.Has(SymbolX))
}

func TestCost_ResolveX_AddsToGeneric(t *testing.T) {
	cost := ParseCost("{X}{X}{1}{R}")

	resolved := cost.ResolveX(2)

	assert.Equal(t, 5, resolved.Get(Generic))
	assert.Equal(t, 1, resolved.Get("R"))
	assert.Equal(t, 6, resolved.ManaValue())
	assert.False(t, resolved.Unresolved())
}

func TestCost_ResolveX_NoX(t *testing.T) {
	cost := ParseCost("{1}{U}")
	assert.Equal(t, cost, cost.ResolveX(5))
}

func TestCost_Signature(t *testing.T) {
	a := Cost{{"U", 1}, {Generic, 1}}
	b := Cost{{Generic, 1}, {"U", 1}, {"G", 0}}
	c := Cost{{Generic, 1}, {"G", 1}}

	assert.Equal(t, a.Signature(), b.Signature())
	assert.NotEqual(t, a.Signature(), c.Signature())
	assert.Equal(t, "U:1,generic:1", a.Signature())
}
