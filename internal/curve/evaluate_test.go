package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func land(name string, tapped bool, colors ...string) Land {
	return Land{
		Name:         name,
		Colors:       colors,
		EntersTapped: tapped,
		ProducesMana: len(colors) > 0,
	}
}

var (
	island       = land("Island", false, "U")
	forest       = land("Forest", false, "G")
	plains       = land("Plains", false, "W")
	tappedIsland = land("Tapped Island", true, "U")
	tappedForest = land("Tapped Forest", true, "G")
	tundra       = land("Tundra", false, "W", "U")
	tappedTundra = land("Tapped Tundra", true, "W", "U")
	badlands     = land("Badlands", false, "B", "R")
	underground  = land("Underground Sea", false, "U", "B")
)

func TestGreedy_CanPay(t *testing.T) {
	tests := []struct {
		name  string
		lands []Land
		cost  string
		want  bool
	}{
		{"mono color", []Land{island, forest}, "{1}{U}", true},
		{"missing color", []Land{forest, forest}, "{1}{U}", false},
		{"double color", []Land{island, island}, "{U}{U}", true},
		{"double color short", []Land{island, forest}, "{U}{U}", false},
		{"not enough lands", []Land{island}, "{1}{U}", false},
		{"dual land for second color", []Land{island, tundra}, "{W}{U}", true},
		{"generic only", []Land{forest, forest, plains}, "{3}", true},
		{"tapped land spent, untapped left over", []Land{tappedIsland, forest}, "{U}", false},
		{"untapped land paying generic", []Land{tappedIsland, forest}, "{1}{U}", true},
		{"hybrid symbol never matches", []Land{tundra, tundra}, "{W/U}", false},
		{"zero cost needs a spent untapped land", []Land{island, forest}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPay(tt.lands, ParseCost(tt.cost)))
		})
	}
}

func TestGreedy_AllTappedNeverPays(t *testing.T) {
	hands := [][]Land{
		{tappedIsland},
		{tappedIsland, tappedForest},
		{tappedTundra, tappedIsland, tappedForest},
	}
	costs := []string{"{1}", "{U}", "{G}", "{1}{U}", "{W}{U}", "{2}"}

	for _, hand := range hands {
		for _, c := range costs {
			for _, ev := range []Evaluator{GreedyEvaluator{}, ExactHandEvaluator{}, MatchingEvaluator{}} {
				assert.False(t, ev.CanPay(hand, ParseCost(c)), "%s paid %s with tapped lands", ev.Name(), c)
			}
		}
	}
}

func TestGreedy_Monotonic(t *testing.T) {
	tests := []struct {
		name  string
		lands []Land
		cost  string
		extra Land
	}{
		{"extra island", []Land{island, forest}, "{1}{U}", island},
		{"extra forest", []Land{island, forest}, "{1}{U}", forest},
		{"extra dual", []Land{tundra, island}, "{W}{U}", tundra},
		{"extra next to tapped", []Land{tappedIsland, forest}, "{1}{U}", island},
		{"extra generic source", []Land{forest, forest, plains}, "{3}", plains},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost := ParseCost(tt.cost)
			require.True(t, CanPay(tt.lands, cost))

			// Add the extra land at every position; order must not matter.
			for at := 0; at <= len(tt.lands); at++ {
				grown := make([]Land, 0, len(tt.lands)+1)
				grown = append(grown, tt.lands[:at]...)
				grown = append(grown, tt.extra)
				grown = append(grown, tt.lands[at:]...)
				assert.True(t, CanPay(grown, cost), "position %d", at)
			}
		})
	}
}

func TestGreedy_DoesNotModifyInput(t *testing.T) {
	lands := []Land{tundra, island, forest}
	before := append([]Land(nil), lands...)

	CanPay(lands, ParseCost("{1}{W}{U}"))

	assert.Equal(t, before, lands)
}

func TestGreedy_KnownFalseNegative(t *testing.T) {
	// Tundra is claimed for U first, leaving nothing for W.
	lands := []Land{tundra, underground}
	cost := ParseCost("{U}{W}")

	assert.False(t, GreedyEvaluator{}.CanPay(lands, cost))
	assert.True(t, MatchingEvaluator{}.CanPay(lands, cost))
}

func TestExactHand_IgnoresSurplusLands(t *testing.T) {
	// Greedy spends the tapped forest on generic; a two land sub-hand of
	// island and plains pays with an untapped land.
	lands := []Land{tappedIsland, tappedForest, plains}
	cost := ParseCost("{1}{U}")

	assert.False(t, GreedyEvaluator{}.CanPay(lands, cost))
	assert.True(t, ExactHandEvaluator{}.CanPay(lands, cost))
	assert.True(t, MatchingEvaluator{}.CanPay(lands, cost))
}

func TestMatching_CanPay(t *testing.T) {
	tests := []struct {
		name  string
		lands []Land
		cost  string
		want  bool
	}{
		{"simple", []Land{island, forest}, "{1}{U}", true},
		{"three colors", []Land{tundra, underground, badlands}, "{W}{U}{R}", true},
		{"over committed dual", []Land{tundra, island}, "{W}{W}", false},
		{"only tapped source for color", []Land{tappedIsland, forest}, "{U}", false},
		{"empty cost", []Land{island}, "", false},
		{"more units than lands", []Land{island, island}, "{2}{U}", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchingEvaluator{}.CanPay(tt.lands, ParseCost(tt.cost)))
		})
	}
}

func TestParseStrategy(t *testing.T) {
	for _, name := range []string{"", "greedy", "exact-hand", "matching"} {
		s, err := ParseStrategy(name)
		require.NoError(t, err, name)

		ev, err := NewEvaluator(s)
		require.NoError(t, err)
		if name == "" {
			assert.Equal(t, "greedy", ev.Name())
		} else {
			assert.Equal(t, name, ev.Name())
		}
	}

	_, err := ParseStrategy("optimal")
	assert.Error(t, err)

	_, err = NewEvaluator(Strategy("optimal"))
	assert.Error(t, err)
}
