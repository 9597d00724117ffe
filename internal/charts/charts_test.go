package charts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/oncurve/internal/curve"
)

func sampleResult() *curve.Result {
	return &curve.Result{
		DeckSize:     40,
		LandCount:    17,
		AverageLands: 2.975,
		Spells: map[string]curve.SpellStats{
			"Negate":   {Name: "Negate", ManaValue: 2, P1: 73.529, P2: 60.1234},
			"Opt":      {Name: "Opt", ManaValue: 1, P1: 100, P2: 98.5},
			"Fireball": {Name: "Fireball", ManaValue: 3, P1: 40, P2: 22.2},
		},
	}
}

func TestNewCastabilityChart(t *testing.T) {
	bar, err := NewCastabilityChart(sampleResult(), DefaultChartConfig())
	require.NoError(t, err)

	require.Len(t, bar.MultiSeries, 2)
	assert.Equal(t, SeriesP1, bar.MultiSeries[0].Name)
	assert.Equal(t, SeriesP2, bar.MultiSeries[1].Name)

	p1, ok := bar.MultiSeries[0].Data.([]opts.BarData)
	require.True(t, ok)
	require.Len(t, p1, 3)
	assert.Equal(t, "Opt", p1[0].Name)
	assert.Equal(t, "Negate", p1[1].Name)
	assert.Equal(t, 73.53, p1[1].Value)
	assert.Equal(t, "Fireball", p1[2].Name)
}

func TestNewCastabilityChart_Empty(t *testing.T) {
	_, err := NewCastabilityChart(&curve.Result{}, DefaultChartConfig())
	assert.ErrorIs(t, err, ErrNoSpells)
}

func TestRenderCastability(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCastability(&buf, sampleResult(), DefaultChartConfig()))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Negate (2)")
	assert.Contains(t, html, "40 cards, 17 lands")
}

func TestWriteCastability(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curve.html")
	require.NoError(t, WriteCastability(sampleResult(), DefaultChartConfig(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Fireball (3)")
}

func TestWriteCastability_BadPath(t *testing.T) {
	err := WriteCastability(sampleResult(), DefaultChartConfig(), filepath.Join(t.TempDir(), "missing", "curve.html"))
	assert.Error(t, err)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 60.12, round2(60.1234))
	assert.Equal(t, 73.53, round2(73.529))
	assert.Equal(t, 100.0, round2(100))
}
