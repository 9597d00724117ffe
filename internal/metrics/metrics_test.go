package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ramonehamilton/oncurve/internal/curve"
)

func TestHistogram_Stats(t *testing.T) {
	h := NewHistogram(100)
	for i := 1; i <= 5; i++ {
		h.Record(time.Duration(i) * time.Millisecond)
	}

	s := h.Stats()
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 3.0, s.Mean, 1e-9)
	assert.InDelta(t, 3.0, s.P50, 1e-9)
	assert.InDelta(t, 1.0, s.Min, 1e-9)
	assert.InDelta(t, 5.0, s.Max, 1e-9)
	assert.InDelta(t, 4.8, s.P95, 1e-9)
}

func TestHistogram_Empty(t *testing.T) {
	assert.Equal(t, LatencyStats{}, NewHistogram(0).Stats())
}

func TestHistogram_Trims(t *testing.T) {
	h := NewHistogram(10)
	for i := 0; i < 11; i++ {
		h.Record(time.Millisecond)
	}
	assert.Equal(t, 9, h.Stats().Count)
}

func TestAnalysisMetrics(t *testing.T) {
	m := NewAnalysisMetrics()
	m.RecordBuild(2 * time.Millisecond)
	m.RecordResult(&curve.Result{
		Spells:   map[string]curve.SpellStats{"Opt": {}, "Negate": {}},
		Cache:    curve.CacheStats{Hits: 3, Misses: 1},
		Duration: 10 * time.Millisecond,
	})
	m.RecordFailure()

	s := m.GetStats()
	assert.Equal(t, uint64(1), s.Analyses)
	assert.Equal(t, uint64(1), s.Failures)
	assert.Equal(t, uint64(2), s.SpellsAnalyzed)
	assert.InDelta(t, 75.0, s.CacheHitRate, 1e-9)
	assert.Equal(t, 1, s.BuildLatency.Count)
	assert.Equal(t, 1, s.AnalysisLatency.Count)
}
