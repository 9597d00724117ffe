package metrics

import (
	"sync/atomic"
	"time"

	"github.com/ramonehamilton/oncurve/internal/curve"
)

// AnalysisMetrics tracks throughput and latency of analysis requests.
type AnalysisMetrics struct {
	BuildLatency    *Histogram // deck construction, card lookups included
	AnalysisLatency *Histogram // curve analysis only

	Analyses       atomic.Uint64
	Failures       atomic.Uint64
	SpellsAnalyzed atomic.Uint64
	CacheHits      atomic.Uint64 // playability cache
	CacheMisses    atomic.Uint64

	startTime time.Time
}

// LatencyStats contains statistics for a latency histogram.
type LatencyStats struct {
	Mean  float64 `json:"mean"` // milliseconds
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// AnalysisStats is a point-in-time view of AnalysisMetrics.
type AnalysisStats struct {
	BuildLatency    LatencyStats `json:"build_latency"`
	AnalysisLatency LatencyStats `json:"analysis_latency"`

	Analyses       uint64  `json:"analyses"`
	Failures       uint64  `json:"failures"`
	SpellsAnalyzed uint64  `json:"spells_analyzed"`
	CacheHits      uint64  `json:"cache_hits"`
	CacheMisses    uint64  `json:"cache_misses"`
	CacheHitRate   float64 `json:"cache_hit_rate"` // percentage

	Uptime string `json:"uptime"`
}

// NewAnalysisMetrics creates a new metrics collector.
func NewAnalysisMetrics() *AnalysisMetrics {
	return &AnalysisMetrics{
		BuildLatency:    NewHistogram(DefaultHistogramSize),
		AnalysisLatency: NewHistogram(DefaultHistogramSize),
		startTime:       time.Now(),
	}
}

// RecordBuild records the time taken to build a deck.
func (m *AnalysisMetrics) RecordBuild(d time.Duration) {
	m.BuildLatency.Record(d)
}

// RecordResult records a finished analysis.
func (m *AnalysisMetrics) RecordResult(r *curve.Result) {
	m.Analyses.Add(1)
	m.SpellsAnalyzed.Add(uint64(len(r.Spells)))
	m.CacheHits.Add(r.Cache.Hits)
	m.CacheMisses.Add(r.Cache.Misses)
	m.AnalysisLatency.Record(r.Duration)
}

// RecordFailure counts a request that ended in an error.
func (m *AnalysisMetrics) RecordFailure() {
	m.Failures.Add(1)
}

// GetStats returns a snapshot of the current statistics.
func (m *AnalysisMetrics) GetStats() *AnalysisStats {
	hits := m.CacheHits.Load()
	misses := m.CacheMisses.Load()
	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}

	return &AnalysisStats{
		BuildLatency:    m.BuildLatency.Stats(),
		AnalysisLatency: m.AnalysisLatency.Stats(),
		Analyses:        m.Analyses.Load(),
		Failures:        m.Failures.Load(),
		SpellsAnalyzed:  m.SpellsAnalyzed.Load(),
		CacheHits:       hits,
		CacheMisses:     misses,
		CacheHitRate:    hitRate,
		Uptime:          time.Since(m.startTime).Round(time.Second).String(),
	}
}
