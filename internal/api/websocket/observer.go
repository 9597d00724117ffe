package websocket

import (
	"github.com/ramonehamilton/oncurve/internal/curve"
)

// Event types sent while an analysis runs.
const (
	EventAnalysisStarted   = "analysis.started"
	EventAnalysisSpell     = "analysis.spell"
	EventAnalysisCompleted = "analysis.completed"
)

// SpellEvent is the payload of an analysis.spell event.
type SpellEvent struct {
	RunID string `json:"run_id"`
	Name  string `json:"name"`
	curve.SpellStats
}

// CompletedEvent is the payload of an analysis.completed event.
type CompletedEvent struct {
	RunID      string           `json:"run_id"`
	DeckSize   int              `json:"deck_size"`
	LandCount  int              `json:"land_count"`
	SpellCount int              `json:"spell_count"`
	DurationMS float64          `json:"duration_ms"`
	Cache      curve.CacheStats `json:"cache"`
}

// AnalysisObserver forwards analysis progress to WebSocket clients.
type AnalysisObserver struct {
	hub *Hub
}

var _ curve.Observer = (*AnalysisObserver)(nil)

// NewAnalysisObserver creates an observer broadcasting on hub.
func NewAnalysisObserver(hub *Hub) *AnalysisObserver {
	return &AnalysisObserver{hub: hub}
}

// AnalysisStarted implements curve.Observer.
func (o *AnalysisObserver) AnalysisStarted(info curve.RunInfo) {
	o.hub.BroadcastEvent(Event{Type: EventAnalysisStarted, Data: info})
}

// SpellAnalyzed implements curve.Observer.
func (o *AnalysisObserver) SpellAnalyzed(runID string, stats curve.SpellStats) {
	o.hub.BroadcastEvent(Event{
		Type: EventAnalysisSpell,
		Data: SpellEvent{RunID: runID, Name: stats.Name, SpellStats: stats},
	})
}

// AnalysisCompleted implements curve.Observer.
func (o *AnalysisObserver) AnalysisCompleted(result *curve.Result) {
	o.hub.BroadcastEvent(Event{
		Type: EventAnalysisCompleted,
		Data: CompletedEvent{
			RunID:      result.RunID,
			DeckSize:   result.DeckSize,
			LandCount:  result.LandCount,
			SpellCount: len(result.Spells),
			DurationMS: float64(result.Duration.Microseconds()) / 1000,
			Cache:      result.Cache,
		},
	})
}
