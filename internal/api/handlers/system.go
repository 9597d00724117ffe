package handlers

import (
	"net/http"

	"github.com/ramonehamilton/oncurve/internal/api/response"
	"github.com/ramonehamilton/oncurve/internal/cardlookup"
	"github.com/ramonehamilton/oncurve/internal/metrics"
	"github.com/ramonehamilton/oncurve/internal/version"
)

// MetricsSource provides analysis metrics.
type MetricsSource interface {
	GetStats() *metrics.AnalysisStats
}

// LookupStatsSource provides card lookup counters.
type LookupStatsSource interface {
	Stats() cardlookup.Stats
}

// SystemHandler handles system-related API requests.
type SystemHandler struct {
	metrics MetricsSource
	lookups LookupStatsSource
}

// NewSystemHandler creates a new SystemHandler. lookups may be nil.
func NewSystemHandler(m MetricsSource, lookups LookupStatsSource) *SystemHandler {
	return &SystemHandler{metrics: m, lookups: lookups}
}

// SystemMetrics is the payload of GET /api/v1/system/metrics.
type SystemMetrics struct {
	Analysis *metrics.AnalysisStats `json:"analysis"`
	Lookups  *cardlookup.Stats      `json:"lookups,omitempty"`
}

// GetVersion returns the application version.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	info := version.Get()
	response.Success(w, map[string]string{
		"version":    info.Version,
		"commit":     info.Commit,
		"go_version": info.GoVersion,
		"service":    "oncurve-api",
	})
}

// GetMetrics returns analysis and card lookup metrics.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, _ *http.Request) {
	out := SystemMetrics{Analysis: h.metrics.GetStats()}
	if h.lookups != nil {
		s := h.lookups.Stats()
		out.Lookups = &s
	}
	response.Success(w, out)
}
