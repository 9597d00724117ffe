package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ramonehamilton/oncurve/internal/analyzer"
	"github.com/ramonehamilton/oncurve/internal/api/response"
	"github.com/ramonehamilton/oncurve/internal/cards/scryfall"
	"github.com/ramonehamilton/oncurve/internal/curve"
	"github.com/ramonehamilton/oncurve/internal/deck"
)

// maxBodyBytes bounds request bodies. A 250 card decklist is well under it.
const maxBodyBytes = 1 << 20

// Analyzer runs an analysis request.
type Analyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) (*curve.Result, error)
}

// AnalyzeHandler handles analysis requests.
type AnalyzeHandler struct {
	analyzer Analyzer
	logger   *zap.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(a Analyzer, logger *zap.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyzeHandler{analyzer: a, logger: logger}
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	Deck      []string `json:"deck"`
	Sideboard []string `json:"sideboard"`
	Commander []string `json:"commander"`
	XValue    *int     `json:"x_value,omitempty"`
}

// AnalyzeResponse is the data returned for a finished analysis.
type AnalyzeResponse struct {
	RunID        string                      `json:"run_id"`
	DeckSize     int                         `json:"deck_size"`
	LandCount    int                         `json:"land_count"`
	AverageLands float64                     `json:"average_lands"`
	Strategy     string                      `json:"strategy"`
	Spells       map[string]curve.SpellStats `json:"spells"`
	Order        []string                    `json:"order"`
	Cache        curve.CacheStats            `json:"cache"`
	DurationMS   float64                     `json:"duration_ms"`
}

// NewAnalyzeResponse converts an engine result into its API form.
func NewAnalyzeResponse(r *curve.Result) AnalyzeResponse {
	return AnalyzeResponse{
		RunID:        r.RunID,
		DeckSize:     r.DeckSize,
		LandCount:    r.LandCount,
		AverageLands: r.AverageLands,
		Strategy:     r.Strategy,
		Spells:       r.Spells,
		Order:        r.Order,
		Cache:        r.Cache,
		DurationMS:   float64(r.Duration.Microseconds()) / 1000,
	}
}

// Analyze computes per-spell castability for a decklist.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), analyzer.Request{
		Decklist: deck.Decklist{
			Deck:      req.Deck,
			Sideboard: req.Sideboard,
			Commander: req.Commander,
		},
		XValue: req.XValue,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.Success(w, NewAnalyzeResponse(result))
}

func (h *AnalyzeHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("analyze request failed", zap.Int("status", status), zap.Error(err))
	}
	response.Error(w, r, status, err)
}

// StatusForError maps analysis errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, deck.ErrInvalidLine),
		errors.Is(err, deck.ErrEmptyDecklist),
		errors.Is(err, analyzer.ErrInvalidXValue):
		return http.StatusBadRequest
	case scryfall.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, curve.ErrTooManyLands), errors.Is(err, curve.ErrTooManyHands):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a size-limited JSON body, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}
