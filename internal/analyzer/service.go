// Package analyzer is the request boundary of the curve analysis: it builds
// a deck from a decklist and runs the engine on it.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ramonehamilton/oncurve/internal/curve"
	"github.com/ramonehamilton/oncurve/internal/deck"
	"github.com/ramonehamilton/oncurve/internal/metrics"
)

// DefaultXValue is substituted for X when neither the request nor the
// options give a value.
const DefaultXValue = 2

// ErrInvalidXValue is returned for a negative X.
var ErrInvalidXValue = errors.New("x value cannot be negative")

// DeckBuilder resolves decklists into decks.
type DeckBuilder interface {
	BuildParsed(ctx context.Context, parsed *deck.ParsedDecklist, xValue int) (*curve.Deck, error)
}

// Request is one analysis request. A nil XValue selects the default.
type Request struct {
	Decklist deck.Decklist
	XValue   *int
}

// Options configures a Service.
type Options struct {
	Strategy curve.Strategy
	Engine   curve.Options
	DefaultX int // Negative selects DefaultXValue
	Metrics  *metrics.AnalysisMetrics
	Logger   *zap.Logger
}

// Service runs analyses end to end.
type Service struct {
	builder  DeckBuilder
	analyzer *curve.Analyzer
	defaultX int
	metrics  *metrics.AnalysisMetrics
	logger   *zap.Logger
}

// NewService creates an analysis service.
func NewService(builder DeckBuilder, opts Options) (*Service, error) {
	evaluator, err := curve.NewEvaluator(opts.Strategy)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewAnalysisMetrics()
	}
	if opts.DefaultX < 0 {
		opts.DefaultX = DefaultXValue
	}

	return &Service{
		builder:  builder,
		analyzer: curve.NewAnalyzer(evaluator, opts.Engine, opts.Logger.Named("curve")),
		defaultX: opts.DefaultX,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}, nil
}

// Analyze parses and builds the decklist, then computes its statistics.
func (s *Service) Analyze(ctx context.Context, req Request) (*curve.Result, error) {
	result, err := s.analyze(ctx, req)
	if err != nil {
		s.metrics.RecordFailure()
		s.logger.Warn("analysis failed", zap.Error(err))
		return nil, err
	}
	s.metrics.RecordResult(result)
	return result, nil
}

func (s *Service) analyze(ctx context.Context, req Request) (*curve.Result, error) {
	parsed, err := req.Decklist.Parse()
	if err != nil {
		return nil, err
	}

	x := s.defaultX
	if req.XValue != nil {
		x = *req.XValue
	}
	if x < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidXValue, x)
	}

	start := time.Now()
	d, err := s.builder.BuildParsed(ctx, parsed, x)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordBuild(time.Since(start))

	return s.analyzer.Analyze(ctx, d)
}

// Metrics returns the service's metrics collector.
func (s *Service) Metrics() *metrics.AnalysisMetrics {
	return s.metrics
}
