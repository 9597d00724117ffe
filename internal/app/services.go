// Package app wires configuration into the services shared by the CLI and
// the API server.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ramonehamilton/oncurve/internal/analyzer"
	"github.com/ramonehamilton/oncurve/internal/cardlookup"
	"github.com/ramonehamilton/oncurve/internal/cards/scryfall"
	"github.com/ramonehamilton/oncurve/internal/config"
	"github.com/ramonehamilton/oncurve/internal/curve"
	"github.com/ramonehamilton/oncurve/internal/deck"
	"github.com/ramonehamilton/oncurve/internal/metrics"
	"github.com/ramonehamilton/oncurve/internal/storage"
	"github.com/ramonehamilton/oncurve/internal/storage/repository"
)

// Services holds the long-lived components built from a Config.
type Services struct {
	DB       *storage.DB // nil when the card cache is disabled
	Cards    *cardlookup.Service
	Builder  *deck.Builder
	Analyzer *analyzer.Service
	Metrics  *metrics.AnalysisMetrics
	Logger   *zap.Logger
}

// Options adjusts how Services are built.
type Options struct {
	// Observer receives analysis progress. Optional.
	Observer curve.Observer

	// Fetcher replaces the Scryfall client. Used by tests.
	Fetcher cardlookup.Fetcher
}

// New builds the service graph: card cache database, Scryfall client,
// card lookup, deck builder and analysis service.
func New(cfg *config.Config, logger *zap.Logger, opts Options) (*Services, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ttl, err := cfg.GetCacheTTL()
	if err != nil {
		return nil, fmt.Errorf("cache ttl: %w", err)
	}
	strategy, err := curve.ParseStrategy(cfg.Analysis.Strategy)
	if err != nil {
		return nil, err
	}

	s := &Services{Logger: logger}

	var store repository.CardRepository
	if cfg.Cache.Enabled {
		path, err := cfg.GetCacheDBPath()
		if err != nil {
			return nil, err
		}
		db, err := storage.Open(storage.DefaultConfig(path))
		if err != nil {
			return nil, fmt.Errorf("open card cache: %w", err)
		}
		s.DB = db
		store = repository.NewCardRepository(db.Conn())
		logger.Info("card cache opened", zap.String("path", path))
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		rate, err := cfg.GetRateLimit()
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("scryfall rate limit: %w", err)
		}
		fetcher = scryfall.NewClient(scryfall.Options{
			BaseURL:   cfg.Scryfall.BaseURL,
			UserAgent: cfg.Scryfall.UserAgent,
			RateLimit: rate,
			Logger:    logger.Named("scryfall"),
		})
	}

	s.Cards = cardlookup.NewService(fetcher, store, cardlookup.ServiceOptions{
		StaleThreshold: ttl,
		Logger:         logger.Named("cardlookup"),
	})
	s.Builder = deck.NewBuilder(s.Cards, deck.BuilderOptions{
		MaxConcurrent: cfg.Scryfall.MaxConcurrent,
		Logger:        logger.Named("deck"),
	})

	engine := cfg.AnalyzerOptions()
	engine.Observer = opts.Observer
	s.Analyzer, err = analyzer.NewService(s.Builder, analyzer.Options{
		Strategy: strategy,
		Engine:   engine,
		DefaultX: cfg.Analysis.DefaultX,
		Logger:   logger.Named("analyzer"),
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Metrics = s.Analyzer.Metrics()

	return s, nil
}

// PruneCache drops persisted cards older than the cache TTL.
func (s *Services) PruneCache(ctx context.Context) (int64, error) {
	n, err := s.Cards.Prune(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Logger.Info("pruned stale cards", zap.Int64("removed", n))
	}
	return n, nil
}

// Close releases the card cache database.
func (s *Services) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
