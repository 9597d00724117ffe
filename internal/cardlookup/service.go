// Package cardlookup resolves card names to Scryfall data through a
// memory cache, a persistent cache and the Scryfall API, in that order.
package cardlookup

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ramonehamilton/oncurve/internal/cards/scryfall"
	"github.com/ramonehamilton/oncurve/internal/storage/models"
	"github.com/ramonehamilton/oncurve/internal/storage/repository"
)

// Fetcher loads a card from the remote card database.
type Fetcher interface {
	GetCardByName(ctx context.Context, name string) (*scryfall.Card, error)
}

// Service provides card lookup by name with caching.
type Service struct {
	fetcher        Fetcher
	store          repository.CardRepository // nil disables persistence
	staleThreshold time.Duration
	logger         *zap.Logger

	mu     sync.RWMutex
	memory map[string]*scryfall.Card
	group  singleflight.Group

	memoryHits atomic.Uint64
	storeHits  atomic.Uint64
	fetches    atomic.Uint64
}

// ServiceOptions configures the card lookup service.
type ServiceOptions struct {
	// StaleThreshold is how old persisted data can be before fetching from Scryfall.
	// Default: 7 days
	StaleThreshold time.Duration

	Logger *zap.Logger
}

// DefaultServiceOptions returns sensible defaults.
func DefaultServiceOptions() ServiceOptions {
	return ServiceOptions{
		StaleThreshold: 7 * 24 * time.Hour, // 7 days
	}
}

// Stats counts where lookups were answered from.
type Stats struct {
	MemoryHits uint64 `json:"memory_hits"`
	StoreHits  uint64 `json:"store_hits"`
	Fetches    uint64 `json:"fetches"`
}

// NewService creates a new card lookup service. store may be nil.
func NewService(fetcher Fetcher, store repository.CardRepository, options ServiceOptions) *Service {
	if options.StaleThreshold == 0 {
		options.StaleThreshold = DefaultServiceOptions().StaleThreshold
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	return &Service{
		fetcher:        fetcher,
		store:          store,
		staleThreshold: options.StaleThreshold,
		logger:         options.Logger,
		memory:         make(map[string]*scryfall.Card),
	}
}

// Lookup returns the card named name. Concurrent lookups of the same name
// share one fetch. Unknown names fail with an error satisfying
// scryfall.IsNotFound.
func (s *Service) Lookup(ctx context.Context, name string) (*scryfall.Card, error) {
	key := repository.NormalizeName(name)

	if card, ok := s.fromMemory(key); ok {
		s.memoryHits.Add(1)
		return card, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		if card, ok := s.fromMemory(key); ok {
			s.memoryHits.Add(1)
			return card, nil
		}
		card, err := s.load(ctx, name, key)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.memory[key] = card
		s.mu.Unlock()
		return card, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*scryfall.Card), nil
}

func (s *Service) fromMemory(key string) (*scryfall.Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.memory[key]
	return card, ok
}

// load consults the persistent cache, then Scryfall. Stale persisted data is
// returned when Scryfall is unreachable.
func (s *Service) load(ctx context.Context, name, key string) (*scryfall.Card, error) {
	var stale *scryfall.Card
	if s.store != nil {
		cached, err := s.store.Get(ctx, key)
		if err != nil {
			s.logger.Warn("card cache read failed", zap.String("card", name), zap.Error(err))
		} else if cached != nil {
			card, err := decode(cached)
			if err != nil {
				s.logger.Warn("discarding corrupt cached card", zap.String("card", name), zap.Error(err))
			} else if time.Since(cached.FetchedAt) < s.staleThreshold {
				s.storeHits.Add(1)
				return card, nil
			} else {
				stale = card
			}
		}
	}

	s.fetches.Add(1)
	card, err := s.fetcher.GetCardByName(ctx, name)
	if err != nil {
		if stale != nil && !scryfall.IsNotFound(err) {
			s.logger.Warn("using stale card data", zap.String("card", name), zap.Error(err))
			return stale, nil
		}
		return nil, fmt.Errorf("lookup %q: %w", name, err)
	}

	if s.store != nil {
		if err := s.persist(ctx, key, card); err != nil {
			// The fetched data is still usable.
			s.logger.Warn("card cache write failed", zap.String("card", name), zap.Error(err))
		}
	}
	return card, nil
}

func (s *Service) persist(ctx context.Context, key string, card *scryfall.Card) error {
	payload, err := json.Marshal(card)
	if err != nil {
		return err
	}
	return s.store.Upsert(ctx, &models.CachedCard{
		Name:       key,
		ScryfallID: card.ID,
		Payload:    payload,
		FetchedAt:  time.Now(),
	})
}

func decode(cached *models.CachedCard) (*scryfall.Card, error) {
	var card scryfall.Card
	if err := json.Unmarshal(cached.Payload, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// Prune removes persisted entries older than the stale threshold.
func (s *Service) Prune(ctx context.Context) (int64, error) {
	if s.store == nil {
		return 0, nil
	}
	return s.store.DeleteOlderThan(ctx, time.Now().Add(-s.staleThreshold))
}

// Stats returns a snapshot of the lookup counters.
func (s *Service) Stats() Stats {
	return Stats{
		MemoryHits: s.memoryHits.Load(),
		StoreHits:  s.storeHits.Load(),
		Fetches:    s.fetches.Load(),
	}
}
