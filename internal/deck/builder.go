// Package deck turns a textual decklist into the spells and land pool the
// curve analysis runs on.
package deck

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/oncurve/internal/cards/scryfall"
	"github.com/ramonehamilton/oncurve/internal/curve"
)

// DefaultMaxConcurrent bounds parallel card lookups.
const DefaultMaxConcurrent = 8

// CardSource resolves a card name to its card data.
type CardSource interface {
	Lookup(ctx context.Context, name string) (*scryfall.Card, error)
}

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	MaxConcurrent int
	Logger        *zap.Logger
}

// Builder resolves decklists into curve decks.
type Builder struct {
	source        CardSource
	maxConcurrent int
	logger        *zap.Logger
}

// NewBuilder creates a Builder reading cards from source.
func NewBuilder(source CardSource, opts BuilderOptions) *Builder {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Builder{source: source, maxConcurrent: opts.MaxConcurrent, logger: opts.Logger}
}

// Build parses the decklist, fetches every distinct card and assembles the
// deck. xValue replaces X in every spell cost. Sideboard and commander cards
// contribute spells only. The first lookup error aborts the build.
func (b *Builder) Build(ctx context.Context, list Decklist, xValue int) (*curve.Deck, error) {
	parsed, err := list.Parse()
	if err != nil {
		return nil, err
	}
	return b.BuildParsed(ctx, parsed, xValue)
}

// BuildParsed is Build for an already parsed decklist.
func (b *Builder) BuildParsed(ctx context.Context, parsed *ParsedDecklist, xValue int) (*curve.Deck, error) {
	if len(parsed.Deck) == 0 {
		return nil, ErrEmptyDecklist
	}

	cards, err := b.fetchAll(ctx, parsed)
	if err != nil {
		return nil, err
	}

	deck := &curve.Deck{}
	for _, e := range mergeEntries(parsed.Deck) {
		c := classify(cards[e.Name], e.Count, true)
		deck.Spells = append(deck.Spells, c.spells...)
		deck.Lands = append(deck.Lands, c.lands...)
		deck.Size += e.Count
	}
	for _, board := range [][]Entry{parsed.Sideboard, parsed.Commander} {
		for _, e := range mergeEntries(board) {
			deck.Spells = append(deck.Spells, classify(cards[e.Name], e.Count, false).spells...)
		}
	}

	resolveFetchlands(deck.Lands)
	markManaProducers(deck.Lands)
	for i := range deck.Spells {
		deck.Spells[i].Cost = deck.Spells[i].Cost.ResolveX(xValue)
	}

	b.logger.Debug("deck built",
		zap.Int("size", deck.Size),
		zap.Int("lands", len(deck.Lands)),
		zap.Int("spells", len(deck.Spells)),
	)
	return deck, nil
}

// fetchAll looks up every distinct card name concurrently and waits for all
// of them.
func (b *Builder) fetchAll(ctx context.Context, parsed *ParsedDecklist) (map[string]*scryfall.Card, error) {
	var names []string
	seen := make(map[string]bool)
	for _, board := range [][]Entry{parsed.Deck, parsed.Sideboard, parsed.Commander} {
		for _, e := range board {
			if !seen[e.Name] {
				seen[e.Name] = true
				names = append(names, e.Name)
			}
		}
	}

	var mu sync.Mutex
	cards := make(map[string]*scryfall.Card, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.maxConcurrent)
	for _, name := range names {
		g.Go(func() error {
			card, err := b.source.Lookup(gctx, name)
			if err != nil {
				return fmt.Errorf("card %q: %w", name, err)
			}
			mu.Lock()
			cards[name] = card
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cards, nil
}

// mergeEntries sums the counts of repeated names, keeping first-seen order.
func mergeEntries(entries []Entry) []Entry {
	index := make(map[string]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Name]; ok {
			out[i].Count += e.Count
			continue
		}
		index[e.Name] = len(out)
		out = append(out, e)
	}
	return out
}

// resolveFetchlands credits each fetchland with the colors of the pool lands
// it can find. Fetched colors come from non-fetch lands only.
func resolveFetchlands(lands []curve.Land) {
	for i := range lands {
		if !lands[i].IsFetchland() {
			continue
		}
		var found []string
		for _, other := range lands {
			if other.IsFetchland() {
				continue
			}
			for _, t := range lands[i].FetchTargets {
				if other.HasType(t) {
					found = union(found, other.Colors)
					break
				}
			}
		}
		lands[i].Colors = union(append([]string(nil), lands[i].Colors...), found)
	}
}

func markManaProducers(lands []curve.Land) {
	for i := range lands {
		lands[i].ProducesMana = len(lands[i].Colors) > 0
	}
}
