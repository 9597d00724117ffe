package curve

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/oncurve/internal/stats"
)

// MinKeepableLands is the smallest land count a hand is ever judged with.
const MinKeepableLands = 2

// cancelCheckInterval is how many subsets are visited between context checks.
const cancelCheckInterval = 4096

var (
	// ErrTooManyLands is returned when the land pool exceeds Options.MaxLands.
	ErrTooManyLands = errors.New("too many lands to enumerate")

	// ErrTooManyHands is returned when a run would visit more land subsets
	// than Options.MaxHands.
	ErrTooManyHands = errors.New("too many hands to enumerate")
)

// SpellStats is the castability estimate for one spell.
type SpellStats struct {
	Name      string  `json:"-"`
	ManaValue int     `json:"cmc"`
	OK        int     `json:"ok"`
	NOK       int     `json:"nok"`
	P1        float64 `json:"p1"`
	P2        float64 `json:"p2"`
}

// Result is the outcome of one analysis run.
type Result struct {
	RunID        string                `json:"run_id"`
	DeckSize     int                   `json:"deck_size"`
	LandCount    int                   `json:"land_count"`
	AverageLands float64               `json:"average_lands"`
	Strategy     string                `json:"strategy"`
	Spells       map[string]SpellStats `json:"spells"`
	Order        []string              `json:"order"`
	Cache        CacheStats            `json:"cache"`
	Duration     time.Duration         `json:"duration_ns"`
}

// Sorted returns the spell statistics ordered by mana value, then name.
func (r *Result) Sorted() []SpellStats {
	out := make([]SpellStats, 0, len(r.Spells))
	for _, s := range r.Spells {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ManaValue != out[j].ManaValue {
			return out[i].ManaValue < out[j].ManaValue
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// RunInfo describes an analysis that is about to start.
type RunInfo struct {
	RunID      string `json:"run_id"`
	DeckSize   int    `json:"deck_size"`
	LandCount  int    `json:"land_count"`
	SpellCount int    `json:"spell_count"`
}

// Observer receives progress notifications. SpellAnalyzed may be called
// from several goroutines at once.
type Observer interface {
	AnalysisStarted(info RunInfo)
	SpellAnalyzed(runID string, stats SpellStats)
	AnalysisCompleted(result *Result)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) AnalysisStarted(RunInfo)          {}
func (NopObserver) SpellAnalyzed(string, SpellStats) {}
func (NopObserver) AnalysisCompleted(*Result)        {}

// Options tunes an Analyzer.
type Options struct {
	// OpeningHandSize is the number of cards drawn before turn one. Default: 7.
	OpeningHandSize int

	// Workers bounds how many spells are analyzed concurrently. Default: 1.
	Workers int

	// MaxLands rejects land pools larger than this. 0 disables the limit.
	MaxLands int

	// MaxHands rejects runs whose keepable windows hold more land subsets
	// in total than this. 0 disables the limit.
	MaxHands int

	Observer Observer
}

// DefaultOptions returns sequential analysis with a 7 card opening hand.
func DefaultOptions() Options {
	return Options{
		OpeningHandSize: stats.DefaultOpeningHandSize,
		Workers:         1,
		MaxLands:        40,
		MaxHands:        200_000_000,
	}
}

// Analyzer computes per-spell castability statistics for a deck.
type Analyzer struct {
	evaluator Evaluator
	opts      Options
	logger    *zap.Logger
}

// NewAnalyzer creates an Analyzer. A nil evaluator selects the greedy policy
// and a nil logger disables logging.
func NewAnalyzer(evaluator Evaluator, opts Options, logger *zap.Logger) *Analyzer {
	if evaluator == nil {
		evaluator = GreedyEvaluator{}
	}
	defaults := DefaultOptions()
	if opts.OpeningHandSize <= 0 {
		opts.OpeningHandSize = defaults.OpeningHandSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaults.Workers
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{evaluator: evaluator, opts: opts, logger: logger}
}

// KeepableWindow returns the inclusive range of hand sizes tested for a
// spell. The lower bound is the mana value but never under two lands; the
// upper bound follows the larger of the mana value and the expected number
// of lands in the opening hand.
func KeepableWindow(manaValue int, averageLands float64) (int, int) {
	lo := max(manaValue, MinKeepableLands)
	upper := math.Max(float64(MinKeepableLands), math.Max(float64(manaValue), averageLands))
	return lo, int(math.Floor(upper))
}

// Analyze runs the analysis for deck with a fresh playability cache.
func (a *Analyzer) Analyze(ctx context.Context, deck *Deck) (*Result, error) {
	return a.AnalyzeWithCache(ctx, deck, NewCache())
}

// AnalyzeWithCache runs the analysis sharing the given cache. The cache must
// only be reused for decks analyzed with the same evaluator.
func (a *Analyzer) AnalyzeWithCache(ctx context.Context, deck *Deck, cache *Cache) (*Result, error) {
	if deck == nil {
		return nil, errors.New("deck cannot be nil")
	}
	landCount := deck.LandCount()
	if a.opts.MaxLands > 0 && landCount > a.opts.MaxLands {
		return nil, fmt.Errorf("%w: %d lands exceeds limit of %d", ErrTooManyLands, landCount, a.opts.MaxLands)
	}

	start := time.Now()
	spells := uniqueSpells(deck.Spells)
	averageLands := stats.Expected(deck.Size, landCount, a.opts.OpeningHandSize)

	hands := HandCount(spells, landCount, averageLands)
	if a.opts.MaxHands > 0 && hands > a.opts.MaxHands {
		return nil, fmt.Errorf("%w: %d hands exceeds limit of %d", ErrTooManyHands, hands, a.opts.MaxHands)
	}

	info := RunInfo{
		RunID:      uuid.NewString(),
		DeckSize:   deck.Size,
		LandCount:  landCount,
		SpellCount: len(spells),
	}
	logger := a.logger.With(zap.String("run_id", info.RunID))
	logger.Info("analysis started",
		zap.Int("deck_size", info.DeckSize),
		zap.Int("lands", info.LandCount),
		zap.Int("spells", info.SpellCount),
		zap.Int("hands", hands),
		zap.Float64("average_lands", averageLands),
		zap.String("strategy", a.evaluator.Name()),
	)
	a.opts.Observer.AnalysisStarted(info)

	results := make([]SpellStats, len(spells))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i, spell := range spells {
		g.Go(func() error {
			s, err := a.analyzeSpell(gctx, spell, deck, averageLands, cache)
			if err != nil {
				return err
			}
			results[i] = s
			logger.Debug("spell analyzed",
				zap.String("spell", s.Name),
				zap.Int("cmc", s.ManaValue),
				zap.Int("ok", s.OK),
				zap.Int("nok", s.NOK),
			)
			a.opts.Observer.SpellAnalyzed(info.RunID, s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis %s: %w", info.RunID, err)
	}

	result := &Result{
		RunID:        info.RunID,
		DeckSize:     deck.Size,
		LandCount:    landCount,
		AverageLands: averageLands,
		Strategy:     a.evaluator.Name(),
		Spells:       make(map[string]SpellStats, len(results)),
		Order:        make([]string, 0, len(results)),
		Cache:        cache.Stats(),
		Duration:     time.Since(start),
	}
	for _, s := range results {
		result.Spells[s.Name] = s
		result.Order = append(result.Order, s.Name)
	}

	logger.Info("analysis completed",
		zap.Duration("duration", result.Duration),
		zap.Uint64("cache_hits", result.Cache.Hits),
		zap.Uint64("cache_misses", result.Cache.Misses),
	)
	a.opts.Observer.AnalysisCompleted(result)
	return result, nil
}

// HandCount returns how many land subsets a run over spells visits: the
// sum of every distinct spell's keepable window over a pool of lands.
func HandCount(spells []Spell, lands int, averageLands float64) int {
	total := 0
	for _, s := range uniqueSpells(spells) {
		lo, hi := KeepableWindow(s.ManaValue(), averageLands)
		total += Count(lands, lo, hi)
	}
	return total
}

// analyzeSpell counts keepable land subsets for one spell and derives its
// probabilities.
func (a *Analyzer) analyzeSpell(ctx context.Context, spell Spell, deck *Deck, averageLands float64, cache *Cache) (SpellStats, error) {
	if err := ctx.Err(); err != nil {
		return SpellStats{}, err
	}

	manaValue := spell.ManaValue()
	s := SpellStats{Name: spell.Name, ManaValue: manaValue}
	lo, hi := KeepableWindow(manaValue, averageLands)

	signature := spell.Signature()
	names := make([]string, 0, max(hi, 0))
	visited := 0
	for hand := range Subsets(deck.Lands, lo, hi) {
		visited++
		if visited%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return SpellStats{}, err
			}
		}

		if !allProduceMana(hand) {
			s.NOK++
			continue
		}
		names = SortedNames(names[:0], hand)
		payable := cache.GetOrCompute(signature, names, func() bool {
			return a.evaluator.CanPay(hand, spell.Cost)
		})
		if payable {
			s.OK++
		} else {
			s.NOK++
		}
	}

	if total := s.OK + s.NOK; total > 0 {
		s.P1 = 100 * float64(s.OK) / float64(total)
		handSize := stats.HandSizeForTurn(a.opts.OpeningHandSize, manaValue)
		s.P2 = s.P1 * stats.AtLeast(deck.Size, deck.LandCount(), handSize, manaValue)
	}
	return s, nil
}

func allProduceMana(lands []Land) bool {
	for _, l := range lands {
		if !l.ProducesMana {
			return false
		}
	}
	return true
}

// uniqueSpells keeps the first spell of every name, in deck order.
func uniqueSpells(spells []Spell) []Spell {
	seen := make(map[string]bool, len(spells))
	out := make([]Spell, 0, len(spells))
	for _, s := range spells {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		out = append(out, s)
	}
	return out
}
