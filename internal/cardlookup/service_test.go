package cardlookup

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/oncurve/internal/cards/scryfall"
	"github.com/ramonehamilton/oncurve/internal/storage"
	"github.com/ramonehamilton/oncurve/internal/storage/models"
	"github.com/ramonehamilton/oncurve/internal/storage/repository"
)

type fakeFetcher struct {
	cards map[string]*scryfall.Card
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeFetcher) GetCardByName(ctx context.Context, name string) (*scryfall.Card, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	card, ok := f.cards[name]
	if !ok {
		return nil, &scryfall.NotFoundError{URL: "/cards/named?exact=" + name}
	}
	return card, nil
}

func setupTestRepo(t *testing.T) repository.CardRepository {
	t.Helper()
	db, err := storage.Open(storage.DefaultConfig(storage.MemoryPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewCardRepository(db.Conn())
}

func forestFetcher() *fakeFetcher {
	return &fakeFetcher{cards: map[string]*scryfall.Card{
		"Forest": {ID: "f1", Name: "Forest", TypeLine: "Basic Land — Forest", ProducedMana: []string{"G"}},
	}}
}

func TestDefaultServiceOptions(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, DefaultServiceOptions().StaleThreshold)

	svc := NewService(forestFetcher(), nil, ServiceOptions{})
	assert.Equal(t, 7*24*time.Hour, svc.staleThreshold)
}

func TestLookup_MemoryCache(t *testing.T) {
	fetcher := forestFetcher()
	svc := NewService(fetcher, nil, DefaultServiceOptions())
	ctx := context.Background()

	first, err := svc.Lookup(ctx, "Forest")
	require.NoError(t, err)
	second, err := svc.Lookup(ctx, "forest")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, Stats{MemoryHits: 1, Fetches: 1}, svc.Stats())
}

func TestLookup_PersistsAndReadsStore(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	svc := NewService(forestFetcher(), repo, DefaultServiceOptions())
	_, err := svc.Lookup(ctx, "Forest")
	require.NoError(t, err)

	cached, err := repo.Get(ctx, "Forest")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "f1", cached.ScryfallID)

	// A new service with a failing fetcher answers from the store.
	offline := &fakeFetcher{err: errors.New("network down")}
	svc2 := NewService(offline, repo, DefaultServiceOptions())
	card, err := svc2.Lookup(ctx, "Forest")
	require.NoError(t, err)
	assert.Equal(t, "Basic Land — Forest", card.TypeLine)
	assert.Equal(t, int32(0), offline.calls.Load())
	assert.Equal(t, uint64(1), svc2.Stats().StoreHits)
}

func TestLookup_StaleEntryRefetched(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	old, _ := json.Marshal(scryfall.Card{Name: "Forest", TypeLine: "old"})
	require.NoError(t, repo.Upsert(ctx, &models.CachedCard{
		Name: "Forest", Payload: old, FetchedAt: time.Now().Add(-30 * 24 * time.Hour),
	}))

	fetcher := forestFetcher()
	svc := NewService(fetcher, repo, DefaultServiceOptions())
	card, err := svc.Lookup(ctx, "Forest")
	require.NoError(t, err)
	assert.Equal(t, "Basic Land — Forest", card.TypeLine)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestLookup_StaleFallbackWhenOffline(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	old, _ := json.Marshal(scryfall.Card{Name: "Forest", TypeLine: "old"})
	require.NoError(t, repo.Upsert(ctx, &models.CachedCard{
		Name: "Forest", Payload: old, FetchedAt: time.Now().Add(-30 * 24 * time.Hour),
	}))

	svc := NewService(&fakeFetcher{err: errors.New("timeout")}, repo, DefaultServiceOptions())
	card, err := svc.Lookup(ctx, "Forest")
	require.NoError(t, err)
	assert.Equal(t, "old", card.TypeLine)
}

func TestLookup_NotFound(t *testing.T) {
	svc := NewService(forestFetcher(), setupTestRepo(t), DefaultServiceOptions())

	_, err := svc.Lookup(context.Background(), "Not A Card")
	require.Error(t, err)
	assert.True(t, scryfall.IsNotFound(err))
}

func TestLookup_ConcurrentCallsShareFetch(t *testing.T) {
	fetcher := forestFetcher()
	fetcher.delay = 20 * time.Millisecond
	svc := NewService(fetcher, nil, DefaultServiceOptions())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Lookup(context.Background(), "Forest")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestPrune(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.CachedCard{Name: "Old", Payload: []byte(`{}`), FetchedAt: time.Now().Add(-8 * 24 * time.Hour)}))
	require.NoError(t, repo.Upsert(ctx, &models.CachedCard{Name: "New", Payload: []byte(`{}`)}))

	svc := NewService(forestFetcher(), repo, DefaultServiceOptions())
	n, err := svc.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	noStore := NewService(forestFetcher(), nil, DefaultServiceOptions())
	n, err = noStore.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
