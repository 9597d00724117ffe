package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/oncurve/internal/storage"
	"github.com/ramonehamilton/oncurve/internal/storage/models"
)

func setupCardTestRepo(t *testing.T) CardRepository {
	t.Helper()
	db, err := storage.Open(storage.DefaultConfig(storage.MemoryPath))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCardRepository(db.Conn())
}

func TestCardRepository_GetMissing(t *testing.T) {
	repo := setupCardTestRepo(t)

	card, err := repo.Get(context.Background(), "Island")
	require.NoError(t, err)
	assert.Nil(t, card)
}

func TestCardRepository_UpsertAndGet(t *testing.T) {
	repo := setupCardTestRepo(t)
	ctx := context.Background()
	fetched := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, &models.CachedCard{
		Name:       "Breeding Pool",
		ScryfallID: "id-1",
		Payload:    []byte(`{"name":"Breeding Pool"}`),
		FetchedAt:  fetched,
	}))

	// Lookups ignore case and surrounding whitespace.
	card, err := repo.Get(ctx, "  breeding POOL ")
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, "breeding pool", card.Name)
	assert.Equal(t, "id-1", card.ScryfallID)
	assert.JSONEq(t, `{"name":"Breeding Pool"}`, string(card.Payload))
	assert.True(t, fetched.Equal(card.FetchedAt), "fetched_at %v", card.FetchedAt)
}

func TestCardRepository_UpsertReplaces(t *testing.T) {
	repo := setupCardTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.CachedCard{Name: "Forest", Payload: []byte(`{"v":1}`)}))
	require.NoError(t, repo.Upsert(ctx, &models.CachedCard{Name: "Forest", Payload: []byte(`{"v":2}`)}))

	card, err := repo.Get(ctx, "Forest")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(card.Payload))

	// A single row remains: pruning everything removes exactly one.
	deleted, err := repo.DeleteOlderThan(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestCardRepository_DeleteOlderThan(t *testing.T) {
	repo := setupCardTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Upsert(ctx, &models.CachedCard{Name: "Old", Payload: []byte(`{}`), FetchedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, repo.Upsert(ctx, &models.CachedCard{Name: "New", Payload: []byte(`{}`), FetchedAt: now}))

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	old, err := repo.Get(ctx, "Old")
	require.NoError(t, err)
	assert.Nil(t, old)

	fresh, err := repo.Get(ctx, "New")
	require.NoError(t, err)
	assert.NotNil(t, fresh)
}
