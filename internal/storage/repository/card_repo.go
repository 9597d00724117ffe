package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ramonehamilton/oncurve/internal/storage/models"
)

// CardRepository persists fetched card data.
type CardRepository interface {
	// Get returns the cached card for name, or nil when absent.
	Get(ctx context.Context, name string) (*models.CachedCard, error)
	Upsert(ctx context.Context, card *models.CachedCard) error
	// DeleteOlderThan removes entries fetched before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new card cache repository.
func NewCardRepository(db *sql.DB) CardRepository {
	return &cardRepository{db: db}
}

// NormalizeName is the key cards are stored under.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *cardRepository) Get(ctx context.Context, name string) (*models.CachedCard, error) {
	query := `
		SELECT name, scryfall_id, payload, fetched_at
		FROM card_cache
		WHERE name = ?
	`
	card := &models.CachedCard{}
	err := r.db.QueryRowContext(ctx, query, NormalizeName(name)).Scan(
		&card.Name,
		&card.ScryfallID,
		&card.Payload,
		&card.FetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached card %q: %w", name, err)
	}
	return card, nil
}

func (r *cardRepository) Upsert(ctx context.Context, card *models.CachedCard) error {
	query := `
		INSERT INTO card_cache (name, scryfall_id, payload, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			scryfall_id = excluded.scryfall_id,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`
	fetchedAt := card.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, query,
		NormalizeName(card.Name),
		card.ScryfallID,
		card.Payload,
		fetchedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache card %q: %w", card.Name, err)
	}
	return nil
}

func (r *cardRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM card_cache WHERE fetched_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune card cache: %w", err)
	}
	return result.RowsAffected()
}
