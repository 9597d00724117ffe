package models

import "time"

// CachedCard is a card payload fetched from Scryfall, keyed by the
// lower-cased name it was requested under.
type CachedCard struct {
	Name       string
	ScryfallID string
	Payload    []byte // Raw Scryfall JSON
	FetchedAt  time.Time
}
