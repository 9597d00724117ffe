package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ramonehamilton/oncurve/internal/deck"
)

// deckFiles names the decklist files of one analysis.
type deckFiles struct {
	Deck      string
	Sideboard string
	Commander string
}

// load reads the deck file, splitting it into boards by its section headers.
// Separate sideboard and commander files replace the matching sections.
func (f deckFiles) load() (deck.Decklist, error) {
	text, err := os.ReadFile(f.Deck)
	if err != nil {
		return deck.Decklist{}, fmt.Errorf("read deck: %w", err)
	}
	list := deck.ParseText(string(text))

	if f.Sideboard != "" {
		board, err := readBoard(f.Sideboard)
		if err != nil {
			return deck.Decklist{}, fmt.Errorf("read sideboard: %w", err)
		}
		list.Sideboard = board
	}
	if f.Commander != "" {
		board, err := readBoard(f.Commander)
		if err != nil {
			return deck.Decklist{}, fmt.Errorf("read commander: %w", err)
		}
		list.Commander = board
	}
	return list, nil
}

// readBoard reads a file holding a single board. Headers and comments are
// ignored.
func readBoard(path string) ([]string, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	list := deck.ParseText(string(text))
	board := append(list.Deck, list.Sideboard...)
	return append(board, list.Commander...), nil
}

// paths returns the absolute paths of the files that are set.
func (f deckFiles) paths() []string {
	var out []string
	for _, p := range []string{f.Deck, f.Sideboard, f.Commander} {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out
}
