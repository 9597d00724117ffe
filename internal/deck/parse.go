package deck

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrInvalidLine is returned for a decklist line that is not "<count> <name>".
	ErrInvalidLine = errors.New("invalid decklist line")

	// ErrEmptyDecklist is returned when the main deck has no cards.
	ErrEmptyDecklist = errors.New("decklist has no main deck cards")
)

// Board names a section of a decklist.
type Board string

const (
	BoardDeck      Board = "deck"
	BoardSideboard Board = "sideboard"
	BoardCommander Board = "commander"
)

// lineRegex accepts "4 Lightning Bolt", "4x Lightning Bolt" and the Arena
// export form "4 Lightning Bolt (M21) 123".
// Group 1: quantity, Group 2: card name, Group 3: set code, Group 4: collector number
var lineRegex = regexp.MustCompile(`^(\d+)x?\s+(.+?)(?:\s+\(([A-Za-z0-9]+)\)(?:\s+(\S+))?)?$`)

// Entry is one parsed decklist line.
type Entry struct {
	Count   int    `json:"count"`
	Name    string `json:"name"`
	SetCode string `json:"set,omitempty"`
}

// Decklist holds the raw "<count> <name>" lines of each board.
type Decklist struct {
	Deck      []string `json:"deck"`
	Sideboard []string `json:"sideboard,omitempty"`
	Commander []string `json:"commander,omitempty"`
}

// ParsedDecklist is a Decklist with every line parsed.
type ParsedDecklist struct {
	Deck      []Entry `json:"deck"`
	Sideboard []Entry `json:"sideboard"`
	Commander []Entry `json:"commander"`
}

// ParseLine splits a decklist line into its count and card name.
func ParseLine(line string) (Entry, error) {
	line = strings.TrimSpace(line)
	matches := lineRegex.FindStringSubmatch(line)
	if matches == nil {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidLine, line)
	}

	count, err := strconv.Atoi(matches[1])
	if err != nil || count <= 0 {
		return Entry{}, fmt.Errorf("%w: invalid quantity in %q", ErrInvalidLine, line)
	}

	return Entry{
		Count:   count,
		Name:    strings.TrimSpace(matches[2]),
		SetCode: strings.ToUpper(matches[3]),
	}, nil
}

// ParseLines parses every non-blank line. Errors carry the 1-based line number.
func ParseLines(lines []string) ([]Entry, error) {
	entries := make([]Entry, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Parse parses all three boards. The main deck must hold at least one card.
func (d Decklist) Parse() (*ParsedDecklist, error) {
	deck, err := ParseLines(d.Deck)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", BoardDeck, err)
	}
	if len(deck) == 0 {
		return nil, ErrEmptyDecklist
	}
	sideboard, err := ParseLines(d.Sideboard)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", BoardSideboard, err)
	}
	commander, err := ParseLines(d.Commander)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", BoardCommander, err)
	}
	return &ParsedDecklist{Deck: deck, Sideboard: sideboard, Commander: commander}, nil
}

// ParseText splits a text export into boards.
//
// Lines reading "Deck", "Sideboard", "Commander" or "Companion" (an optional
// trailing colon is allowed) switch the current board. Companion cards live
// outside the main deck and are filed with the sideboard. An "About" header
// starts a metadata section ("Name ...") that is skipped up to the next
// header. Without an explicit Sideboard header, the first blank line after
// main deck cards starts the sideboard, as in Arena exports. "//" comments
// are dropped. Card lines are not validated here.
func ParseText(text string) Decklist {
	var d Decklist
	board := BoardDeck
	metadata := false
	blankSplit := false // a blank line already moved us to the sideboard
	lines := strings.Split(text, "\n")
	sideboardHeader := hasHeader(lines, "sideboard")

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "//") {
			continue
		}
		if line == "" {
			if !metadata && !sideboardHeader && !blankSplit && board == BoardDeck && len(d.Deck) > 0 {
				board = BoardSideboard
				blankSplit = true
			}
			continue
		}

		switch header(line) {
		case "deck", "main", "mainboard":
			board, metadata = BoardDeck, false
			continue
		case "sideboard", "companion":
			board, metadata = BoardSideboard, false
			continue
		case "commander":
			board, metadata = BoardCommander, false
			continue
		case "about":
			metadata = true
			continue
		}
		if metadata {
			continue
		}

		switch board {
		case BoardSideboard:
			d.Sideboard = append(d.Sideboard, line)
		case BoardCommander:
			d.Commander = append(d.Commander, line)
		default:
			d.Deck = append(d.Deck, line)
		}
	}
	return d
}

// header returns the lower-cased line without a trailing colon, the form
// section headers are compared in.
func header(line string) string {
	return strings.ToLower(strings.TrimSuffix(line, ":"))
}

func hasHeader(lines []string, name string) bool {
	for _, l := range lines {
		if header(strings.TrimSpace(l)) == name {
			return true
		}
	}
	return false
}
