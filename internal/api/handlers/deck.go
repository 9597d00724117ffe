package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/oncurve/internal/api/response"
	"github.com/ramonehamilton/oncurve/internal/deck"
)

// DeckHandler handles decklist parsing requests.
type DeckHandler struct{}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler() *DeckHandler {
	return &DeckHandler{}
}

// ParseDeckRequest is the body of POST /api/v1/decks/parse. Text, when set,
// is an exported decklist with optional Deck/Sideboard/Commander headers and
// takes precedence over the board arrays.
type ParseDeckRequest struct {
	Text      string   `json:"text,omitempty"`
	Deck      []string `json:"deck,omitempty"`
	Sideboard []string `json:"sideboard,omitempty"`
	Commander []string `json:"commander,omitempty"`
}

// ParseDeckResponse is the parsed decklist with per-board card totals.
type ParseDeckResponse struct {
	*deck.ParsedDecklist
	DeckCount      int `json:"deck_count"`
	SideboardCount int `json:"sideboard_count"`
	CommanderCount int `json:"commander_count"`
}

// ParseDeck validates a decklist without fetching any card data.
func (h *DeckHandler) ParseDeck(w http.ResponseWriter, r *http.Request) {
	var req ParseDeckRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	list := deck.Decklist{Deck: req.Deck, Sideboard: req.Sideboard, Commander: req.Commander}
	if req.Text != "" {
		list = deck.ParseText(req.Text)
	}

	parsed, err := list.Parse()
	if err != nil {
		if errors.Is(err, deck.ErrInvalidLine) || errors.Is(err, deck.ErrEmptyDecklist) {
			response.BadRequest(w, r, err)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, err)
		return
	}

	response.Success(w, ParseDeckResponse{
		ParsedDecklist: parsed,
		DeckCount:      total(parsed.Deck),
		SideboardCount: total(parsed.Sideboard),
		CommanderCount: total(parsed.Commander),
	})
}

func total(entries []deck.Entry) int {
	n := 0
	for _, e := range entries {
		n += e.Count
	}
	return n
}
