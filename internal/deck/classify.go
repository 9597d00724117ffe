package deck

import (
	"regexp"
	"strings"

	"github.com/ramonehamilton/oncurve/internal/cards/scryfall"
	"github.com/ramonehamilton/oncurve/internal/curve"
)

// manaColors are the symbols a land can be credited with, in WUBRG order.
var manaColors = []string{"W", "U", "B", "R", "G"}

// fetchTypes are the land types a fetchland search can name.
var fetchTypes = []string{"Basic", "Plains", "Island", "Swamp", "Forest", "Mountain"}

var (
	entersTappedRegex = regexp.MustCompile(`(?i)enters( the battlefield)? tapped`)
	fetchSearchRegex  = regexp.MustCompile(`(?i)search your library for (?:an? )?(.+?) card`)
	addManaRegex      = regexp.MustCompile(`(?i)add ([^.]*)`)
	symbolRegex       = regexp.MustCompile(`\{([WUBRG])\}`)
	anyColorRegex     = regexp.MustCompile(`(?i)mana of any (?:one )?color`)
)

// face is the part of a card the classifier looks at.
type face struct {
	name       string
	manaCost   string
	typeLine   string
	oracleText string
	produced   []string // Scryfall produced_mana, when known
	identity   []string
}

func cardFace(card *scryfall.Card) face {
	return face{
		name:       card.Name,
		manaCost:   card.ManaCost,
		typeLine:   card.TypeLine,
		oracleText: card.OracleText,
		produced:   card.ProducedMana,
		identity:   card.ColorIdentity,
	}
}

func subFace(f scryfall.CardFace) face {
	return face{
		name:       f.Name,
		manaCost:   f.ManaCost,
		typeLine:   f.TypeLine,
		oracleText: f.OracleText,
	}
}

func (f face) isLand() bool {
	return strings.Contains(f.typeLine, "Land")
}

// classified is what one card contributes to a deck.
type classified struct {
	spells []curve.Spell
	lands  []curve.Land // one record per copy
}

// classify splits a card into spell faces and land copies.
// Lands are only kept for the main deck.
func classify(card *scryfall.Card, count int, keepLands bool) classified {
	var out classified

	switch {
	case len(card.CardFaces) == 0:
		f := cardFace(card)
		if f.isLand() {
			if keepLands {
				out.lands = copies(landFrom(f), count)
			}
		} else {
			out.spells = append(out.spells, spellFrom(f))
		}

	case card.Layout == scryfall.LayoutModalDFC && isPathway(card):
		if keepLands {
			out.lands = copies(pathwayLand(card), count)
		}

	case card.Layout == scryfall.LayoutModalDFC:
		for _, cf := range card.CardFaces {
			f := subFace(cf)
			if f.isLand() {
				if keepLands {
					// The card's produced_mana belongs to its only land face.
					f.produced = card.ProducedMana
					out.lands = append(out.lands, copies(landFrom(f), count)...)
				}
				continue
			}
			out.spells = append(out.spells, spellFrom(f))
		}

	default:
		// transform, split, adventure, flip and other multi-face layouts: only
		// the castable faces count.
		for _, cf := range card.CardFaces {
			f := subFace(cf)
			if !f.isLand() {
				out.spells = append(out.spells, spellFrom(f))
			}
		}
	}

	return out
}

func isPathway(card *scryfall.Card) bool {
	if len(card.CardFaces) < 2 {
		return false
	}
	for _, cf := range card.CardFaces {
		if !subFace(cf).isLand() {
			return false
		}
	}
	return true
}

// pathwayLand merges both land faces into one land tapping for either color.
func pathwayLand(card *scryfall.Card) curve.Land {
	texts := make([]string, 0, len(card.CardFaces))
	for _, cf := range card.CardFaces {
		texts = append(texts, cf.OracleText)
	}
	return landFrom(face{
		name:       card.Name,
		typeLine:   card.CardFaces[0].TypeLine,
		oracleText: strings.Join(texts, "\n"),
		produced:   card.ProducedMana,
		identity:   card.ColorIdentity,
	})
}

func spellFrom(f face) curve.Spell {
	return curve.Spell{
		Name:     f.name,
		ManaCost: f.manaCost,
		Cost:     curve.ParseCost(f.manaCost),
	}
}

func landFrom(f face) curve.Land {
	return curve.Land{
		Name:         f.name,
		TypeLine:     f.typeLine,
		Colors:       landColors(f),
		EntersTapped: entersTappedRegex.MatchString(f.oracleText),
		FetchTargets: fetchTargets(f.oracleText),
	}
}

// landColors prefers Scryfall's produced_mana, then the "Add ..." clauses of
// the rules text, then the color identity.
func landColors(f face) []string {
	if colors := onlyManaColors(f.produced); len(colors) > 0 {
		return colors
	}
	if colors := colorsFromText(f.oracleText); len(colors) > 0 {
		return colors
	}
	return onlyManaColors(f.identity)
}

func colorsFromText(text string) []string {
	seen := make(map[string]bool)
	for _, clause := range addManaRegex.FindAllStringSubmatch(text, -1) {
		if anyColorRegex.MatchString(clause[1]) {
			return append([]string(nil), manaColors...)
		}
		for _, m := range symbolRegex.FindAllStringSubmatch(clause[1], -1) {
			seen[m[1]] = true
		}
	}
	var colors []string
	for _, c := range manaColors {
		if seen[c] {
			colors = append(colors, c)
		}
	}
	return colors
}

// onlyManaColors keeps the WUBRG symbols of symbols in canonical order.
func onlyManaColors(symbols []string) []string {
	var colors []string
	for _, c := range manaColors {
		for _, s := range symbols {
			if strings.EqualFold(s, c) {
				colors = append(colors, c)
				break
			}
		}
	}
	return colors
}

// fetchTargets returns the land types named by a "search your library for"
// clause.
func fetchTargets(text string) []string {
	var targets []string
	for _, m := range fetchSearchRegex.FindAllStringSubmatch(text, -1) {
		for _, word := range strings.FieldsFunc(m[1], func(r rune) bool {
			return r == ' ' || r == ','
		}) {
			for _, t := range fetchTypes {
				if strings.EqualFold(word, t) && !contains(targets, t) {
					targets = append(targets, t)
				}
			}
		}
	}
	return targets
}

func copies(land curve.Land, count int) []curve.Land {
	out := make([]curve.Land, count)
	for i := range out {
		out[i] = land
	}
	return out
}

func union(a, b []string) []string {
	for _, s := range b {
		if !contains(a, s) {
			a = append(a, s)
		}
	}
	return a
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
