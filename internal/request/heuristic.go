package request

import (
	"strings"
	"unicode"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/rules"
)

// Guess is a keyword fallback for when no NLU classification is supplied
// (the chat CLI, replay fixtures written as plain text). It never calls a
// model.

// #region keywords

var undoKeywords = []string{"undo", "go back", "previous outfit", "revert"}

var redoKeywords = []string{"redo", "go forward", "bring it back"}

var clearKeywords = []string{"start over", "clear everything", "clear the outfit", "reset", "from scratch"}

var newOutfitKeywords = []string{
	"new outfit", "different outfit", "another outfit", "whole new", "completely new",
	"something different",
}

var replaceKeywords = []string{"replace", "swap", "instead of", "switch", "change the", "change my", "exchange"}

var removeKeywords = []string{"remove", "take off", "get rid of", "without", "lose the", "ditch"}

var adviceKeywords = []string{
	"what goes with", "does this match", "does it match", "go well", "go together",
	"advice", "recommend", "suggest", "should i wear", "what to wear",
}

var addKeywords = []string{"add", "put on", "wear", "try", "include", "pair", "layer"}

var occasionKeywords = []string{
	"work", "office", "wedding", "party", "date", "interview", "gym", "beach", "brunch", "dinner",
}

// replaceSplits separate what goes out (left) from what comes in (right).
var replaceSplits = []string{" with ", " for ", " to ", " into "}

// #endregion keywords

// #region guess

// Guess classifies a message with keyword tables.
func Guess(message string, tables *rules.Tables) Classification {
	if tables == nil {
		tables = rules.Default()
	}
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return Unknown()
	}

	c := Classification{Type: guessType(lower, tables)}
	c.Entities.Colors = tables.ColorsIn(message)
	if len(c.Entities.Colors) == 0 {
		c.Entities.Colors = nil
	}
	c.Entities.Occasion, _ = rules.ContainsAnyWord(lower, occasionKeywords)
	for _, s := range tables.Seasons.Precedence {
		if rules.ContainsWord(lower, s) {
			c.Entities.Season = s
			break
		}
	}

	switch c.Type {
	case TypeUndo, TypeRedo, TypeClear:
		c.Confidence = 0.9
	case TypeRemoveItem:
		c.Confidence = 0.7
		c.Entities.ItemsToRemove = itemNames(extractItems(lower, tables))
	case TypeReplaceItem:
		c.Confidence = 0.7
		out, in := splitReplace(lower)
		if idx := strings.Index(lower, "instead of"); idx >= 0 {
			in, out = lower[:idx], lower[idx+len("instead of"):]
		}
		c.Entities.ItemsToRemove = itemNames(extractItems(out, tables))
		c.Entities.Items = extractItems(in, tables)
	case TypeAddItem, TypeNewOutfit, TypeStyleAdvice:
		c.Confidence = 0.7
		c.Entities.Items = extractItems(lower, tables)
		if c.Type == TypeAddItem && len(c.Entities.Items) > 0 && !hasAddKeyword(lower) {
			c.Confidence = 0.5
		}
	case TypeQuestion:
		c.Confidence = 0.4
	}
	return c
}

func guessType(lower string, tables *rules.Tables) Type {
	if _, ok := rules.ContainsAnyWord(lower, undoKeywords); ok {
		return TypeUndo
	}
	if _, ok := rules.ContainsAnyWord(lower, redoKeywords); ok {
		return TypeRedo
	}
	if _, ok := rules.ContainsAnyWord(lower, clearKeywords); ok {
		return TypeClear
	}
	if _, ok := rules.ContainsAnyWord(lower, newOutfitKeywords); ok {
		return TypeNewOutfit
	}
	if _, ok := rules.ContainsAnyWord(lower, replaceKeywords); ok {
		return TypeReplaceItem
	}
	if _, ok := rules.ContainsAnyWord(lower, removeKeywords); ok {
		return TypeRemoveItem
	}
	if _, ok := rules.ContainsAnyWord(lower, adviceKeywords); ok {
		return TypeStyleAdvice
	}
	// a bare garment mention reads as an add
	if hasAddKeyword(lower) || len(tables.GarmentsIn(lower)) > 0 {
		return TypeAddItem
	}
	if strings.HasSuffix(lower, "?") {
		return TypeQuestion
	}
	return TypeUnknown
}

func hasAddKeyword(lower string) bool {
	_, ok := rules.ContainsAnyWord(lower, addKeywords)
	return ok
}

// #endregion guess

// #region extraction

func splitReplace(lower string) (out, in string) {
	for _, sep := range replaceSplits {
		if idx := strings.Index(lower, sep); idx >= 0 {
			return lower[:idx], lower[idx+len(sep):]
		}
	}
	return "", lower
}

// extractItems turns garment phrases into items, keeping up to three
// descriptor words (colors, materials, prints) that directly precede each.
func extractItems(text string, tables *rules.Tables) []outfit.Item {
	matches := tables.GarmentsIn(text)
	if len(matches) == 0 {
		return nil
	}
	items := make([]outfit.Item, 0, len(matches))
	prevEnd := 0
	for _, m := range matches {
		words := strings.Fields(text[prevEnd:m.Start])
		var desc []string
		for i := len(words) - 1; i >= 0 && len(desc) < 3; i-- {
			w := strings.TrimFunc(words[i], func(r rune) bool { return !unicode.IsLetter(r) && r != '-' })
			if !tables.IsDescriptor(w) {
				break
			}
			desc = append([]string{w}, desc...)
		}
		name := titleCase(strings.Join(append(desc, m.Phrase), " "))
		items = append(items, outfit.Item{Name: name, Category: m.Zone})
		prevEnd = m.End
	}
	return items
}

func itemNames(items []outfit.Item) []string {
	if len(items) == 0 {
		return nil
	}
	return outfit.Names(items)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// #endregion extraction
