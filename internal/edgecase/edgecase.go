// Package edgecase detects requests that cannot be acted on as-is and turns
// them into clarification questions. Detection and resolution are pure and
// stateless per call.
package edgecase

import (
	"strings"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/rules"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/session"
)

// #region types
// Type classifies a problematic request.
type Type string

const (
	IncompleteOutfit        Type = "incomplete_outfit"
	ImpossibleCombination   Type = "impossible_combination"
	AmbiguousName           Type = "ambiguous_name"
	ConflictingInstructions Type = "conflicting_instructions"
	MultipleInterpretations Type = "multiple_interpretations"
	UnknownTerm             Type = "unknown_term"
)

// Payload is the type-specific context of a scenario. Only the fields the
// scenario type uses are set.
type Payload struct {
	CurrentItems []outfit.Item `json:"current_items,omitempty"`
	NewItems     []outfit.Item `json:"new_items,omitempty"`

	// incomplete_outfit
	Removing   []string `json:"removing,omitempty"`
	WouldEmpty bool     `json:"would_empty,omitempty"`
	// impossible_combination
	OnePiece  string   `json:"one_piece,omitempty"`
	Separates []string `json:"separates,omitempty"`
	// ambiguous_name
	Word string `json:"word,omitempty"`
	// conflicting_instructions
	Choices []string `json:"choices,omitempty"`
	// multiple_interpretations
	Color      string        `json:"color,omitempty"`
	Candidates []outfit.Item `json:"candidates,omitempty"`
	// unknown_term
	Term    string `json:"term,omitempty"`
	Similar string `json:"similar,omitempty"`
}

// Scenario is a classified edge case.
type Scenario struct {
	Type    Type    `json:"type"`
	Message string  `json:"original_message"`
	Context Payload `json:"context"`
}

// Action tells the caller how to continue.
type Action string

const (
	ActionClarify Action = "clarify"
	ActionError   Action = "error"
	ActionProceed Action = "proceed"
)

// Resolution is the resolver's answer to a scenario. Resolved is false
// only when the scenario type was not recognized.
type Resolution struct {
	Resolved      bool                   `json:"resolved"`
	Action        Action                 `json:"action"`
	Response      string                 `json:"response"`
	Clarification *session.Clarification `json:"clarification,omitempty"`
}

// #endregion types

// #region detector
// Detector finds edge cases in a message, using the edge-case word lists
// from the rule tables.
type Detector struct {
	tables *rules.Tables
}

// NewDetector builds a Detector; nil tables means the embedded defaults.
func NewDetector(tables *rules.Tables) *Detector {
	if tables == nil {
		tables = rules.Default()
	}
	return &Detector{tables: tables}
}

// Detect classifies message against the current outfit. Rules run in
// order and the first hit wins:
//  1. removal wording with at most one item worn
//  2. a bare zone word with no qualifying term
//  3. a pronoun, several items worn, and a named color that fits more than one
func (d *Detector) Detect(message string, current, newItems []outfit.Item) (Scenario, bool) {
	ec := d.tables.EdgeCases
	base := Payload{CurrentItems: outfit.CloneItems(current), NewItems: outfit.CloneItems(newItems)}

	if _, ok := rules.ContainsAnyWord(message, ec.Removal); ok && len(current) <= 1 {
		p := base
		p.Removing = outfit.Names(current)
		p.WouldEmpty = true
		return Scenario{Type: IncompleteOutfit, Message: message, Context: p}, true
	}

	if word, ok := rules.ContainsAnyWord(message, ec.AmbiguousWords); ok {
		if _, qualified := rules.ContainsAnyWord(message, ec.Qualifiers); !qualified {
			p := base
			p.Word = word
			return Scenario{Type: AmbiguousName, Message: message, Context: p}, true
		}
	}

	if _, ok := rules.ContainsAnyWord(message, ec.Pronouns); ok && len(current) > 1 {
		for _, color := range d.tables.ColorsIn(message) {
			var matches []outfit.Item
			for _, it := range current {
				if strings.Contains(strings.ToLower(it.Name), color) {
					matches = append(matches, it.Clone())
				}
			}
			if len(matches) > 1 {
				p := base
				p.Color = color
				p.Candidates = matches
				return Scenario{Type: MultipleInterpretations, Message: message, Context: p}, true
			}
		}
	}

	return Scenario{}, false
}

// #endregion detector

// #region external-scenarios
// These scenarios are raised from outside the message scan, from what the
// classifier extracted or what a decision would do.

// DetectImpossible reports a one-piece requested together with a top or
// bottom. Items must already carry zones.
func DetectImpossible(message string, newItems []outfit.Item) (Scenario, bool) {
	var onePiece string
	var separates []string
	for _, it := range newItems {
		switch it.Category {
		case outfit.ZoneOnePiece:
			if onePiece == "" {
				onePiece = it.Name
			}
		case outfit.ZoneTop, outfit.ZoneBottom:
			separates = append(separates, it.Name)
		}
	}
	if onePiece == "" || len(separates) == 0 {
		return Scenario{}, false
	}
	return Scenario{
		Type:    ImpossibleCombination,
		Message: message,
		Context: Payload{NewItems: outfit.CloneItems(newItems), OnePiece: onePiece, Separates: separates},
	}, true
}

// Conflicting builds a scenario for two mutually exclusive instructions.
func Conflicting(message string, choices []string) (Scenario, bool) {
	if len(choices) < 2 {
		return Scenario{}, false
	}
	return Scenario{
		Type:    ConflictingInstructions,
		Message: message,
		Context: Payload{Choices: append([]string(nil), choices[:2]...)},
	}, true
}

// Unknown builds a scenario for a term nobody could classify. similar may
// be empty.
func Unknown(message, term, similar string) Scenario {
	return Scenario{Type: UnknownTerm, Message: message, Context: Payload{Term: term, Similar: similar}}
}

// IncompleteAfterRemoval builds the confirm-style scenario for a removal
// that breaks a complete outfit without emptying it.
func IncompleteAfterRemoval(message string, before, after, removed []outfit.Item) (Scenario, bool) {
	if !outfit.IsComplete(before) || outfit.IsComplete(after) || len(after) == 0 {
		return Scenario{}, false
	}
	return Scenario{
		Type:    IncompleteOutfit,
		Message: message,
		Context: Payload{CurrentItems: outfit.CloneItems(before), Removing: outfit.Names(removed)},
	}, true
}

// #endregion external-scenarios
