package edgecase

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/rules"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/session"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/templates"
)

// Option ids the engine resumes on.
const (
	OptionReplace       = "replace"
	OptionCancel        = "cancel"
	OptionContinue      = "continue"
	OptionDressOnly     = "dress_only"
	OptionSeparates     = "separates"
	OptionSomethingElse = "something_else"
	OptionBoth          = "both"
	OptionDescribe      = "describe"
	OptionSimilar       = "similar"
	OptionSkip          = "skip"
)

// ValueSep joins item names inside an option value.
const ValueSep = "|"

// fallbackGarments is offered when the rule tables have no list for a word.
var fallbackGarments = []string{"T-shirt", "Blouse", "Sweater", "Jeans", "Trousers", "Skirt"}

// #region resolver
// Resolver maps scenarios to clarifications.
type Resolver struct {
	tables *rules.Tables
}

// NewResolver builds a Resolver; nil tables means the embedded defaults.
func NewResolver(tables *rules.Tables) *Resolver {
	if tables == nil {
		tables = rules.Default()
	}
	return &Resolver{tables: tables}
}

// Resolve builds the resolution for sc. An unknown scenario type gets a
// generic rephrase request with Resolved=false.
func (r *Resolver) Resolve(sc Scenario) Resolution {
	p := sc.Context
	switch sc.Type {
	case IncompleteOutfit:
		if p.WouldEmpty {
			q := templates.Clarification("incomplete_outfit_empty", map[string]string{"item": nameOr(p.Removing, "that")})
			return clarify(sc, ActionError, q,
				opt(OptionReplace, "Replace it with something else", ""),
				opt(OptionCancel, "Keep it", ""),
			)
		}
		q := templates.Clarification("incomplete_outfit", map[string]string{"items": nameOr(p.Removing, "that")})
		return clarify(sc, ActionClarify, q,
			opt(OptionContinue, "Yes, remove it", ""),
			opt(OptionCancel, "No, keep it", ""),
		)

	case ImpossibleCombination:
		q := templates.Clarification("impossible_combination", map[string]string{
			"one_piece": p.OnePiece,
			"separates": nameOr(p.Separates, "separates"),
		})
		return clarify(sc, ActionClarify, q,
			opt(OptionDressOnly, fmt.Sprintf("Just the %s", p.OnePiece), p.OnePiece),
			opt(OptionSeparates, "Switch to separates", strings.Join(p.Separates, ValueSep)),
		)

	case AmbiguousName:
		garments := r.tables.AmbiguousOptions(p.Word)
		if len(garments) == 0 {
			garments = fallbackGarments
		}
		opts := make([]session.ClarificationOption, len(garments))
		for i, g := range garments {
			opts[i] = opt(fmt.Sprintf("garment_%d", i+1), g, g)
		}
		q := templates.Clarification("ambiguous_name", map[string]string{"word": p.Word})
		return clarify(sc, ActionClarify, q, opts...)

	case ConflictingInstructions:
		if len(p.Choices) < 2 {
			break
		}
		q := templates.Clarification("conflicting_instructions", map[string]string{"first": p.Choices[0], "second": p.Choices[1]})
		return clarify(sc, ActionClarify, q,
			opt("option_1", p.Choices[0], p.Choices[0]),
			opt("option_2", p.Choices[1], p.Choices[1]),
			opt(OptionSomethingElse, "Something else", ""),
		)

	case MultipleInterpretations:
		if len(p.Candidates) == 0 {
			break
		}
		opts := make([]session.ClarificationOption, 0, len(p.Candidates)+1)
		for i, it := range p.Candidates {
			opts = append(opts, opt(fmt.Sprintf("candidate_%d", i+1), it.Name, it.Name))
		}
		if len(p.Candidates) == 2 {
			opts = append(opts, opt(OptionBoth, "Both", p.Candidates[0].Name+ValueSep+p.Candidates[1].Name))
		}
		q := templates.Clarification("multiple_interpretations", map[string]string{"color": p.Color})
		return clarify(sc, ActionClarify, q, opts...)

	case UnknownTerm:
		similar := p.Similar
		if similar == "" {
			similar = p.Term
		}
		q := templates.Clarification("unknown_term", map[string]string{"term": p.Term})
		return clarify(sc, ActionClarify, q,
			opt(OptionDescribe, "Describe it", ""),
			opt(OptionSimilar, fmt.Sprintf("Something similar to %s", similar), similar),
			opt(OptionSkip, "Skip it", p.Term),
		)
	}
	return Resolution{Resolved: false, Action: ActionError, Response: templates.Error("generic", nil)}
}

// #endregion resolver

// #region helpers
func clarify(sc Scenario, action Action, question string, opts ...session.ClarificationOption) Resolution {
	return Resolution{
		Resolved: true,
		Action:   action,
		Response: question,
		Clarification: &session.Clarification{
			Question: question,
			Options:  opts,
			Scenario: string(sc.Type),
		},
	}
}

func opt(id, label, value string) session.ClarificationOption {
	return session.ClarificationOption{ID: id, Label: label, Value: value}
}

func nameOr(names []string, fallback string) string {
	if len(names) == 0 {
		return fallback
	}
	return strings.Join(names, ", ")
}

// #endregion helpers
