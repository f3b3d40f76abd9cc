package compat

import "github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"

// #region rule
// Rule names a checker family.
type Rule string

const (
	RuleColor     Rule = "color"
	RuleFormality Rule = "formality"
	RulePattern   Rule = "pattern"
	RuleSeasonal  Rule = "seasonal"
)

// #endregion rule

// #region severity
// Severity grades an issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// #endregion severity

// #region issue
// Issue is one problem a checker found.
type Issue struct {
	Rule       Rule     `json:"type"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Items      []string `json:"affected_items,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// #endregion issue

// #region suggestion
// SuggestionType categorizes a suggestion.
type SuggestionType string

const (
	SuggestUpgrade      SuggestionType = "upgrade"
	SuggestCoordination SuggestionType = "coordination"
	SuggestStyle        SuggestionType = "style"
	SuggestAccessory    SuggestionType = "accessory"
)

// Suggestion is an optional improvement. RequiresApproval suggestions are
// never applied without an explicit user yes.
type Suggestion struct {
	Type             SuggestionType `json:"type"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Before           []outfit.Item  `json:"before,omitempty"`
	After            []outfit.Item  `json:"after,omitempty"`
	RequiresApproval bool           `json:"requires_approval"`
}

// #endregion suggestion

// #region check
// Check is the common part of every checker result.
type Check struct {
	Rule        Rule         `json:"rule"`
	Passed      bool         `json:"passed"`
	Issues      []Issue      `json:"issues"`
	Suggestions []Suggestion `json:"suggestions"`
}

func passing(rule Rule) Check {
	return Check{Rule: rule, Passed: true, Issues: []Issue{}, Suggestions: []Suggestion{}}
}

// Harmony is the color-relationship classification of an outfit.
type Harmony string

const (
	HarmonyClash         Harmony = "clash"
	HarmonyMonochromatic Harmony = "monochromatic"
	HarmonyComplementary Harmony = "complementary"
	HarmonyAnalogous     Harmony = "analogous"
)

// ColorResult is returned by the color checker.
type ColorResult struct {
	Check
	DominantColors []string `json:"dominant_colors"`
	Harmony        Harmony  `json:"harmony"`
	BrightCount    int      `json:"bright_count"`
}

// ItemLevel pairs an item name with its formality level.
type ItemLevel struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// FormalityResult is returned by the formality checker.
type FormalityResult struct {
	Check
	Level      int         `json:"level"`
	Gap        int         `json:"gap"`
	ItemLevels []ItemLevel `json:"item_levels"`
}

// ItemPattern pairs an item name with its detected pattern.
type ItemPattern struct {
	Name    string         `json:"name"`
	Pattern outfit.Pattern `json:"pattern"`
}

// PatternResult is returned by the pattern checker.
type PatternResult struct {
	Check
	Patterns    []ItemPattern `json:"patterns"`
	MixingValid bool          `json:"mixing_valid"`
}

// SeasonalResult is returned by the seasonal checker.
type SeasonalResult struct {
	Check
	Season    string   `json:"season"`
	Conflicts []string `json:"conflicts"`
}

// #endregion check
