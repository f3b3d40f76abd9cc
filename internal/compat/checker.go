// Package compat runs rule-based compatibility checks over an outfit.
// Every checker is pure and total: an empty outfit passes with no issues.
package compat

import (
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/rules"
)

// #region checker
// Checker evaluates outfits against one rule set.
type Checker struct {
	tables *rules.Tables
}

// New creates a checker. A nil table set uses the embedded defaults.
func New(tables *rules.Tables) *Checker {
	if tables == nil {
		tables = rules.Default()
	}
	return &Checker{tables: tables}
}

// #endregion checker

// #region report
// Report bundles the four checker results for one outfit.
type Report struct {
	Color     ColorResult     `json:"color"`
	Formality FormalityResult `json:"formality"`
	Pattern   PatternResult   `json:"pattern"`
	Seasonal  SeasonalResult  `json:"seasonal"`
}

// CheckAll runs every checker.
func (c *Checker) CheckAll(items []outfit.Item) Report {
	return Report{
		Color:     c.Color(items),
		Formality: c.Formality(items),
		Pattern:   c.Pattern(items),
		Seasonal:  c.Seasonal(items),
	}
}

// Checks returns the common part of each result in fixed order.
func (r Report) Checks() []Check {
	return []Check{r.Color.Check, r.Formality.Check, r.Pattern.Check, r.Seasonal.Check}
}

// Passed reports whether every checker passed.
func (r Report) Passed() bool {
	for _, c := range r.Checks() {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Issues flattens issues across checks, optionally filtered by severity.
// An empty severity returns all issues.
func (r Report) Issues(sev Severity) []Issue {
	var out []Issue
	for _, c := range r.Checks() {
		for _, is := range c.Issues {
			if sev == "" || is.Severity == sev {
				out = append(out, is)
			}
		}
	}
	return out
}

// Suggestions flattens suggestions across checks.
func (r Report) Suggestions() []Suggestion {
	var out []Suggestion
	for _, c := range r.Checks() {
		out = append(out, c.Suggestions...)
	}
	return out
}

// #endregion report

// #region defaults
var defaultChecker = New(nil)

// CheckColorHarmony runs the color checker with the default rules.
func CheckColorHarmony(items []outfit.Item) ColorResult { return defaultChecker.Color(items) }

// CalculateFormalityLevel scores one item with the default rules.
func CalculateFormalityLevel(item outfit.Item) int { return defaultChecker.FormalityLevel(item) }

// CheckFormality runs the formality checker with the default rules.
func CheckFormality(items []outfit.Item) FormalityResult { return defaultChecker.Formality(items) }

// CheckPatternMixing runs the pattern checker with the default rules.
func CheckPatternMixing(items []outfit.Item) PatternResult { return defaultChecker.Pattern(items) }

// CheckSeasonalCompatibility runs the seasonal checker with the default rules.
func CheckSeasonalCompatibility(items []outfit.Item) SeasonalResult {
	return defaultChecker.Seasonal(items)
}

// #endregion defaults
