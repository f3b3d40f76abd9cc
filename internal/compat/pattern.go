package compat

import (
	"fmt"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
)

// #region pattern-detect

// DetectPattern honors an explicit pattern, else scans the name.
func (c *Checker) DetectPattern(it outfit.Item) outfit.Pattern {
	if it.Pattern != "" {
		return it.Pattern
	}
	return c.tables.PatternFor(it.Name)
}

// PatternsCompatible reports whether two patterns can be worn together.
func (c *Checker) PatternsCompatible(a, b outfit.Pattern) bool {
	if a == outfit.PatternSolid || b == outfit.PatternSolid || a == b {
		return true
	}
	// listed pairs override the busy rule
	if c.tables.ExplicitlyCompatible(a, b) {
		return true
	}
	return !(c.tables.IsBusy(a) && c.tables.IsBusy(b))
}

// #endregion pattern-detect

// #region pattern-check

// Pattern checks every unordered pair of printed items.
func (c *Checker) Pattern(items []outfit.Item) PatternResult {
	res := PatternResult{Check: passing(RulePattern), Patterns: []ItemPattern{}, MixingValid: true}
	if len(items) == 0 {
		return res
	}

	for _, it := range items {
		res.Patterns = append(res.Patterns, ItemPattern{Name: it.Name, Pattern: c.DetectPattern(it)})
	}

	for i := 0; i < len(res.Patterns); i++ {
		a := res.Patterns[i]
		if a.Pattern == outfit.PatternSolid {
			continue
		}
		for j := i + 1; j < len(res.Patterns); j++ {
			b := res.Patterns[j]
			if b.Pattern == outfit.PatternSolid || c.PatternsCompatible(a.Pattern, b.Pattern) {
				continue
			}
			res.MixingValid = false
			res.Issues = append(res.Issues, Issue{
				Rule:       RulePattern,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("%s and %s patterns compete", a.Pattern, b.Pattern),
				Items:      []string{a.Name, b.Name},
				Suggestion: fmt.Sprintf("Pair the %s with a solid piece", a.Name),
			})
			res.Suggestions = append(res.Suggestions, Suggestion{
				Type:             SuggestStyle,
				Title:            "Simplify pattern",
				Description:      fmt.Sprintf("Swap %s or %s for a solid so one print leads.", a.Name, b.Name),
				RequiresApproval: true,
			})
		}
	}
	res.Passed = res.MixingValid
	return res
}

// #endregion pattern-check
