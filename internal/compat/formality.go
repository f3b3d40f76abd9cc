package compat

import (
	"fmt"
	"math"
	"strings"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
)

// #region formality-level

// FormalityLevel maps an item to 1 (very casual) .. 5 (formal). The name is
// checked before the category; first matching group wins.
func (c *Checker) FormalityLevel(it outfit.Item) int {
	if lvl, ok := c.tables.FormalityFor(it.Name); ok {
		return lvl.Level
	}
	if lvl, ok := c.tables.FormalityFor(string(it.Category)); ok {
		return lvl.Level
	}
	return c.tables.Formality.DefaultLevel
}

// #endregion formality-level

// #region formality-check

// Formality checks that item formality levels stay close together.
func (c *Checker) Formality(items []outfit.Item) FormalityResult {
	res := FormalityResult{Check: passing(RuleFormality), ItemLevels: []ItemLevel{}}
	if len(items) == 0 {
		return res
	}

	sum := 0
	lo, hi := math.MaxInt, math.MinInt
	for _, it := range items {
		lvl := c.FormalityLevel(it)
		res.ItemLevels = append(res.ItemLevels, ItemLevel{Name: it.Name, Level: lvl})
		sum += lvl
		lo = min(lo, lvl)
		hi = max(hi, lvl)
	}
	res.Level = int(math.Round(float64(sum) / float64(len(items))))
	res.Gap = hi - lo
	res.Passed = res.Gap <= c.tables.Formality.MaxGap

	if res.Passed || hi < 4 || lo > 2 {
		return res
	}

	var dressy, casual []string
	var casualItems []outfit.Item
	for i, il := range res.ItemLevels {
		switch {
		case il.Level >= 4:
			dressy = append(dressy, il.Name)
		case il.Level <= 2:
			casual = append(casual, il.Name)
			casualItems = append(casualItems, items[i])
		}
	}
	res.Issues = append(res.Issues, Issue{
		Rule:     RuleFormality,
		Severity: SeverityWarning,
		Message: fmt.Sprintf("%s feels much dressier than %s",
			strings.Join(dressy, ", "), strings.Join(casual, ", ")),
		Items:      append(append([]string{}, dressy...), casual...),
		Suggestion: "Match the formality of every piece",
	})

	if res.Level >= 3 {
		for _, it := range casualItems {
			res.Suggestions = append(res.Suggestions, Suggestion{
				Type:             SuggestUpgrade,
				Title:            fmt.Sprintf("Upgrade %s", it.Name),
				Description:      fmt.Sprintf("Replace %s with a dressier alternative to match the rest of the outfit.", it.Name),
				Before:           []outfit.Item{it.Clone()},
				RequiresApproval: true,
			})
		}
	}
	return res
}

// #endregion formality-check
