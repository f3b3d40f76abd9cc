package compat

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
)

// #region color-check

// Color classifies the outfit's color harmony and flags clashes and
// over-bright combinations.
func (c *Checker) Color(items []outfit.Item) ColorResult {
	res := ColorResult{Check: passing(RuleColor), DominantColors: []string{}, Harmony: HarmonyMonochromatic}
	if len(items) == 0 {
		return res
	}

	perItem := make([][]string, len(items))
	var all []string
	for i, it := range items {
		perItem[i] = c.itemColors(it)
		all = append(all, perItem[i]...)
	}

	res.DominantColors = dominantColors(all, c.tables.Colors.DominantCount)
	res.Harmony = c.harmony(all)

	if res.Harmony == HarmonyClash {
		a, b := c.clashingPair(all)
		affected := itemsWithColors(items, perItem, a, b)
		res.Issues = append(res.Issues, Issue{
			Rule:       RuleColor,
			Severity:   SeverityError,
			Message:    fmt.Sprintf("%s and %s clash", a, b),
			Items:      affected,
			Suggestion: fmt.Sprintf("Swap the %s piece for a neutral", b),
		})
		res.Suggestions = append(res.Suggestions, Suggestion{
			Type:             SuggestCoordination,
			Title:            "Resolve color clash",
			Description:      fmt.Sprintf("Replace one of the %s or %s pieces with black, white, grey or beige.", a, b),
			RequiresApproval: true,
		})
	}

	brights := map[string]bool{}
	for _, col := range all {
		if c.tables.IsBright(col) {
			brights[col] = true
		}
	}
	res.BrightCount = len(brights)
	if res.BrightCount > c.tables.Colors.MaxBright {
		res.Issues = append(res.Issues, Issue{
			Rule:       RuleColor,
			Severity:   SeverityWarning,
			Message:    fmt.Sprintf("%d bright colors compete for attention", res.BrightCount),
			Suggestion: "Anchor the look with a neutral piece",
		})
		res.Suggestions = append(res.Suggestions, Suggestion{
			Type:        SuggestStyle,
			Title:       "Tone down the palette",
			Description: "Keep one or two bright colors and ground the rest with neutrals.",
		})
	}

	res.Passed = res.Harmony != HarmonyClash && res.BrightCount <= c.tables.Colors.MaxBright
	return res
}

// #endregion color-check

// #region color-helpers

// itemColors uses explicit colors when present, else scans the name.
func (c *Checker) itemColors(it outfit.Item) []string {
	if len(it.Colors) > 0 {
		out := make([]string, 0, len(it.Colors))
		for _, col := range it.Colors {
			if col = strings.ToLower(strings.TrimSpace(col)); col != "" {
				out = append(out, col)
			}
		}
		return out
	}
	return c.tables.ColorsIn(it.Name)
}

// dominantColors returns the n most frequent colors, ties by first appearance.
func dominantColors(all []string, n int) []string {
	counts := map[string]int{}
	var order []string
	for _, col := range all {
		if counts[col] == 0 {
			order = append(order, col)
		}
		counts[col]++
	}
	// stable selection keeps first-seen order among equal counts
	out := make([]string, 0, n)
	used := map[string]bool{}
	for len(out) < n && len(out) < len(order) {
		best := ""
		for _, col := range order {
			if used[col] {
				continue
			}
			if best == "" || counts[col] > counts[best] {
				best = col
			}
		}
		used[best] = true
		out = append(out, best)
	}
	return out
}

func (c *Checker) harmony(all []string) Harmony {
	if len(all) <= 1 {
		return HarmonyMonochromatic
	}
	if a, _ := c.clashingPair(all); a != "" {
		return HarmonyClash
	}
	identical := true
	for _, col := range all[1:] {
		if col != all[0] {
			identical = false
			break
		}
	}
	if identical {
		return HarmonyMonochromatic
	}
	var neutral, colored bool
	for _, col := range all {
		if c.tables.IsNeutral(col) {
			neutral = true
		} else {
			colored = true
		}
	}
	if neutral && colored {
		return HarmonyComplementary
	}
	return HarmonyAnalogous
}

// clashingPair returns the first clashing pair in encounter order.
func (c *Checker) clashingPair(all []string) (string, string) {
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[i] != all[j] && c.tables.Clashes(all[i], all[j]) {
				return all[i], all[j]
			}
		}
	}
	return "", ""
}

func itemsWithColors(items []outfit.Item, perItem [][]string, a, b string) []string {
	var out []string
	for i, cols := range perItem {
		for _, col := range cols {
			if col == a || col == b {
				out = append(out, items[i].Name)
				break
			}
		}
	}
	return out
}

// #endregion color-helpers
