package compat

import (
	"fmt"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/rules"
)

const seasonTransitional = "transitional"

// Fixed conflict labels; callers match on these.
const (
	ConflictHeavyCoatShorts = "Heavy coat with shorts"
	ConflictTankScarf       = "Tank top with scarf"
)

// #region season-tags

// SeasonsFor tags an item with the seasons it suits. Untagged items are
// transitional.
func (c *Checker) SeasonsFor(it outfit.Item) []string {
	tags := c.tables.SeasonsFor(it.Name)
	if len(tags) == 0 {
		return []string{seasonTransitional}
	}
	return tags
}

// #endregion season-tags

// #region seasonal-check

// Seasonal picks the outfit's dominant season and flags out-of-season items.
func (c *Checker) Seasonal(items []outfit.Item) SeasonalResult {
	res := SeasonalResult{Check: passing(RuleSeasonal), Season: seasonTransitional, Conflicts: []string{}}
	if len(items) == 0 {
		return res
	}

	tags := make([][]string, len(items))
	scores := map[string]int{}
	for i, it := range items {
		tags[i] = c.SeasonsFor(it)
		for _, s := range tags[i] {
			scores[s]++
		}
	}

	best := 0
	for _, s := range c.tables.Seasons.Precedence {
		if scores[s] > best {
			best = scores[s]
			res.Season = s
		}
	}

	failing := 0
	for i, it := range items {
		if contains(tags[i], res.Season) || contains(tags[i], seasonTransitional) {
			continue
		}
		msg := fmt.Sprintf("%s is out of season for %s", it.Name, res.Season)
		res.Conflicts = append(res.Conflicts, msg)
		res.Issues = append(res.Issues, Issue{
			Rule:       RuleSeasonal,
			Severity:   SeverityWarning,
			Message:    msg,
			Items:      []string{it.Name},
			Suggestion: fmt.Sprintf("Choose a %s-friendly alternative", res.Season),
		})
		res.Suggestions = append(res.Suggestions, Suggestion{
			Type:             SuggestStyle,
			Title:            fmt.Sprintf("Swap %s", it.Name),
			Description:      fmt.Sprintf("Pick something suited to %s instead of %s.", res.Season, it.Name),
			Before:           []outfit.Item{it.Clone()},
			RequiresApproval: true,
		})
		failing++
	}

	seas := c.tables.Seasons
	heavy := namesMatching(items, seas.HeavyOuterwear)
	shorts := namesMatching(items, seas.Shorts)
	if len(heavy) > 0 && len(shorts) > 0 {
		res.Conflicts = append(res.Conflicts, ConflictHeavyCoatShorts)
		res.Issues = append(res.Issues, Issue{
			Rule:       RuleSeasonal,
			Severity:   SeverityWarning,
			Message:    ConflictHeavyCoatShorts,
			Items:      append(heavy, shorts...),
			Suggestion: "Pair the coat with full-length bottoms",
		})
		failing++
	}
	// recorded as a conflict but does not fail the check
	if len(namesMatching(items, seas.Tank)) > 0 && len(namesMatching(items, seas.Scarf)) > 0 {
		res.Conflicts = append(res.Conflicts, ConflictTankScarf)
	}

	res.Passed = failing == 0
	return res
}

// #endregion seasonal-check

// #region helpers

func namesMatching(items []outfit.Item, keywords []string) []string {
	var out []string
	for _, it := range items {
		if rules.MatchesAny(it.Name, keywords) {
			out = append(out, it.Name)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// #endregion helpers
