package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
)

func named(names ...string) []outfit.Item {
	items := make([]outfit.Item, len(names))
	for i, n := range names {
		items[i] = outfit.Item{Name: n}
	}
	return items
}

func TestEmptyOutfitAlwaysPasses(t *testing.T) {
	c := New(nil)
	report := c.CheckAll(nil)
	for _, check := range report.Checks() {
		assert.True(t, check.Passed, "rule %s", check.Rule)
		assert.Empty(t, check.Issues, "rule %s", check.Rule)
		assert.Empty(t, check.Suggestions, "rule %s", check.Rule)
	}
	assert.True(t, report.Passed())
}

// #region color-tests

func TestColorHarmony(t *testing.T) {
	tests := []struct {
		name    string
		items   []outfit.Item
		want    Harmony
		passed  bool
		nIssues int
	}{
		{"clash-red-pink", named("red shirt", "pink pants"), HarmonyClash, false, 1},
		{"clash-navy-black", named("navy blazer", "black trousers"), HarmonyClash, false, 1},
		{"mono", named("blue shirt", "blue jeans"), HarmonyMonochromatic, true, 0},
		{"single-color", named("green dress"), HarmonyMonochromatic, true, 0},
		{"no-colors", named("linen shirt", "chinos"), HarmonyMonochromatic, true, 0},
		{"complementary", named("white tee", "green skirt"), HarmonyComplementary, true, 0},
		{"analogous", named("blue shirt", "green pants"), HarmonyAnalogous, true, 0},
		{"too-bright", named("red top", "yellow skirt", "orange shoes"), HarmonyAnalogous, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckColorHarmony(tt.items)
			assert.Equal(t, tt.want, got.Harmony)
			assert.Equal(t, tt.passed, got.Passed)
			assert.Len(t, got.Issues, tt.nIssues)
		})
	}
}

func TestColorExplicitFieldWins(t *testing.T) {
	items := []outfit.Item{
		{Name: "red shirt", Colors: []string{"White"}},
		{Name: "Jeans", Colors: []string{"blue"}},
	}
	got := CheckColorHarmony(items)
	assert.Equal(t, []string{"white", "blue"}, got.DominantColors)
	assert.Equal(t, HarmonyComplementary, got.Harmony)
}

func TestDominantColorsTopThreeStable(t *testing.T) {
	items := named("black tee", "white shirt", "black jeans", "grey scarf", "beige shoes", "white hat")
	got := CheckColorHarmony(items)
	assert.Equal(t, []string{"black", "white", "grey"}, got.DominantColors)
}

func TestBrightWarningSurvivesHarmony(t *testing.T) {
	// a non-clashing palette still fails once brights exceed the cap
	items := []outfit.Item{{Name: "top", Colors: []string{"red", "yellow", "purple"}}}
	got := CheckColorHarmony(items)
	assert.False(t, got.Passed)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, SeverityWarning, got.Issues[0].Severity)
}

// #endregion color-tests

// #region formality-tests

func TestFormalityLevel(t *testing.T) {
	assert.Equal(t, 5, CalculateFormalityLevel(outfit.Item{Name: "Black Suit"}))
	assert.Equal(t, 1, CalculateFormalityLevel(outfit.Item{Name: "Running Shorts", Category: "athletic"}))
	assert.Equal(t, 4, CalculateFormalityLevel(outfit.Item{Name: "Navy Blazer"}))
	assert.Equal(t, 3, CalculateFormalityLevel(outfit.Item{Name: "Khaki Chinos"}))
	assert.Equal(t, 2, CalculateFormalityLevel(outfit.Item{Name: "Blue Jeans"}))
	assert.Equal(t, 2, CalculateFormalityLevel(outfit.Item{Name: "Mystery Garment"}))
}

func TestFormalityGap(t *testing.T) {
	got := CheckFormality(named("Black Suit", "White Sneakers"))
	assert.Equal(t, 3, got.Gap)
	assert.False(t, got.Passed)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, 4, got.Level) // round(3.5)
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, SuggestUpgrade, got.Suggestions[0].Type)
	assert.Equal(t, "White Sneakers", got.Suggestions[0].Before[0].Name)
	assert.True(t, got.Suggestions[0].RequiresApproval)
}

func TestFormalityLowOverallNoUpgrade(t *testing.T) {
	// levels 4,1,1 -> mean 2 -> no upgrade suggestions
	got := CheckFormality(named("Navy Blazer", "Grey Hoodie", "Joggers"))
	assert.False(t, got.Passed)
	assert.Len(t, got.Issues, 1)
	assert.Empty(t, got.Suggestions)
}

func TestFormalityCloseLevelsPass(t *testing.T) {
	got := CheckFormality(named("Silk Blouse", "Blue Jeans"))
	assert.Equal(t, 1, got.Gap)
	assert.True(t, got.Passed)
	assert.Empty(t, got.Issues)
}

func TestFormalityGapWithoutExtremes(t *testing.T) {
	// 3 and 1: gap 2 fails, but no level>=4 item so no issue
	got := CheckFormality(named("Cardigan", "Grey Hoodie"))
	assert.False(t, got.Passed)
	assert.Empty(t, got.Issues)
}

// #endregion formality-tests

// #region pattern-tests

func TestPatternMixing(t *testing.T) {
	got := CheckPatternMixing(named("Floral Blouse", "Leopard Skirt"))
	assert.False(t, got.MixingValid)
	assert.False(t, got.Passed)
	require.Len(t, got.Issues, 1)
	assert.Contains(t, got.Issues[0].Message, "floral")
	assert.Contains(t, got.Issues[0].Message, "animal_print")
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, "Simplify pattern", got.Suggestions[0].Title)
}

func TestPatternCompatiblePairs(t *testing.T) {
	c := New(nil)
	tests := []struct {
		a, b outfit.Pattern
		want bool
	}{
		{outfit.PatternSolid, outfit.PatternFloral, true},
		{outfit.PatternFloral, outfit.PatternFloral, true},
		{outfit.PatternStripes, outfit.PatternPolkaDots, true},
		{outfit.PatternStripes, outfit.PatternFloral, true},
		{outfit.PatternGeometric, outfit.PatternAnimalPrint, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.PatternsCompatible(tt.a, tt.b), "%s/%s", tt.a, tt.b)
		assert.Equal(t, tt.want, c.PatternsCompatible(tt.b, tt.a), "%s/%s", tt.b, tt.a)
	}
}

func TestPatternExplicitField(t *testing.T) {
	items := []outfit.Item{
		{Name: "Plain Top", Pattern: outfit.PatternGeometric},
		{Name: "Floral Skirt", Pattern: outfit.PatternSolid},
	}
	got := CheckPatternMixing(items)
	assert.True(t, got.MixingValid)
	assert.Equal(t, outfit.PatternGeometric, got.Patterns[0].Pattern)
}

// #endregion pattern-tests

// #region seasonal-tests

func TestSeasonalHeavyCoatShorts(t *testing.T) {
	got := CheckSeasonalCompatibility(named("Puffer Coat", "Running Shorts"))
	assert.Contains(t, got.Conflicts, ConflictHeavyCoatShorts)
	assert.False(t, got.Passed)
	assert.Equal(t, "winter", got.Season)
}

func TestSeasonalTankScarfDoesNotFail(t *testing.T) {
	got := CheckSeasonalCompatibility(named("Tank Top", "Silk Scarf"))
	assert.Contains(t, got.Conflicts, ConflictTankScarf)
	// tank is summer+spring, scarf winter: tie on first precedence goes to winter,
	// so the tank item conflicts on its own
	assert.Equal(t, "winter", got.Season)
}

func TestSeasonalTankScarfAloneKeepsPass(t *testing.T) {
	// the blazer keyword adds spring and transitional, so both items fit
	// spring and only the tank/scarf note remains
	got := CheckSeasonalCompatibility(named("Tank Top", "Scarf Print Blazer"))
	assert.Equal(t, "spring", got.Season)
	assert.Equal(t, []string{ConflictTankScarf}, got.Conflicts)
	assert.True(t, got.Passed)
	assert.Empty(t, got.Issues)
}

func TestSeasonalDefaults(t *testing.T) {
	got := CheckSeasonalCompatibility(named("Silk Blouse"))
	assert.Equal(t, "transitional", got.Season)
	assert.True(t, got.Passed)
	assert.Empty(t, got.Conflicts)

	got = CheckSeasonalCompatibility(named("Blue Jeans", "White Tee", "Sneakers"))
	assert.Equal(t, "winter", got.Season)
	assert.True(t, got.Passed)
}

// #endregion seasonal-tests
