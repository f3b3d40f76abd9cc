package edgecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
)

func item(name string, zone outfit.Zone) outfit.Item {
	return outfit.Item{Name: name, Category: zone}
}

func optionIDs(res Resolution) []string {
	if res.Clarification == nil {
		return nil
	}
	ids := make([]string, len(res.Clarification.Options))
	for i, o := range res.Clarification.Options {
		ids[i] = o.ID
	}
	return ids
}

var twoWhites = []outfit.Item{
	item("White Tee", outfit.ZoneTop),
	item("Blue Jeans", outfit.ZoneBottom),
	item("White Sneakers", outfit.ZoneFootwear),
}

func TestDetect(t *testing.T) {
	d := NewDetector(nil)
	tests := []struct {
		name    string
		message string
		current []outfit.Item
		want    Type
		found   bool
	}{
		{"remove-last-item", "remove it", []outfit.Item{item("Red Dress", outfit.ZoneOnePiece)}, IncompleteOutfit, true},
		{"take-off-empty", "take off the hat", nil, IncompleteOutfit, true},
		{"remove-with-more", "remove the jeans", twoWhites, "", false},
		{"bare-top", "add a nice top", twoWhites, AmbiguousName, true},
		{"bare-pants", "I want different pants", nil, AmbiguousName, true},
		{"qualified-tank", "add a tank top", nil, "", false},
		{"qualified-tshirt", "a white t-shirt please", nil, "", false},
		{"pronoun-color", "make it white", twoWhites, MultipleInterpretations, true},
		{"pronoun-one-match", "change that blue", twoWhites, "", false},
		{"no-pronoun", "white looks good", twoWhites, "", false},
		{"plain", "add a scarf", twoWhites, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, ok := d.Detect(tt.message, tt.current, nil)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, sc.Type)
		})
	}
}

func TestDetectPrecedence(t *testing.T) {
	// removal wins over the ambiguous word
	sc, ok := NewDetector(nil).Detect("remove the top", []outfit.Item{item("Tee", outfit.ZoneTop)}, nil)
	require.True(t, ok)
	assert.Equal(t, IncompleteOutfit, sc.Type)
	assert.True(t, sc.Context.WouldEmpty)
	assert.Equal(t, []string{"Tee"}, sc.Context.Removing)
	assert.Equal(t, "remove the top", sc.Message)
}

func TestRemoveItOnSingleItemOffersReplaceCancel(t *testing.T) {
	d := NewDetector(nil)
	sc, ok := d.Detect("remove it", []outfit.Item{item("Red Dress", outfit.ZoneOnePiece)}, nil)
	require.True(t, ok)
	assert.Equal(t, IncompleteOutfit, sc.Type)

	res := NewResolver(nil).Resolve(sc)
	assert.True(t, res.Resolved)
	assert.Equal(t, ActionError, res.Action)
	assert.Equal(t, []string{OptionReplace, OptionCancel}, optionIDs(res))
	assert.Contains(t, res.Response, "Red Dress")
	assert.Equal(t, string(IncompleteOutfit), res.Clarification.Scenario)
}

func TestResolveIncompleteConfirm(t *testing.T) {
	sc, ok := IncompleteAfterRemoval("remove the jeans",
		twoWhites,
		[]outfit.Item{twoWhites[0], twoWhites[2]},
		[]outfit.Item{twoWhites[1]},
	)
	require.True(t, ok)
	res := NewResolver(nil).Resolve(sc)
	assert.Equal(t, ActionClarify, res.Action)
	assert.Equal(t, []string{OptionContinue, OptionCancel}, optionIDs(res))
	assert.Contains(t, res.Response, "Blue Jeans")

	// a removal that keeps the outfit complete is not an edge case
	_, ok = IncompleteAfterRemoval("remove the sneakers", twoWhites, twoWhites[:2], twoWhites[2:])
	assert.False(t, ok)
}

func TestResolveImpossible(t *testing.T) {
	sc, ok := DetectImpossible("a dress and jeans", []outfit.Item{
		item("Red Dress", outfit.ZoneOnePiece),
		item("Blue Jeans", outfit.ZoneBottom),
	})
	require.True(t, ok)
	assert.Equal(t, "Red Dress", sc.Context.OnePiece)
	res := NewResolver(nil).Resolve(sc)
	assert.Equal(t, []string{OptionDressOnly, OptionSeparates}, optionIDs(res))
	assert.Equal(t, "Blue Jeans", res.Clarification.Options[1].Value)

	_, ok = DetectImpossible("just a dress", []outfit.Item{item("Red Dress", outfit.ZoneOnePiece)})
	assert.False(t, ok)
}

func TestResolveAmbiguousNameOffersSix(t *testing.T) {
	sc, ok := NewDetector(nil).Detect("add a top", nil, nil)
	require.True(t, ok)
	assert.Equal(t, "top", sc.Context.Word)
	res := NewResolver(nil).Resolve(sc)
	require.NotNil(t, res.Clarification)
	assert.Len(t, res.Clarification.Options, 6)
	assert.Equal(t, "garment_1", res.Clarification.Options[0].ID)
	assert.Equal(t, res.Clarification.Options[0].Label, res.Clarification.Options[0].Value)

	// a word the table doesn't cover still gets six options
	res = NewResolver(nil).Resolve(Scenario{Type: AmbiguousName, Context: Payload{Word: "thing"}})
	assert.Len(t, res.Clarification.Options, 6)
}

func TestResolveConflicting(t *testing.T) {
	sc, ok := Conflicting("make it formal and casual", []string{"formal", "casual"})
	require.True(t, ok)
	res := NewResolver(nil).Resolve(sc)
	assert.Equal(t, []string{"option_1", "option_2", OptionSomethingElse}, optionIDs(res))
	assert.Equal(t, "casual", res.Clarification.Options[1].Label)

	_, ok = Conflicting("x", []string{"only one"})
	assert.False(t, ok)
}

func TestResolveMultipleInterpretations(t *testing.T) {
	sc, ok := NewDetector(nil).Detect("make it white", twoWhites, nil)
	require.True(t, ok)
	res := NewResolver(nil).Resolve(sc)
	assert.Equal(t, []string{"candidate_1", "candidate_2", OptionBoth}, optionIDs(res))
	assert.Equal(t, "White Tee"+ValueSep+"White Sneakers", res.Clarification.Options[2].Value)

	three := Scenario{Type: MultipleInterpretations, Context: Payload{Color: "black", Candidates: []outfit.Item{
		item("Black Tee", outfit.ZoneTop), item("Black Jeans", outfit.ZoneBottom), item("Black Boots", outfit.ZoneFootwear),
	}}}
	res = NewResolver(nil).Resolve(three)
	assert.Equal(t, []string{"candidate_1", "candidate_2", "candidate_3"}, optionIDs(res))
}

func TestResolveUnknownTerm(t *testing.T) {
	res := NewResolver(nil).Resolve(Unknown("add a shacket", "shacket", "an overshirt"))
	assert.Equal(t, []string{OptionDescribe, OptionSimilar, OptionSkip}, optionIDs(res))
	assert.Equal(t, "Something similar to an overshirt", res.Clarification.Options[1].Label)
	assert.Contains(t, res.Response, "shacket")

	res = NewResolver(nil).Resolve(Unknown("add a shacket", "shacket", ""))
	assert.Equal(t, "Something similar to shacket", res.Clarification.Options[1].Label)
}

func TestResolveUnrecognized(t *testing.T) {
	res := NewResolver(nil).Resolve(Scenario{Type: "weird"})
	assert.False(t, res.Resolved)
	assert.Equal(t, ActionError, res.Action)
	assert.Nil(t, res.Clarification)
	assert.NotEmpty(t, res.Response)
}
