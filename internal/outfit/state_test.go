package outfit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func item(name string, zone Zone) Item {
	return Item{Name: name, Category: zone}
}

func TestClassifyState(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  StateTag
	}{
		{"no-items", nil, StateEmpty},
		{"dress", []Item{item("Red Dress", ZoneOnePiece)}, StateOnePiece},
		{"dress-wins-over-separates", []Item{item("Tee", ZoneTop), item("Jumpsuit", ZoneOnePiece)}, StateOnePiece},
		{"separates", []Item{item("Tee", ZoneTop), item("Jeans", ZoneBottom)}, StateSeparates},
		{"layered-outerwear", []Item{item("Tee", ZoneTop), item("Jeans", ZoneBottom), item("Coat", ZoneOuterwear)}, StateLayered},
		{"layered-two-tops", []Item{item("Tee", ZoneTop), item("Cardigan", ZoneTop), item("Jeans", ZoneBottom)}, StateLayered},
		{"top-only", []Item{item("Tee", ZoneTop)}, StateEmpty},
		{"bottom-only", []Item{item("Jeans", ZoneBottom), item("Sneakers", ZoneFootwear)}, StateEmpty},
		{"shoes-only", []Item{item("Sneakers", ZoneFootwear)}, StateEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyState(tt.items))
		})
	}
}

func TestSortByLayer(t *testing.T) {
	one, two := 1, 2
	items := []Item{
		{Name: "Sneakers", Category: ZoneFootwear},
		{Name: "Cardigan", Category: ZoneTop, ZIndex: &two},
		{Name: "Jeans", Category: ZoneBottom},
		{Name: "Tank", Category: ZoneTop, ZIndex: &one},
	}
	got := Names(SortByLayer(items))
	assert.Equal(t, []string{"Tank", "Cardigan", "Jeans", "Sneakers"}, got)
	// input untouched
	assert.Equal(t, "Sneakers", items[0].Name)
}

func TestCloneIsDeep(t *testing.T) {
	orig := Item{Name: "Shirt", Colors: []string{"blue"}}
	c := orig.Clone()
	c.Colors[0] = "red"
	assert.Equal(t, "blue", orig.Colors[0])
}
