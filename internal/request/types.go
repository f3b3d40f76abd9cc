// Package request models the classification an external NLU service
// returns for one user message.
package request

import (
	"encoding/json"
	"strings"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
)

// #region type
// Type is the classified intent of a message.
type Type string

const (
	TypeAddItem     Type = "add_item"
	TypeRemoveItem  Type = "remove_item"
	TypeReplaceItem Type = "replace_item"
	TypeNewOutfit   Type = "new_outfit"
	TypeStyleAdvice Type = "style_advice"
	TypeUndo        Type = "undo"
	TypeRedo        Type = "redo"
	TypeClear       Type = "clear"
	TypeQuestion    Type = "question"
	TypeUnknown     Type = "unknown"
)

var knownTypes = map[Type]bool{
	TypeAddItem: true, TypeRemoveItem: true, TypeReplaceItem: true, TypeNewOutfit: true,
	TypeStyleAdvice: true, TypeUndo: true, TypeRedo: true, TypeClear: true,
	TypeQuestion: true, TypeUnknown: true,
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool { return knownTypes[t] }

// Mutates reports whether the type changes the outfit through a decision.
func (t Type) Mutates() bool {
	switch t {
	case TypeAddItem, TypeRemoveItem, TypeReplaceItem, TypeNewOutfit:
		return true
	}
	return false
}

// #endregion type

// #region classification
// Entities are the values extracted from the message.
type Entities struct {
	Items         []outfit.Item `json:"items,omitempty"`
	ItemsToRemove []string      `json:"items_to_remove,omitempty"`
	Colors        []string      `json:"colors,omitempty"`
	Occasion      string        `json:"occasion,omitempty"`
	Season        string        `json:"season,omitempty"`
	// Conflict holds two mutually exclusive instructions found in one message.
	Conflict     []string `json:"conflict,omitempty"`
	UnknownTerms []string `json:"unknown_terms,omitempty"`
}

// Classification is the NLU result for one message.
type Classification struct {
	Type       Type     `json:"type"`
	Confidence float64  `json:"confidence"`
	Entities   Entities `json:"entities"`
}

// Unknown is the classification used when nothing usable came back.
func Unknown() Classification {
	return Classification{Type: TypeUnknown}
}

// #endregion classification

// #region parse
// Parse decodes a classification. Malformed input degrades to Unknown
// instead of failing.
func Parse(data []byte) Classification {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Unknown()
	}
	var c Classification
	if err := json.Unmarshal(data, &c); err != nil {
		return Unknown()
	}
	return c.Normalize()
}

// Normalize clamps confidence, maps unknown types to TypeUnknown and drops
// unnamed items.
func (c Classification) Normalize() Classification {
	out := c
	out.Type = Type(strings.ToLower(strings.TrimSpace(string(c.Type))))
	if !out.Type.Valid() {
		out.Type = TypeUnknown
	}
	switch {
	case out.Confidence < 0:
		out.Confidence = 0
	case out.Confidence > 1:
		out.Confidence = 1
	}
	if out.Type == TypeUnknown {
		out.Confidence = 0
	}

	items := make([]outfit.Item, 0, len(c.Entities.Items))
	for _, it := range c.Entities.Items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			continue
		}
		items = append(items, it.Clone())
	}
	if len(items) == 0 {
		items = nil
	}
	out.Entities.Items = items
	return out
}

// #endregion parse
