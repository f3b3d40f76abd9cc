package outfit

import (
	"strings"
	"time"
)

// #region zone
// Zone is the body-coverage category an item occupies.
type Zone string

const (
	ZoneTop         Zone = "top"
	ZoneBottom      Zone = "bottom"
	ZoneOnePiece    Zone = "one_piece"
	ZoneOuterwear   Zone = "outerwear"
	ZoneFootwear    Zone = "footwear"
	ZoneAccessories Zone = "accessories"
)

// Zones lists every zone in render order.
var Zones = []Zone{ZoneTop, ZoneBottom, ZoneOnePiece, ZoneOuterwear, ZoneFootwear, ZoneAccessories}

// #endregion zone

// #region pattern
// Pattern is the surface print of an item.
type Pattern string

const (
	PatternSolid       Pattern = "solid"
	PatternStripes     Pattern = "stripes"
	PatternPolkaDots   Pattern = "polka_dots"
	PatternFloral      Pattern = "floral"
	PatternGeometric   Pattern = "geometric"
	PatternAnimalPrint Pattern = "animal_print"
)

// #endregion pattern

// #region state-tag
// StateTag summarizes how an outfit is composed.
type StateTag string

const (
	StateSeparates StateTag = "separates"
	StateOnePiece  StateTag = "one_piece"
	StateLayered   StateTag = "layered"
	StateEmpty     StateTag = "empty"
)

// #endregion state-tag

// #region item
// Item is a single garment or accessory. Treat it as an immutable value.
type Item struct {
	Name     string   `json:"name"`
	Category Zone     `json:"category,omitempty"`
	Colors   []string `json:"colors,omitempty"`
	Pattern  Pattern  `json:"pattern,omitempty"` // empty = detect from name
	Brand    string   `json:"brand,omitempty"`
	Style    []string `json:"style,omitempty"`
	ZIndex   *int     `json:"z_index,omitempty"`
}

// Key identifies an item for grouping: lowercased name plus zone.
func (i Item) Key() string {
	return strings.ToLower(strings.TrimSpace(i.Name)) + "|" + string(i.Category)
}

// Clone returns a deep copy so callers can't mutate shared slices.
func (i Item) Clone() Item {
	out := i
	if i.Colors != nil {
		out.Colors = append([]string(nil), i.Colors...)
	}
	if i.Style != nil {
		out.Style = append([]string(nil), i.Style...)
	}
	if i.ZIndex != nil {
		z := *i.ZIndex
		out.ZIndex = &z
	}
	return out
}

// CloneItems deep-copies a list of items.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// Names returns item names in order.
func Names(items []Item) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}

// #endregion item

// #region snapshot
// Snapshot is an immutable recorded outfit at one point in a conversation.
type Snapshot struct {
	ID              string    `json:"id"`
	ConversationID  string    `json:"conversation_id"`
	SourceMessageID string    `json:"source_message_id,omitempty"`
	State           StateTag  `json:"outfit_state"`
	Items           []Item    `json:"items"`
	ImageRef        string    `json:"image_ref,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// #endregion snapshot
