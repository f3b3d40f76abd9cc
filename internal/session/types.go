package session

import (
	"errors"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
)

// #region errors
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrNotFound      = errors.New("session not found")
	ErrInvalidState  = errors.New("invalid session state")
)

// #endregion errors

// #region clarification
// ClarificationOption is one answer the user can pick. Value is opaque to
// this package; the caller uses it to resume the flow.
type ClarificationOption struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Value       string `json:"value,omitempty"`
}

// Clarification is a question plus ordered options.
type Clarification struct {
	Question string                `json:"question"`
	Options  []ClarificationOption `json:"options"`
	Scenario string                `json:"scenario,omitempty"`
}

// Option looks up an option by id.
func (c Clarification) Option(id string) (ClarificationOption, bool) {
	for _, o := range c.Options {
		if o.ID == id {
			return o, true
		}
	}
	return ClarificationOption{}, false
}

func (c Clarification) clone() Clarification {
	out := c
	if c.Options != nil {
		out.Options = append([]ClarificationOption(nil), c.Options...)
	}
	return out
}

// #endregion clarification

// #region preferences
// Preferences are the user's stated or learned style preferences.
// Nil slices mean "not set" when merging.
type Preferences struct {
	FavoriteColors []string          `json:"favorite_colors,omitempty"`
	AvoidColors    []string          `json:"avoid_colors,omitempty"`
	Patterns       []outfit.Pattern  `json:"patterns,omitempty"`
	Styles         []string          `json:"styles,omitempty"`
	Brands         []string          `json:"brands,omitempty"`
	Occasion       string            `json:"occasion,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// Merge overlays partial on p. Set fields in partial win.
func (p Preferences) Merge(partial Preferences) Preferences {
	out := p.clone()
	if partial.FavoriteColors != nil {
		out.FavoriteColors = append([]string(nil), partial.FavoriteColors...)
	}
	if partial.AvoidColors != nil {
		out.AvoidColors = append([]string(nil), partial.AvoidColors...)
	}
	if partial.Patterns != nil {
		out.Patterns = append([]outfit.Pattern(nil), partial.Patterns...)
	}
	if partial.Styles != nil {
		out.Styles = append([]string(nil), partial.Styles...)
	}
	if partial.Brands != nil {
		out.Brands = append([]string(nil), partial.Brands...)
	}
	if partial.Occasion != "" {
		out.Occasion = partial.Occasion
	}
	if len(partial.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]string, len(partial.Extra))
		}
		for k, v := range partial.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

func (p Preferences) clone() Preferences {
	out := p
	if p.FavoriteColors != nil {
		out.FavoriteColors = append([]string(nil), p.FavoriteColors...)
	}
	if p.AvoidColors != nil {
		out.AvoidColors = append([]string(nil), p.AvoidColors...)
	}
	if p.Patterns != nil {
		out.Patterns = append([]outfit.Pattern(nil), p.Patterns...)
	}
	if p.Styles != nil {
		out.Styles = append([]string(nil), p.Styles...)
	}
	if p.Brands != nil {
		out.Brands = append([]string(nil), p.Brands...)
	}
	if p.Extra != nil {
		out.Extra = make(map[string]string, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// #endregion preferences

// #region state
// State is the per-conversation session value. It is also the exported
// form handed to external persistence.
//
// Invariant: -1 <= Cursor < len(History).
type State struct {
	ConversationID string            `json:"conversation_id"`
	History        []outfit.Snapshot `json:"history"`
	Cursor         int               `json:"cursor"`
	Pending        *Clarification    `json:"pending_clarification,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Preferences    Preferences       `json:"preferences"`
}

// #endregion state
