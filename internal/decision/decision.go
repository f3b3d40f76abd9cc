// Package decision turns a classified request into the concrete set of
// outfit changes, and applies those changes to an outfit.
package decision

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/compat"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/request"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/rules"
)

// #region types
// Action is what the turn did to the outfit.
type Action string

const (
	ActionAdd        Action = "add_items"
	ActionRemove     Action = "remove_items"
	ActionReplace    Action = "replace_items"
	ActionRegenerate Action = "new_outfit"
	ActionAdvice     Action = "style_advice"
	ActionNoChange   Action = "no_change"
	ActionUndo       Action = "undo"
	ActionRedo       Action = "redo"
	ActionClear      Action = "clear"
	ActionClarify    Action = "clarify"
	ActionCancel     Action = "cancel"
)

// Result is the decision for one turn. Suggestions are informational;
// Apply never applies them.
type Result struct {
	Action        Action              `json:"action"`
	Reasoning     string              `json:"reasoning"`
	ItemsToAdd    []outfit.Item       `json:"items_to_add,omitempty"`
	ItemsToRemove []outfit.Item       `json:"items_to_remove,omitempty"`
	Regenerate    bool                `json:"regenerate"`
	Suggestions   []compat.Suggestion `json:"suggestions,omitempty"`
}

// Changed returns the items the decision touches, additions first.
func (r Result) Changed() []outfit.Item {
	out := make([]outfit.Item, 0, len(r.ItemsToAdd)+len(r.ItemsToRemove))
	out = append(out, r.ItemsToAdd...)
	if len(r.ItemsToAdd) == 0 {
		out = append(out, r.ItemsToRemove...)
	}
	return out
}

// #endregion types

// #region decider
// Decider forms decisions. The zero value is not usable; call New.
type Decider struct {
	tables *rules.Tables
}

// New builds a Decider over tables; nil means the embedded defaults.
func New(tables *rules.Tables) *Decider {
	if tables == nil {
		tables = rules.Default()
	}
	return &Decider{tables: tables}
}

// InferZone fills in a missing or unrecognized category from the item name.
// The last garment phrase in the name wins ("Denim Jacket" is outerwear).
// Names with no garment phrase land in accessories, which stack.
func (d *Decider) InferZone(it outfit.Item) outfit.Item {
	for _, z := range outfit.Zones {
		if it.Category == z {
			return it
		}
	}
	out := it.Clone()
	out.Category = outfit.ZoneAccessories
	if m := d.tables.GarmentsIn(it.Name); len(m) > 0 {
		out.Category = m[len(m)-1].Zone
	}
	return out
}

// InferZones applies InferZone to every item.
func (d *Decider) InferZones(items []outfit.Item) []outfit.Item {
	if items == nil {
		return nil
	}
	out := make([]outfit.Item, len(items))
	for i, it := range items {
		out[i] = d.InferZone(it)
	}
	return out
}

// Decide forms the decision for c against the current outfit.
func (d *Decider) Decide(c request.Classification, current []outfit.Item) Result {
	adds := d.InferZones(c.Entities.Items)
	switch c.Type {
	case request.TypeAddItem:
		return d.add(adds, current)
	case request.TypeRemoveItem:
		names := append([]string(nil), c.Entities.ItemsToRemove...)
		names = append(names, outfit.Names(adds)...)
		return d.remove(names, current)
	case request.TypeReplaceItem:
		return d.replace(c.Entities.ItemsToRemove, adds, current)
	case request.TypeNewOutfit:
		return Result{
			Action:        ActionRegenerate,
			Reasoning:     fmt.Sprintf("Starting a new outfit with %s", listOrNothing(adds)),
			ItemsToAdd:    adds,
			ItemsToRemove: outfit.CloneItems(current),
			Regenerate:    true,
		}
	case request.TypeStyleAdvice:
		return Result{Action: ActionAdvice, Reasoning: "Style advice requested; outfit unchanged"}
	case request.TypeUndo:
		return Result{Action: ActionUndo, Reasoning: "Undo requested"}
	case request.TypeRedo:
		return Result{Action: ActionRedo, Reasoning: "Redo requested"}
	case request.TypeClear:
		return Result{Action: ActionClear, Reasoning: "Clear requested", ItemsToRemove: outfit.CloneItems(current)}
	}
	return Result{Action: ActionNoChange, Reasoning: fmt.Sprintf("Request type %s does not change the outfit", c.Type)}
}

// #endregion decider

// #region add-remove
func (d *Decider) add(adds, current []outfit.Item) Result {
	if len(adds) == 0 {
		return Result{Action: ActionNoChange, Reasoning: "No items recognized in the request"}
	}
	removed := displaced(adds, current)
	res := Result{
		Action:        ActionAdd,
		ItemsToAdd:    adds,
		ItemsToRemove: removed,
		Reasoning:     fmt.Sprintf("Adding %s", strings.Join(outfit.Names(adds), ", ")),
	}
	if len(removed) > 0 {
		res.Action = ActionReplace
		res.Reasoning = fmt.Sprintf("Replacing %s with %s",
			strings.Join(outfit.Names(removed), ", "), strings.Join(outfit.Names(adds), ", "))
	}
	return res
}

func (d *Decider) remove(names []string, current []outfit.Item) Result {
	matched := matchByName(names, current)
	if len(matched) == 0 {
		return Result{
			Action:    ActionNoChange,
			Reasoning: fmt.Sprintf("Nothing in the outfit matches %s", listOrNothing(namesAsItems(names))),
		}
	}
	return Result{
		Action:        ActionRemove,
		ItemsToRemove: matched,
		Reasoning:     fmt.Sprintf("Removing %s", strings.Join(outfit.Names(matched), ", ")),
	}
}

func (d *Decider) replace(names []string, adds, current []outfit.Item) Result {
	removed := matchByName(names, current)
	seen := map[string]bool{}
	for _, it := range removed {
		seen[it.Key()] = true
	}
	for _, it := range displaced(adds, current) {
		if !seen[it.Key()] {
			seen[it.Key()] = true
			removed = append(removed, it)
		}
	}
	if len(adds) == 0 && len(removed) == 0 {
		return Result{Action: ActionNoChange, Reasoning: "Nothing to replace"}
	}
	return Result{
		Action:        ActionReplace,
		ItemsToAdd:    adds,
		ItemsToRemove: removed,
		Reasoning: fmt.Sprintf("Replacing %s with %s",
			listOrNothing(removed), listOrNothing(adds)),
	}
}

// displaced returns the current items that new items push out. top, bottom
// and footwear hold one item; a one-piece fills top and bottom; outerwear
// and accessories stack. An identical item is always displaced.
func displaced(adds, current []outfit.Item) []outfit.Item {
	var out []outfit.Item
	for _, cur := range current {
		for _, add := range adds {
			if conflicts(add, cur) {
				out = append(out, cur.Clone())
				break
			}
		}
	}
	return out
}

func conflicts(add, cur outfit.Item) bool {
	if add.Key() == cur.Key() {
		return true
	}
	switch add.Category {
	case outfit.ZoneOnePiece:
		return cur.Category == outfit.ZoneOnePiece || cur.Category == outfit.ZoneTop || cur.Category == outfit.ZoneBottom
	case outfit.ZoneTop, outfit.ZoneBottom:
		return cur.Category == add.Category || cur.Category == outfit.ZoneOnePiece
	case outfit.ZoneFootwear:
		return cur.Category == outfit.ZoneFootwear
	}
	return false
}

// matchByName matches case-insensitively by substring in either direction.
func matchByName(names []string, current []outfit.Item) []outfit.Item {
	var out []outfit.Item
	for _, cur := range current {
		lc := strings.ToLower(cur.Name)
		for _, n := range names {
			ln := strings.ToLower(strings.TrimSpace(n))
			if ln == "" {
				continue
			}
			if strings.Contains(lc, ln) || strings.Contains(ln, lc) {
				out = append(out, cur.Clone())
				break
			}
		}
	}
	return out
}

func namesAsItems(names []string) []outfit.Item {
	out := make([]outfit.Item, len(names))
	for i, n := range names {
		out[i] = outfit.Item{Name: n}
	}
	return out
}

func listOrNothing(items []outfit.Item) string {
	if len(items) == 0 {
		return "nothing"
	}
	return strings.Join(outfit.Names(items), ", ")
}

// #endregion add-remove

// #region apply
// Apply returns the outfit that results from r. Removals match by name and
// zone; a regenerate starts from empty. The result is in layer order.
func Apply(current []outfit.Item, r Result) []outfit.Item {
	var base []outfit.Item
	if !r.Regenerate {
		drop := map[string]bool{}
		for _, it := range r.ItemsToRemove {
			drop[it.Key()] = true
		}
		for _, it := range current {
			if !drop[it.Key()] {
				base = append(base, it)
			}
		}
	}
	base = append(base, r.ItemsToAdd...)
	if len(base) == 0 {
		return []outfit.Item{}
	}
	return outfit.SortByLayer(base)
}

// #endregion apply
