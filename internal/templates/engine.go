package templates

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/compat"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/request"
)

// #region engine
// Engine renders replies. The random source only picks the follow-up
// prompt; seed it to get stable output.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New uses rng for follow-up selection. nil seeds from the clock.
func New(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rng: rng}
}

// NewSeeded is New with a fixed seed. Seed 0 seeds from the clock.
func NewSeeded(seed int64) *Engine {
	if seed == 0 {
		return New(nil)
	}
	return New(rand.New(rand.NewSource(seed)))
}

// Input is everything one reply is built from.
type Input struct {
	RequestType request.Type
	State       outfit.StateTag
	Outfit      []outfit.Item // resulting outfit
	Changed     []outfit.Item
	Checks      []compat.Check
	Suggestions []compat.Suggestion // listed only for style advice
}

// #endregion engine

// #region render
// Render builds the reply: confirmation, one line per warning, follow-up.
// Removals and new outfits get their own confirmation wording. Style advice
// swaps the confirmation for the advice header and lists suggestions after
// the warnings.
func (e *Engine) Render(in Input) string {
	parts := []string{e.confirmation(in)}
	parts = append(parts, WarningLines(in.Checks)...)
	if in.RequestType == request.TypeStyleAdvice {
		parts = append(parts, SuggestionLines(in.Suggestions)...)
	}
	parts = append(parts, e.FollowUp(in.State))
	return strings.Join(parts, "\n")
}

func (e *Engine) confirmation(in Input) string {
	names := map[string]string{"items": strings.Join(outfit.Names(in.Changed), ", ")}
	switch {
	case in.RequestType == request.TypeStyleAdvice:
		return Confirmation("advice", nil)
	case in.RequestType == request.TypeRemoveItem && len(in.Changed) > 0:
		return Confirmation("removed", names)
	case in.RequestType == request.TypeNewOutfit && len(in.Outfit) > 0:
		names["items"] = strings.Join(outfit.Names(in.Outfit), ", ")
		return Confirmation("regenerated", names)
	}
	return ConfirmationLine(in.Changed, in.Outfit)
}

// ConfirmationLine picks the confirmation by how many items changed
// relative to the whole outfit.
func ConfirmationLine(changed, total []outfit.Item) string {
	switch {
	case len(changed) == 0:
		return Confirmation("no_change", nil)
	case len(changed) == 1 && len(total) <= 1:
		return Confirmation("single_replace", map[string]string{"item": changed[0].Name})
	case len(changed) > 1:
		return Confirmation("multiple", map[string]string{
			"count": strconv.Itoa(len(changed)),
			"items": strings.Join(outfit.Names(changed), ", "),
		})
	default:
		return Confirmation("added", map[string]string{"item": changed[0].Name})
	}
}

// WarningLines returns one marked line per warning-severity issue.
func WarningLines(checks []compat.Check) []string {
	var out []string
	for _, c := range checks {
		for _, is := range c.Issues {
			if is.Severity == compat.SeverityWarning {
				out = append(out, WarningMarker+" "+is.Message)
			}
		}
	}
	return out
}

// SuggestionLines renders one line per suggestion through the suggestion
// table.
func SuggestionLines(sugs []compat.Suggestion) []string {
	out := make([]string, 0, len(sugs))
	for _, s := range sugs {
		vars := map[string]string{"title": s.Title, "description": s.Description, "item": s.Title}
		if len(s.Before) > 0 {
			vars["item"] = s.Before[0].Name
		} else if len(s.After) > 0 {
			vars["item"] = s.After[0].Name
		}
		out = append(out, "• "+Suggestion(string(s.Type), vars))
	}
	return out
}

// FollowUp returns the completion nudge for an incomplete outfit, else one
// of the completion prompts at random.
func (e *Engine) FollowUp(state outfit.StateTag) string {
	if state == outfit.StateEmpty {
		return incompletePrompt
	}
	e.mu.Lock()
	i := e.rng.Intn(len(completionPrompts))
	e.mu.Unlock()
	return completionPrompts[i]
}

// CompletionPrompts returns a copy of the follow-up pool.
func CompletionPrompts() []string {
	return append([]string(nil), completionPrompts...)
}

// IncompletePrompt is the follow-up used when the outfit is not wearable yet.
func IncompletePrompt() string { return incompletePrompt }

// #endregion render
