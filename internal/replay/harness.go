// Package replay runs recorded conversations through a fresh engine and
// compares every turn against its expected outcome. It operates entirely
// in memory unless the caller adds a provenance db.
package replay

import (
	"context"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/engine"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/session"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/templates"
)

// #region types

// TurnResult captures the outcome of replaying one fixture turn.
type TurnResult struct {
	TurnID      string
	Action      string
	Reason      string
	OutfitState string
	Items       []string
	Scenario    string
	Cursor      int
	Reply       string

	// Mismatches is empty when the turn met its expectation.
	Mismatches []string
}

// Passed reports whether the turn met its expectation.
func (r TurnResult) Passed() bool { return len(r.Mismatches) == 0 }

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTurns int
	Passed     int
	Failed     int
	Actions    map[string]int
	FinalItems []string
}

// #endregion types

// #region replay

// Replay builds an engine over an in-memory session store, seeded from the
// fixture, and feeds it every turn in order. opts are applied after the
// replay defaults. Errors come only from the session store.
func Replay(ctx context.Context, f *Fixture, opts ...engine.Option) ([]TurnResult, error) {
	var current string
	base := []engine.Option{
		engine.WithTemplates(templates.NewSeeded(f.Seed)),
		engine.WithTurnIDs(func() string { return current }),
	}
	e, err := engine.New(session.NewRegistry(session.NewMemoryStore()), append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	results := make([]TurnResult, 0, len(f.Turns))
	for i := range f.Turns {
		ft := &f.Turns[i]
		current = ft.TurnID

		res, err := e.HandleTurn(ctx, ft.ToTurn(f.ConversationID))
		if err != nil {
			return results, fmt.Errorf("turn %s: %w", ft.TurnID, err)
		}

		tr := TurnResult{
			TurnID:      ft.TurnID,
			Action:      string(res.Action()),
			Reason:      res.Decision.Reasoning,
			OutfitState: string(res.State),
			Items:       outfit.Names(res.Outfit),
			Cursor:      res.Cursor,
			Reply:       res.Reply,
		}
		if res.Scenario != nil {
			tr.Scenario = string(res.Scenario.Type)
		}
		tr.Mismatches = compare(ft.Expect, tr)
		results = append(results, tr)
	}
	return results, nil
}

// compare lists every way got differs from want.
func compare(want FixtureExpectation, got TurnResult) []string {
	var out []string
	if got.Action != want.Action {
		out = append(out, fmt.Sprintf("action: want %s, got %s (reason: %s)", want.Action, got.Action, got.Reason))
	}
	if want.OutfitState != "" && got.OutfitState != want.OutfitState {
		out = append(out, fmt.Sprintf("outfit_state: want %s, got %s", want.OutfitState, got.OutfitState))
	}
	if want.Scenario != "" && got.Scenario != want.Scenario {
		out = append(out, fmt.Sprintf("scenario: want %s, got %q", want.Scenario, got.Scenario))
	}
	if want.Cursor != nil && got.Cursor != *want.Cursor {
		out = append(out, fmt.Sprintf("cursor: want %d, got %d", *want.Cursor, got.Cursor))
	}
	if want.Items != nil {
		if diff := cmp.Diff(want.Items, got.Items, cmpopts.EquateEmpty()); diff != "" {
			out = append(out, "items (-want +got):\n"+diff)
		}
	}
	return out
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []TurnResult) Summary {
	s := Summary{
		TotalTurns: len(results),
		Actions:    map[string]int{},
	}
	for _, r := range results {
		s.Actions[r.Action]++
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	if n := len(results); n > 0 {
		s.FinalItems = results[n-1].Items
	}
	return s
}

// #endregion replay
