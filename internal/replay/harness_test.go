package replay

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/engine"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/logging"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/request"
)

// helper: cursor pointer for expectations.
func at(n int) *int { return &n }

// helper: fixture from turns with a fixed seed.
func fixture(turns ...FixtureTurn) *Fixture {
	for i := range turns {
		if turns[i].TurnID == "" {
			turns[i].TurnID = "turn-" + string(rune('1'+i))
		}
	}
	return &Fixture{ConversationID: "c1", Seed: 3, Turns: turns}
}

func addTurn(message string, items ...outfit.Item) FixtureTurn {
	return FixtureTurn{
		Message:        message,
		Classification: &request.Classification{Type: request.TypeAddItem, Confidence: 0.9, Entities: request.Entities{Items: items}},
		Expect:         FixtureExpectation{Action: "add_items"},
	}
}

// 1. Every expectation met: no mismatches, summary counts line up.
func TestReplay_AllPass(t *testing.T) {
	t1 := addTurn("add a red dress", outfit.Item{Name: "Red Dress", Category: outfit.ZoneOnePiece})
	t1.Expect.OutfitState = "one_piece"
	t1.Expect.Items = []string{"Red Dress"}
	t1.Expect.Cursor = at(0)

	t2 := addTurn("add heels", outfit.Item{Name: "Black Heels", Category: outfit.ZoneFootwear})
	t2.Expect.Items = []string{"Red Dress", "Black Heels"}

	results, err := Replay(context.Background(), fixture(t1, t2))
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed() {
			t.Errorf("%s: unexpected mismatches %v", r.TurnID, r.Mismatches)
		}
	}
	s := Summarize(results)
	if s.Passed != 2 || s.Failed != 0 || s.Actions["add_items"] != 2 {
		t.Errorf("unexpected summary %+v", s)
	}
	if strings.Join(s.FinalItems, ",") != "Red Dress,Black Heels" {
		t.Errorf("unexpected final items %v", s.FinalItems)
	}
}

// 2. Wrong expectations are reported per field, not fatally.
func TestReplay_Mismatch(t *testing.T) {
	turn := addTurn("add a scarf", outfit.Item{Name: "Scarf", Category: outfit.ZoneAccessories})
	turn.Expect = FixtureExpectation{
		Action:      "remove_items",
		OutfitState: "layered",
		Items:       []string{"Hat"},
		Cursor:      at(4),
	}

	results, err := Replay(context.Background(), fixture(turn))
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	r := results[0]
	if r.Passed() {
		t.Fatal("expected mismatches")
	}
	if len(r.Mismatches) != 4 {
		t.Errorf("expected 4 mismatches, got %d: %v", len(r.Mismatches), r.Mismatches)
	}
	if !strings.HasPrefix(r.Mismatches[0], "action: want remove_items, got add_items") {
		t.Errorf("unexpected first mismatch %q", r.Mismatches[0])
	}
	if Summarize(results).Failed != 1 {
		t.Error("expected 1 failed turn in summary")
	}
}

// 3. Empty items expectation asserts an empty outfit.
func TestReplay_EmptyItemsExpectation(t *testing.T) {
	turn := FixtureTurn{Message: "start over", Expect: FixtureExpectation{Action: "clear", Items: []string{}}}
	results, err := Replay(context.Background(), fixture(turn))
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !results[0].Passed() {
		t.Errorf("unexpected mismatches %v", results[0].Mismatches)
	}
}

// 4. Fixture turn ids become engine turn ids, visible in the turn log.
func TestReplay_TurnIDsReachProvenance(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "replay.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	turn := addTurn("add a scarf", outfit.Item{Name: "Scarf"})
	turn.TurnID = "fx-1"
	if _, err := Replay(context.Background(), fixture(turn), engine.WithProvenance(db)); err != nil {
		t.Fatalf("Replay: %v", err)
	}

	turns, err := logging.Turns(db, "c1", 0)
	if err != nil {
		t.Fatalf("Turns: %v", err)
	}
	if len(turns) != 1 || turns[0].TurnID != "fx-1" {
		t.Fatalf("expected one logged turn fx-1, got %+v", turns)
	}
}

// 5. Empty fixture: no results, zero summary.
func TestReplay_Empty(t *testing.T) {
	results, err := Replay(context.Background(), fixture())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	s := Summarize(results)
	if s.TotalTurns != 0 || s.FinalItems != nil {
		t.Errorf("unexpected summary %+v", s)
	}
}
