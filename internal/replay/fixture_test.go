package replay

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/engine"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/logging"
)

// #region fixture-tests

// TestFixture_StylingSession loads the styling_session fixture, runs Replay(),
// and checks every turn against its expectation. This is the primary
// regression test: if detection, decision or history rules change, this
// catches drift.
func TestFixture_StylingSession(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "styling_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results, err := Replay(context.Background(), f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(results) != len(f.Turns) {
		t.Fatalf("expected %d results, got %d", len(f.Turns), len(results))
	}

	for i, r := range results {
		if r.TurnID != f.Turns[i].TurnID {
			t.Errorf("turn %d: expected turn_id=%s, got %s", i, f.Turns[i].TurnID, r.TurnID)
		}
		for _, m := range r.Mismatches {
			t.Errorf("turn %s: %s", r.TurnID, m)
		}
	}

	s := Summarize(results)
	if s.Failed != 0 {
		t.Errorf("expected no failed turns, got %d", s.Failed)
	}
	if s.Actions["clarify"] != 3 {
		t.Errorf("expected 3 clarify turns, got %d", s.Actions["clarify"])
	}
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

// TestLoadFixture_MissingAction rejects a turn without an expected action.
func TestLoadFixture_MissingAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noaction.json")
	body := `{"turns": [{"message": "add a scarf", "expect": {}}]}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for turn without action, got nil")
	}
}

// TestLoadFixture_Defaults fills in the conversation and turn ids.
func TestLoadFixture_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.json")
	body := `{"turns": [{"message": "add a scarf", "expect": {"action": "add_items"}}]}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if f.ConversationID != "replay" {
		t.Errorf("expected conversation_id=replay, got %s", f.ConversationID)
	}
	if f.Turns[0].TurnID != "turn-1" {
		t.Errorf("expected turn_id=turn-1, got %s", f.Turns[0].TurnID)
	}
}

// #endregion fixture-tests

// #region export-tests

// TestFromTurns_RoundTrip replays the styling fixture with a turn log,
// exports the log back into a fixture and replays that: every turn must
// reproduce its recorded outcome.
func TestFromTurns_RoundTrip(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "styling_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "log.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if _, err := Replay(context.Background(), f, engine.WithProvenance(db)); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	entries, err := logging.Turns(db, f.ConversationID, 0)
	if err != nil {
		t.Fatalf("Turns: %v", err)
	}
	exported, err := FromTurns(f.ConversationID, entries, f.Seed)
	if err != nil {
		t.Fatalf("FromTurns: %v", err)
	}
	if len(exported.Turns) != len(f.Turns) {
		t.Fatalf("expected %d exported turns, got %d", len(f.Turns), len(exported.Turns))
	}
	if exported.Turns[3].Answer != "candidate_1" || exported.Turns[3].Classification != nil {
		t.Errorf("answer turn exported wrong: %+v", exported.Turns[3])
	}
	if exported.Turns[0].Classification == nil {
		t.Error("expected classification on a message turn")
	}

	path := filepath.Join(t.TempDir(), "exported.json")
	if err := WriteFixture(path, exported); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	reloaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	results, err := Replay(context.Background(), reloaded)
	if err != nil {
		t.Fatalf("Replay exported: %v", err)
	}
	for _, r := range results {
		for _, m := range r.Mismatches {
			t.Errorf("exported turn %s: %s", r.TurnID, m)
		}
	}
}

// TestFromTurns_BadRecord surfaces an undecodable record.
func TestFromTurns_BadRecord(t *testing.T) {
	_, err := FromTurns("c1", []logging.TurnEntry{{TurnID: "x", Action: "no_change", RecordJSON: "{"}}, 0)
	if err == nil {
		t.Fatal("expected error for bad record JSON, got nil")
	}
}

// #endregion export-tests
