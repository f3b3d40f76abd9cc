package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/logging"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/request"
)

// #region export

// FromTurns rebuilds a fixture from logged turns, oldest first, with every
// recorded outcome as the expectation. Replaying it against unchanged rules
// must pass; a failing turn marks behavior drift.
func FromTurns(conversationID string, entries []logging.TurnEntry, seed int64) (*Fixture, error) {
	f := &Fixture{
		Description:    fmt.Sprintf("exported from turn_log for conversation %s (%d turns)", conversationID, len(entries)),
		ConversationID: conversationID,
		Seed:           seed,
		Turns:          make([]FixtureTurn, 0, len(entries)),
	}
	for _, e := range entries {
		var rec logging.TurnRecord
		if e.RecordJSON != "" {
			if err := json.Unmarshal([]byte(e.RecordJSON), &rec); err != nil {
				return nil, fmt.Errorf("decode record %s: %w", e.TurnID, err)
			}
		}
		ft := FixtureTurn{
			TurnID:    e.TurnID,
			MessageID: rec.MessageID,
			Message:   rec.Message,
			Answer:    rec.AnswerOption,
			ImageRef:  rec.ImageRef,
			Expect: FixtureExpectation{
				Action:      e.Action,
				OutfitState: rec.OutfitState,
				Items:       append([]string{}, rec.After...),
				Scenario:    rec.Scenario,
			},
		}
		cursor := rec.Cursor
		ft.Expect.Cursor = &cursor
		if len(rec.Classification) > 0 && rec.AnswerOption == "" {
			var c request.Classification
			if err := json.Unmarshal(rec.Classification, &c); err != nil {
				return nil, fmt.Errorf("decode classification %s: %w", e.TurnID, err)
			}
			ft.Classification = &c
		}
		f.Turns = append(f.Turns, ft)
	}
	return f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion export
