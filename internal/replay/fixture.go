package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/engine"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/request"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description    string        `json:"description"`
	ConversationID string        `json:"conversation_id"`
	Seed           int64         `json:"seed"`
	Turns          []FixtureTurn `json:"turns"`
}

// FixtureTurn is one recorded message plus what the engine must do with it.
// A nil classification replays through the keyword classifier.
type FixtureTurn struct {
	TurnID         string                  `json:"turn_id"`
	MessageID      string                  `json:"message_id,omitempty"`
	Message        string                  `json:"message"`
	Classification *request.Classification `json:"classification,omitempty"`
	Answer         string                  `json:"answer,omitempty"`
	ImageRef       string                  `json:"image_ref,omitempty"`
	Expect         FixtureExpectation      `json:"expect"`
}

// FixtureExpectation captures the expected outcome per turn. Action is
// always checked; the rest only when present. An empty "items" list
// asserts an empty outfit.
type FixtureExpectation struct {
	Action      string   `json:"action"`
	OutfitState string   `json:"outfit_state,omitempty"`
	Items       []string `json:"items"`
	Scenario    string   `json:"scenario,omitempty"`
	Cursor      *int     `json:"cursor,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.ConversationID == "" {
		f.ConversationID = "replay"
	}
	for i := range f.Turns {
		if f.Turns[i].TurnID == "" {
			f.Turns[i].TurnID = fmt.Sprintf("turn-%d", i+1)
		}
		if f.Turns[i].Expect.Action == "" {
			return nil, fmt.Errorf("parse fixture %s: turn %s has no expected action", path, f.Turns[i].TurnID)
		}
	}
	return &f, nil
}

// ToTurn converts a FixtureTurn to an engine Turn.
func (ft *FixtureTurn) ToTurn(conversationID string) engine.Turn {
	return engine.Turn{
		ConversationID: conversationID,
		MessageID:      ft.MessageID,
		Message:        ft.Message,
		Classification: ft.Classification,
		Answer:         ft.Answer,
		ImageRef:       ft.ImageRef,
	}
}

// #endregion fixture-loader
