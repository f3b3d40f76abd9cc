package logging

import (
	"encoding/json"
	"time"
)

// #region turn-entry
// TurnEntry is a single row in the turn_log table.
type TurnEntry struct {
	TurnID          string    `json:"turn_id"`
	ConversationID  string    `json:"conversation_id"`
	RequestType     string    `json:"request_type"`
	Action          string    `json:"action"` // decision action, "clarify" or "cancel"
	Reason          string    `json:"reason,omitempty"`
	DecisionContext string    `json:"decision_context,omitempty"`
	RecordJSON      string    `json:"record_json,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// #endregion turn-entry

// #region turn-record
// TurnRecord captures what a turn was decided from and what it produced.
// Serialized as JSON into turn_log.record_json.
type TurnRecord struct {
	Message    string  `json:"message"`
	MessageID  string  `json:"message_id,omitempty"`
	ImageRef   string  `json:"image_ref,omitempty"`
	Confidence float64 `json:"confidence"`
	// the classification as the engine used it, for replay export
	Classification json.RawMessage `json:"classification,omitempty"`

	// Outfit before and after, by item name
	Before []string `json:"before"`
	After  []string `json:"after"`

	OutfitState string   `json:"outfit_state"`
	FailedRules []string `json:"failed_rules,omitempty"`

	Scenario     string `json:"scenario,omitempty"`
	AnswerOption string `json:"answer_option,omitempty"`
	SnapshotID   string `json:"snapshot_id,omitempty"`
	Cursor       int    `json:"cursor"`
}

// #endregion turn-record
