package engine

// #region imports
import (
	"errors"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/compat"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/decision"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/edgecase"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/preference"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/request"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/session"
)

// #endregion

// #region metadata-keys

// Session metadata keys the engine owns.
const (
	MetaPendingRequest = "pending_request"
	MetaLastAnswer     = "last_clarification_answer"
	MetaLastValue      = "last_clarification_value"
	MetaLastTurn       = "last_turn_id"
)

// #endregion

// #region errors

var (
	ErrNoConversation = errors.New("conversation id is required")
	ErrNoPreferences  = errors.New("preference memory not configured")
)

// #endregion

// #region turn

// Turn is one user message. Classification comes from the NLU collaborator;
// nil falls back to the keyword classifier. Answer is the option id picked
// for a pending clarification.
type Turn struct {
	ConversationID string                  `json:"conversation_id"`
	MessageID      string                  `json:"message_id,omitempty"`
	Message        string                  `json:"message"`
	Classification *request.Classification `json:"classification,omitempty"`
	Answer         string                  `json:"answer,omitempty"`
	ImageRef       string                  `json:"image_ref,omitempty"`
}

// #endregion

// #region result

// Result is everything a turn produced.
type Result struct {
	TurnID          string                 `json:"turn_id"`
	ConversationID  string                 `json:"conversation_id"`
	Reply           string                 `json:"reply"`
	DecisionContext string                 `json:"decision_context"`
	Classification  request.Classification `json:"classification"`
	Decision        decision.Result        `json:"decision"`
	Checks          []compat.Check         `json:"checks,omitempty"`
	Clarification   *session.Clarification `json:"clarification,omitempty"`
	Scenario        *edgecase.Scenario     `json:"scenario,omitempty"`
	Snapshot        *outfit.Snapshot       `json:"snapshot,omitempty"`
	Before          []outfit.Item          `json:"before"`
	Outfit          []outfit.Item          `json:"outfit"`
	State           outfit.StateTag        `json:"outfit_state"`
	Cursor          int                    `json:"cursor"`
	Answer          string                 `json:"answer,omitempty"`
	Stated          []preference.Feedback  `json:"stated_preferences,omitempty"`
}

// Action is the decision action, the field fixtures and the turn log key on.
func (r Result) Action() decision.Action { return r.Decision.Action }

// #endregion

// #region pending-request

// pendingRequest is the request parked behind a clarification, stored as
// JSON in session metadata so it survives any store.
type pendingRequest struct {
	Message        string                 `json:"message"`
	MessageID      string                 `json:"message_id,omitempty"`
	ImageRef       string                 `json:"image_ref,omitempty"`
	Classification request.Classification `json:"classification"`
	Scenario       edgecase.Scenario      `json:"scenario"`
}

// #endregion
