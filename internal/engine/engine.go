// Package engine runs one user turn end to end: session load, clarification
// answers, edge-case detection, decision, compatibility checks, snapshot,
// decision context and reply.
package engine

// #region imports
import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/compat"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/decision"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/decisionctx"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/edgecase"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/logging"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/preference"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/request"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/rules"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/session"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/templates"
)

// #endregion

// #region engine-struct

// Engine coordinates the per-turn pipeline. Turns on the same conversation
// are serialized by the session store.
type Engine struct {
	registry  *session.Registry
	tables    *rules.Tables
	detector  *edgecase.Detector
	resolver  *edgecase.Resolver
	decider   *decision.Decider
	checker   *compat.Checker
	templates *templates.Engine

	provenance *sql.DB            // nil = no turn log
	mirror     session.Store      // nil = no mirror
	prefs      *preference.Memory // nil = no learning
	logger     *zap.Logger
	newID      func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithTables swaps the rule tables used by every stage.
func WithTables(t *rules.Tables) Option { return func(e *Engine) { e.tables = t } }

// WithTemplates sets the reply renderer, typically seeded for tests.
func WithTemplates(t *templates.Engine) Option { return func(e *Engine) { e.templates = t } }

// WithProvenance writes one turn_log row per turn into db.
func WithProvenance(db *sql.DB) Option { return func(e *Engine) { e.provenance = db } }

// WithMirror saves every resulting session into a second store. Mirror
// failures are logged and never fail a turn.
func WithMirror(s session.Store) Option { return func(e *Engine) { e.mirror = s } }

// WithPreferences enables RecordFeedback.
func WithPreferences(m *preference.Memory) Option { return func(e *Engine) { e.prefs = m } }

func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithTurnIDs overrides turn id generation.
func WithTurnIDs(fn func() string) Option { return func(e *Engine) { e.newID = fn } }

// #endregion

// #region constructor

// New wires an engine over registry.
func New(registry *session.Registry, opts ...Option) (*Engine, error) {
	e := &Engine{
		registry: registry,
		newID:    func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(e)
	}
	if e.tables == nil {
		e.tables = rules.Default()
	}
	if e.templates == nil {
		e.templates = templates.New(nil)
	}
	e.logger = logging.OrNop(e.logger).Named("engine")
	e.detector = edgecase.NewDetector(e.tables)
	e.resolver = edgecase.NewResolver(e.tables)
	e.decider = decision.New(e.tables)
	e.checker = compat.New(e.tables)

	if e.provenance != nil {
		if err := logging.EnsureSchema(e.provenance); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Registry returns the session registry the engine runs on.
func (e *Engine) Registry() *session.Registry { return e.registry }

// #endregion

// #region handle-turn

// HandleTurn runs one turn and persists the session. Errors come only from
// the session store; everything else degrades to a reply.
func (e *Engine) HandleTurn(ctx context.Context, t Turn) (Result, error) {
	if strings.TrimSpace(t.ConversationID) == "" {
		return Result{}, ErrNoConversation
	}
	class := e.classify(t)
	turnID := e.newID()

	var res Result
	st, err := e.registry.Do(ctx, t.ConversationID, func(sc *session.Context) error {
		res = e.turn(sc, t, class)
		sc.SetMetadata(MetaLastTurn, turnID)
		return nil
	})
	if err != nil {
		e.logger.Error("turn failed", zap.String("conversation", t.ConversationID), zap.Error(err))
		return Result{}, fmt.Errorf("handle turn: %w", err)
	}
	res.TurnID = turnID
	res.ConversationID = t.ConversationID
	res.Cursor = st.Cursor

	e.logger.Info("turn",
		zap.String("conversation", t.ConversationID),
		zap.String("turn", turnID),
		zap.String("type", string(res.Classification.Type)),
		zap.Float64("confidence", res.Classification.Confidence),
		zap.String("action", string(res.Decision.Action)),
		zap.String("state", string(res.State)),
		zap.Int("cursor", res.Cursor),
	)

	e.recordStated(ctx, t.ConversationID, res.Stated)
	if e.mirror != nil {
		if err := e.mirror.Save(ctx, st); err != nil {
			e.logger.Warn("mirror save failed", zap.String("conversation", t.ConversationID), zap.Error(err))
		}
	}
	e.logTurn(t, res)
	return res, nil
}

func (e *Engine) classify(t Turn) request.Classification {
	if t.Classification != nil {
		return t.Classification.Normalize()
	}
	return request.Guess(t.Message, e.tables)
}

// turn is the pipeline body. It runs under the store's per-conversation
// lock and only mutates sc.
func (e *Engine) turn(sc *session.Context, t Turn, class request.Classification) Result {
	message, messageID, imageRef := t.Message, t.MessageID, t.ImageRef
	skipDetect := false

	if pending, ok := sc.PendingClarification(); ok {
		sc.ClearPendingClarification()
		if t.Answer == "" {
			// a fresh message abandons the open question
			sc.DeleteMetadata(MetaPendingRequest)
		} else {
			resumed, done := e.answer(sc, pending, t.Answer)
			if done != nil {
				done.Answer = t.Answer
				return *done
			}
			message, class, skipDetect = resumed.Message, resumed.Classification, true
			if messageID == "" {
				messageID = resumed.MessageID
			}
			if imageRef == "" {
				imageRef = resumed.ImageRef
			}
		}
	}

	var stated []preference.Feedback
	if t.Answer == "" {
		stated = preference.DetectStated(message, e.tables)
		if len(stated) > 0 {
			sc.UpdateUserPreferences(preference.ApplyStated(sc.Preferences(), stated))
		}
	}

	var res Result
	switch class.Type {
	case request.TypeUndo, request.TypeRedo, request.TypeClear:
		res = e.history(sc, class)
	default:
		res = e.change(sc, message, messageID, imageRef, class, skipDetect)
	}
	if len(stated) > 0 && res.Decision.Action == decision.ActionNoChange && res.Clarification == nil {
		res.Reply = templates.Confirmation("noted", nil) + "\n" + e.templates.FollowUp(res.State)
	}
	res.Answer = t.Answer
	res.Stated = stated
	return res
}

// #endregion

// #region history

func (e *Engine) history(sc *session.Context, class request.Classification) Result {
	before := sc.CurrentOutfit()
	d := e.decider.Decide(class, before)
	var reply string
	switch class.Type {
	case request.TypeUndo:
		reply = templates.Confirmation("undo", nil)
		if _, err := sc.Undo(); errors.Is(err, session.ErrNothingToUndo) {
			reply = templates.Error("nothing_to_undo", nil)
			d = decision.Result{Action: decision.ActionNoChange, Reasoning: "Nothing to undo"}
		}
	case request.TypeRedo:
		reply = templates.Confirmation("redo", nil)
		if _, err := sc.Redo(); errors.Is(err, session.ErrNothingToRedo) {
			reply = templates.Error("nothing_to_redo", nil)
			d = decision.Result{Action: decision.ActionNoChange, Reasoning: "Nothing to redo"}
		}
	case request.TypeClear:
		sc.ClearHistory()
		reply = templates.Confirmation("cleared", nil)
	}

	after := sc.CurrentOutfit()
	report := e.checker.CheckAll(after)
	res := Result{
		Classification: class,
		Decision:       d,
		Checks:         report.Checks(),
		Before:         before,
		Outfit:         after,
		State:          outfit.ClassifyState(after),
	}
	if snap, ok := sc.CurrentSnapshot(); ok && d.Action != decision.ActionNoChange {
		res.Snapshot = &snap
	}
	res.DecisionContext = decisionctx.New().
		Classification(class).
		Outfit(after, sc.Preferences()).
		Decision(d).
		String()
	res.Reply = reply + "\n" + e.templates.FollowUp(res.State)
	return res
}

// #endregion

// #region change

func (e *Engine) change(sc *session.Context, message, messageID, imageRef string, class request.Classification, skipDetect bool) Result {
	current := sc.CurrentOutfit()
	newItems := e.decider.InferZones(class.Entities.Items)

	if !skipDetect {
		if sc2, ok := e.detect(message, class, current, newItems); ok {
			return e.clarify(sc, message, messageID, imageRef, class, sc2)
		}
	}

	d := e.decider.Decide(class, current)
	if d.Action == decision.ActionRegenerate && len(d.ItemsToAdd) == 0 {
		d = decision.Result{Action: decision.ActionNoChange, Reasoning: "No items named for a new outfit"}
	}
	after := decision.Apply(current, d)

	if !skipDetect && d.Action == decision.ActionRemove {
		if sc2, ok := edgecase.IncompleteAfterRemoval(message, current, after, d.ItemsToRemove); ok {
			return e.clarify(sc, message, messageID, imageRef, class, sc2)
		}
	}

	report := e.checker.CheckAll(after)
	d.Suggestions = report.Suggestions()

	res := Result{
		Classification: class,
		Decision:       d,
		Checks:         report.Checks(),
		Before:         current,
		Outfit:         after,
		State:          outfit.ClassifyState(after),
	}
	if mutates(d.Action) {
		snap := sc.PushSnapshot(after, imageRef, messageID)
		res.Snapshot = &snap
	}
	res.DecisionContext = decisionctx.New().
		Classification(class).
		Outfit(current, sc.Preferences()).
		Decision(d).
		Checks(res.Checks).
		String()
	res.Reply = e.templates.Render(templates.Input{
		RequestType: class.Type,
		State:       res.State,
		Outfit:      after,
		Changed:     d.Changed(),
		Checks:      res.Checks,
		Suggestions: d.Suggestions,
	})
	return res
}

func mutates(a decision.Action) bool {
	switch a {
	case decision.ActionAdd, decision.ActionRemove, decision.ActionReplace, decision.ActionRegenerate:
		return true
	}
	return false
}

// detect runs the message scan first, then the scenarios raised from what
// the classifier extracted.
func (e *Engine) detect(message string, class request.Classification, current, newItems []outfit.Item) (edgecase.Scenario, bool) {
	if sc, ok := e.detector.Detect(message, current, newItems); ok {
		return sc, true
	}
	switch class.Type {
	case request.TypeAddItem, request.TypeReplaceItem, request.TypeNewOutfit:
		if sc, ok := edgecase.DetectImpossible(message, newItems); ok {
			return sc, true
		}
	}
	if sc, ok := edgecase.Conflicting(message, class.Entities.Conflict); ok {
		return sc, true
	}
	if len(class.Entities.UnknownTerms) > 0 {
		return edgecase.Unknown(message, class.Entities.UnknownTerms[0], ""), true
	}
	return edgecase.Scenario{}, false
}

// #endregion

// #region clarify

// clarify parks the request behind the resolver's question. A scenario the
// resolver does not know becomes a plain rephrase reply.
func (e *Engine) clarify(sc *session.Context, message, messageID, imageRef string, class request.Classification, scen edgecase.Scenario) Result {
	resolution := e.resolver.Resolve(scen)
	current := sc.CurrentOutfit()
	res := Result{
		Classification: class,
		Scenario:       &scen,
		Before:         current,
		Outfit:         current,
		State:          outfit.ClassifyState(current),
		Reply:          resolution.Response,
		Decision: decision.Result{
			Action:    decision.ActionClarify,
			Reasoning: fmt.Sprintf("Needs clarification: %s", scen.Type),
		},
	}
	if resolution.Clarification == nil {
		res.Decision.Action = decision.ActionNoChange
	} else {
		cl := *resolution.Clarification
		sc.SetPendingClarification(cl)
		res.Clarification = &cl
		raw, err := json.Marshal(pendingRequest{
			Message:        message,
			MessageID:      messageID,
			ImageRef:       imageRef,
			Classification: class,
			Scenario:       scen,
		})
		if err != nil {
			e.logger.Warn("park request failed", zap.String("conversation", sc.ConversationID()), zap.Error(err))
		} else {
			sc.SetMetadata(MetaPendingRequest, string(raw))
		}
	}
	res.DecisionContext = decisionctx.New().
		Classification(class).
		Outfit(current, sc.Preferences()).
		Decision(res.Decision).
		Clarification(res.Clarification).
		String()
	return res
}

// #endregion

// #region provenance

func (e *Engine) logTurn(t Turn, res Result) {
	if e.provenance == nil {
		return
	}
	rec := logging.TurnRecord{
		Message:      t.Message,
		MessageID:    t.MessageID,
		ImageRef:     t.ImageRef,
		Confidence:   res.Classification.Confidence,
		Before:       outfit.Names(res.Before),
		After:        outfit.Names(res.Outfit),
		OutfitState:  string(res.State),
		AnswerOption: res.Answer,
		Cursor:       res.Cursor,
	}
	for _, c := range res.Checks {
		if !c.Passed {
			rec.FailedRules = append(rec.FailedRules, string(c.Rule))
		}
	}
	if res.Scenario != nil {
		rec.Scenario = string(res.Scenario.Type)
	}
	if res.Snapshot != nil {
		rec.SnapshotID = res.Snapshot.ID
	}
	if t.Answer == "" {
		if class, err := json.Marshal(res.Classification); err == nil {
			rec.Classification = class
		}
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		e.logger.Warn("encode turn record failed", zap.Error(err))
	}
	entry := logging.TurnEntry{
		TurnID:          res.TurnID,
		ConversationID:  res.ConversationID,
		RequestType:     string(res.Classification.Type),
		Action:          string(res.Decision.Action),
		Reason:          res.Decision.Reasoning,
		DecisionContext: res.DecisionContext,
		RecordJSON:      string(raw),
	}
	if err := logging.LogTurn(e.provenance, entry); err != nil {
		e.logger.Warn("turn log failed", zap.String("turn", res.TurnID), zap.Error(err))
	}
}

// #endregion

// #region feedback

// RecordFeedback stores feedback for the conversation's user and folds the
// learned preferences back into the session. userID defaults to the
// conversation id.
func (e *Engine) RecordFeedback(ctx context.Context, conversationID string, fb []preference.Feedback) (session.Preferences, error) {
	if e.prefs == nil {
		return session.Preferences{}, ErrNoPreferences
	}
	userID := conversationID
	for _, f := range fb {
		if f.UserID == "" {
			f.UserID = conversationID
		}
		userID = f.UserID
		if err := e.prefs.Record(ctx, f); err != nil {
			return session.Preferences{}, fmt.Errorf("record feedback: %w", err)
		}
	}
	learned, err := e.prefs.Summary(ctx, userID, 5)
	if err != nil {
		return session.Preferences{}, fmt.Errorf("summarize feedback: %w", err)
	}
	st, err := e.registry.Do(ctx, conversationID, func(sc *session.Context) error {
		sc.UpdateUserPreferences(learned)
		return nil
	})
	if err != nil {
		return session.Preferences{}, fmt.Errorf("update preferences: %w", err)
	}
	e.logger.Debug("preferences updated",
		zap.String("conversation", conversationID),
		zap.Strings("favorite_colors", st.Preferences.FavoriteColors),
		zap.Strings("avoid_colors", st.Preferences.AvoidColors),
	)
	return st.Preferences, nil
}

// #endregion
