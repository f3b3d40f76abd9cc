package engine

// #region imports
import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/decision"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/decisionctx"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/edgecase"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/request"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/rules"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/session"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/templates"
)

// #endregion

// #region answer

// answer applies the picked option to the parked request. It returns either
// the request to resume (detection is skipped for it) or a finished result.
func (e *Engine) answer(sc *session.Context, pending session.Clarification, answerID string) (pendingRequest, *Result) {
	opt, ok := pending.Option(answerID)
	if !ok {
		sc.SetPendingClarification(pending)
		reply := templates.Error("generic", nil) + "\n" + pending.Question
		res := e.settled(sc, decision.ActionClarify, "Answer matched no option", reply)
		res.Clarification = &pending
		return pendingRequest{}, &res
	}
	sc.SetMetadata(MetaLastAnswer, opt.ID)
	sc.SetMetadata(MetaLastValue, opt.Value)

	req, ok := e.parked(sc)
	sc.DeleteMetadata(MetaPendingRequest)
	if opt.ID == edgecase.OptionCancel {
		res := e.settled(sc, decision.ActionCancel, "User cancelled", templates.Confirmation("cancelled", nil))
		return pendingRequest{}, &res
	}
	if !ok {
		res := e.settled(sc, decision.ActionNoChange, "No parked request to resume", templates.Confirmation("answered", nil))
		return pendingRequest{}, &res
	}

	ents := &req.Classification.Entities
	switch {
	case opt.ID == edgecase.OptionContinue:

	case opt.ID == edgecase.OptionDressOnly:
		ents.Items = keepZones(e.decider.InferZones(ents.Items), func(z outfit.Zone) bool {
			return z != outfit.ZoneTop && z != outfit.ZoneBottom
		})

	case opt.ID == edgecase.OptionSeparates:
		ents.Items = keepZones(e.decider.InferZones(ents.Items), func(z outfit.Zone) bool {
			return z != outfit.ZoneOnePiece
		})

	case strings.HasPrefix(opt.ID, "garment_"):
		ents.Items = renameGarment(ents.Items, req.Scenario.Context.Word, opt.Value)
		if !req.Classification.Type.Mutates() {
			req.Classification.Type = request.TypeAddItem
		}

	case strings.HasPrefix(opt.ID, "candidate_") || opt.ID == edgecase.OptionBoth:
		names := strings.Split(opt.Value, edgecase.ValueSep)
		switch {
		case req.Classification.Type == request.TypeRemoveItem:
			ents.ItemsToRemove = names
			ents.Items = nil
		case len(ents.Items) > 0:
			req.Classification.Type = request.TypeReplaceItem
			ents.ItemsToRemove = names
		default:
			// nothing to swap in yet; the user has to say what goes there
			res := e.settled(sc, decision.ActionNoChange, "Target picked, no replacement named", templates.Confirmation("answered", nil))
			return pendingRequest{}, &res
		}

	case strings.HasPrefix(opt.ID, "option_"):
		req.Message = opt.Value
		req.Classification = request.Guess(opt.Value, e.tables)

	case opt.ID == edgecase.OptionSimilar:
		ents.UnknownTerms = nil

	case opt.ID == edgecase.OptionSkip:
		ents.UnknownTerms = nil
		ents.Items = dropNamed(ents.Items, opt.Value)

	default:
		// describe, replace, something_else: the next message carries the answer
		res := e.settled(sc, decision.ActionNoChange, "Waiting for the user to describe the change", templates.Confirmation("answered", nil))
		return pendingRequest{}, &res
	}
	e.logger.Debug("resuming parked request",
		zap.String("conversation", sc.ConversationID()),
		zap.String("scenario", string(req.Scenario.Type)),
		zap.String("option", opt.ID),
	)
	return req, nil
}

// parked decodes the request stored behind the clarification.
func (e *Engine) parked(sc *session.Context) (pendingRequest, bool) {
	raw, ok := sc.GetMetadata(MetaPendingRequest)
	if !ok || raw == "" {
		return pendingRequest{}, false
	}
	var req pendingRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		e.logger.Warn("parked request unreadable", zap.String("conversation", sc.ConversationID()), zap.Error(err))
		return pendingRequest{}, false
	}
	req.Classification = req.Classification.Normalize()
	return req, true
}

// settled is the result of a turn that leaves the outfit untouched.
func (e *Engine) settled(sc *session.Context, action decision.Action, reason, reply string) Result {
	current := sc.CurrentOutfit()
	d := decision.Result{Action: action, Reasoning: reason}
	return Result{
		Decision: d,
		Before:   current,
		Outfit:   current,
		State:    outfit.ClassifyState(current),
		Reply:    reply,
		DecisionContext: decisionctx.New().
			Outfit(current, sc.Preferences()).
			Decision(d).
			String(),
	}
}

// #endregion

// #region item-edits

func keepZones(items []outfit.Item, keep func(outfit.Zone) bool) []outfit.Item {
	var out []outfit.Item
	for _, it := range items {
		if keep(it.Category) {
			out = append(out, it)
		}
	}
	return out
}

// renameGarment swaps the vague word in matching item names for the chosen
// garment, keeping the descriptors around it. With no match the garment is
// added as its own item.
func renameGarment(items []outfit.Item, word, garment string) []outfit.Item {
	out := outfit.CloneItems(items)
	renamed := false
	for i, it := range out {
		lower := strings.ToLower(it.Name)
		idx := strings.Index(lower, strings.ToLower(word))
		if word == "" || idx < 0 || !rules.ContainsWord(it.Name, word) {
			continue
		}
		out[i].Name = strings.TrimSpace(it.Name[:idx] + garment + it.Name[idx+len(word):])
		out[i].Category = ""
		renamed = true
	}
	if !renamed {
		out = append(out, outfit.Item{Name: garment})
	}
	return out
}

func dropNamed(items []outfit.Item, term string) []outfit.Item {
	if term == "" {
		return items
	}
	var out []outfit.Item
	for _, it := range items {
		if !strings.Contains(strings.ToLower(it.Name), strings.ToLower(term)) {
			out = append(out, it)
		}
	}
	return out
}

// #endregion
