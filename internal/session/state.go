package session

import (
	"fmt"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
)

// Transitions on State never mutate the receiver. Each returns a new value
// that shares nothing mutable with the old one.

// #region constructor
// NewState returns an empty session for a conversation.
func NewState(conversationID string) State {
	return State{
		ConversationID: conversationID,
		History:        []outfit.Snapshot{},
		Cursor:         -1,
	}
}

// #endregion constructor

// #region queries
// Current returns the snapshot at the cursor.
func (s State) Current() (outfit.Snapshot, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.History) {
		return outfit.Snapshot{}, false
	}
	return cloneSnapshot(s.History[s.Cursor]), true
}

// CurrentOutfit returns the items at the cursor, or an empty list.
func (s State) CurrentOutfit() []outfit.Item {
	snap, ok := s.Current()
	if !ok {
		return []outfit.Item{}
	}
	return snap.Items
}

func (s State) CanUndo() bool { return s.Cursor > 0 }

func (s State) CanRedo() bool { return s.Cursor < len(s.History)-1 }

// Validate checks the cursor invariant.
func (s State) Validate() error {
	if s.Cursor < -1 || s.Cursor >= len(s.History) {
		return fmt.Errorf("%w: cursor %d with %d snapshots", ErrInvalidState, s.Cursor, len(s.History))
	}
	return nil
}

// #endregion queries

// #region transitions
// Push drops everything after the cursor, appends snap with a freshly
// computed state tag and moves the cursor onto it.
func (s State) Push(snap outfit.Snapshot) State {
	out := s.Clone()
	keep := s.Cursor + 1
	if keep < 0 {
		keep = 0
	}
	out.History = out.History[:keep]

	snap = cloneSnapshot(snap)
	snap.ConversationID = s.ConversationID
	snap.State = outfit.ClassifyState(snap.Items)
	if snap.Items == nil {
		snap.Items = []outfit.Item{}
	}
	out.History = append(out.History, snap)
	out.Cursor = len(out.History) - 1
	return out
}

// Undo steps the cursor back. At cursor <= 0 it returns ErrNothingToUndo
// and the receiver unchanged.
func (s State) Undo() (State, outfit.Snapshot, error) {
	if !s.CanUndo() {
		return s, outfit.Snapshot{}, ErrNothingToUndo
	}
	out := s.Clone()
	out.Cursor--
	snap, _ := out.Current()
	return out, snap, nil
}

// Redo steps the cursor forward. At the last index it returns
// ErrNothingToRedo and the receiver unchanged.
func (s State) Redo() (State, outfit.Snapshot, error) {
	if !s.CanRedo() {
		return s, outfit.Snapshot{}, ErrNothingToRedo
	}
	out := s.Clone()
	out.Cursor++
	snap, _ := out.Current()
	return out, snap, nil
}

// Cleared resets history. Pending clarification, preferences and metadata
// survive.
func (s State) Cleared() State {
	out := s.Clone()
	out.History = []outfit.Snapshot{}
	out.Cursor = -1
	return out
}

func (s State) WithPending(c Clarification) State {
	out := s.Clone()
	cc := c.clone()
	out.Pending = &cc
	return out
}

func (s State) WithoutPending() State {
	out := s.Clone()
	out.Pending = nil
	return out
}

func (s State) WithPreferences(partial Preferences) State {
	out := s.Clone()
	out.Preferences = out.Preferences.Merge(partial)
	return out
}

func (s State) WithMetadata(key, value string) State {
	out := s.Clone()
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	out.Metadata[key] = value
	return out
}

func (s State) WithoutMetadata(key string) State {
	out := s.Clone()
	delete(out.Metadata, key)
	return out
}

// #endregion transitions

// #region clone
// Clone deep-copies the state.
func (s State) Clone() State {
	out := s
	out.History = make([]outfit.Snapshot, len(s.History))
	for i, snap := range s.History {
		out.History[i] = cloneSnapshot(snap)
	}
	if s.Pending != nil {
		cc := s.Pending.clone()
		out.Pending = &cc
	}
	if s.Metadata != nil {
		out.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	out.Preferences = s.Preferences.clone()
	return out
}

func cloneSnapshot(snap outfit.Snapshot) outfit.Snapshot {
	out := snap
	out.Items = outfit.CloneItems(snap.Items)
	return out
}

// #endregion clone
