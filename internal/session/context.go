package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
)

// #region context
// Context is a mutable handle over one conversation's State. A Context has a
// single writer; share State values, not Contexts, across goroutines.
type Context struct {
	state State
	newID func() string
	now   func() time.Time
}

// Option configures a Context.
type Option func(*Context)

// WithIDFunc overrides snapshot id generation.
func WithIDFunc(fn func() string) Option {
	return func(c *Context) { c.newID = fn }
}

// WithClock overrides the snapshot timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(c *Context) { c.now = fn }
}

// NewContext starts an empty session.
func NewContext(conversationID string, opts ...Option) *Context {
	return Wrap(NewState(conversationID), opts...)
}

// Wrap takes ownership of a copy of st.
func Wrap(st State, opts ...Option) *Context {
	c := &Context{
		state: st.Clone(),
		newID: func() string { return uuid.New().String() },
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Context) ConversationID() string { return c.state.ConversationID }

func (c *Context) Cursor() int { return c.state.Cursor }

// History returns a copy of every snapshot.
func (c *Context) History() []outfit.Snapshot { return c.state.Clone().History }

// #endregion context

// #region outfit-ops
func (c *Context) CurrentOutfit() []outfit.Item { return c.state.CurrentOutfit() }

func (c *Context) CurrentSnapshot() (outfit.Snapshot, bool) { return c.state.Current() }

// PushSnapshot records items as the new current outfit. imageRef and
// sourceMessageID may be empty.
func (c *Context) PushSnapshot(items []outfit.Item, imageRef, sourceMessageID string) outfit.Snapshot {
	c.state = c.state.Push(outfit.Snapshot{
		ID:              c.newID(),
		SourceMessageID: sourceMessageID,
		Items:           items,
		ImageRef:        imageRef,
		CreatedAt:       c.now(),
	})
	snap, _ := c.state.Current()
	return snap
}

func (c *Context) Undo() (outfit.Snapshot, error) {
	next, snap, err := c.state.Undo()
	if err != nil {
		return outfit.Snapshot{}, err
	}
	c.state = next
	return snap, nil
}

func (c *Context) Redo() (outfit.Snapshot, error) {
	next, snap, err := c.state.Redo()
	if err != nil {
		return outfit.Snapshot{}, err
	}
	c.state = next
	return snap, nil
}

func (c *Context) CanUndo() bool { return c.state.CanUndo() }

func (c *Context) CanRedo() bool { return c.state.CanRedo() }

func (c *Context) ClearHistory() { c.state = c.state.Cleared() }

// #endregion outfit-ops

// #region clarification-ops
func (c *Context) SetPendingClarification(cl Clarification) { c.state = c.state.WithPending(cl) }

func (c *Context) ClearPendingClarification() { c.state = c.state.WithoutPending() }

// PendingClarification returns a copy of the outstanding clarification.
func (c *Context) PendingClarification() (Clarification, bool) {
	if c.state.Pending == nil {
		return Clarification{}, false
	}
	return c.state.Pending.clone(), true
}

// #endregion clarification-ops

// #region prefs-metadata
func (c *Context) UpdateUserPreferences(partial Preferences) {
	c.state = c.state.WithPreferences(partial)
}

func (c *Context) Preferences() Preferences { return c.state.Preferences.clone() }

func (c *Context) GetMetadata(key string) (string, bool) {
	v, ok := c.state.Metadata[key]
	return v, ok
}

func (c *Context) SetMetadata(key, value string) { c.state = c.state.WithMetadata(key, value) }

func (c *Context) DeleteMetadata(key string) { c.state = c.state.WithoutMetadata(key) }

// #endregion prefs-metadata

// #region export-import
// Export returns a deep copy of the full session.
func (c *Context) Export() State { return c.state.Clone() }

// Import replaces the session with st. A state that breaks the cursor
// invariant is rejected and the Context is left as it was.
func (c *Context) Import(st State) error {
	if err := st.Validate(); err != nil {
		return err
	}
	c.state = st.Clone()
	return nil
}

// #endregion export-import
