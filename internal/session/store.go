package session

import (
	"context"
	"fmt"
	"sync"
)

// #region store-interface
// Store persists session states keyed by conversation id. Implementations
// own their concurrency safety: Update is the read-modify-write primitive
// and must serialize callers on the same conversation id.
type Store interface {
	Load(ctx context.Context, conversationID string) (State, bool, error)
	Save(ctx context.Context, st State) error
	Delete(ctx context.Context, conversationID string) error
	Update(ctx context.Context, conversationID string, fn func(State) (State, error)) (State, error)
}

// LoadSaver is the part of a Store that UpdateLocked builds on.
type LoadSaver interface {
	Load(ctx context.Context, conversationID string) (State, bool, error)
	Save(ctx context.Context, st State) error
}

// #endregion store-interface

// #region key-locks
// KeyLocks hands out one mutex per key. Entries are never reclaimed, which
// matches the no-eviction session lifecycle.
type KeyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Lock blocks until key is free and returns the unlock func.
func (k *KeyLocks) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = map[string]*sync.Mutex{}
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// UpdateLocked runs load -> fn -> save under the key lock. A missing
// session starts from NewState. If fn fails nothing is saved.
func UpdateLocked(ctx context.Context, locks *KeyLocks, s LoadSaver, conversationID string, fn func(State) (State, error)) (State, error) {
	unlock := locks.Lock(conversationID)
	defer unlock()

	st, ok, err := s.Load(ctx, conversationID)
	if err != nil {
		return State{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		st = NewState(conversationID)
	}
	next, err := fn(st)
	if err != nil {
		return State{}, err
	}
	if err := next.Validate(); err != nil {
		return State{}, err
	}
	next.ConversationID = conversationID
	if err := s.Save(ctx, next); err != nil {
		return State{}, fmt.Errorf("save session: %w", err)
	}
	return next.Clone(), nil
}

// #endregion key-locks

// #region memory-store
// MemoryStore keeps sessions in process memory. Nothing is evicted; an
// entry lives until Delete.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]State
	locks    KeyLocks
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]State{}}
}

func (m *MemoryStore) Load(_ context.Context, conversationID string) (State, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.sessions[conversationID]
	if !ok {
		return State{}, false, nil
	}
	return st.Clone(), true, nil
}

func (m *MemoryStore) Save(_ context.Context, st State) error {
	if err := st.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[st.ConversationID] = st.Clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, conversationID)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, conversationID string, fn func(State) (State, error)) (State, error) {
	return UpdateLocked(ctx, &m.locks, m, conversationID, fn)
}

// Len reports how many sessions are held.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// #endregion memory-store

// #region registry
// Registry maps conversation ids to sessions on top of a Store. Sessions are
// created on first access and kept until Delete.
type Registry struct {
	store Store
	opts  []Option
}

// NewRegistry wraps store. opts apply to every Context handed out.
func NewRegistry(store Store, opts ...Option) *Registry {
	return &Registry{store: store, opts: opts}
}

// Store returns the backing store.
func (r *Registry) Store() Store { return r.store }

// Get returns a detached Context for the conversation, creating the
// session lazily. Changes made on the Context are not saved; use Do for
// read-modify-write.
func (r *Registry) Get(ctx context.Context, conversationID string) (*Context, error) {
	st, err := r.store.Update(ctx, conversationID, func(st State) (State, error) { return st, nil })
	if err != nil {
		return nil, err
	}
	return Wrap(st, r.opts...), nil
}

// Lookup returns the session without creating it.
func (r *Registry) Lookup(ctx context.Context, conversationID string) (*Context, error) {
	st, ok, err := r.store.Load(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, conversationID)
	}
	return Wrap(st, r.opts...), nil
}

// Do runs fn against the conversation's session and saves the result
// atomically with respect to other Do calls on the same id.
func (r *Registry) Do(ctx context.Context, conversationID string, fn func(*Context) error) (State, error) {
	return r.store.Update(ctx, conversationID, func(st State) (State, error) {
		c := Wrap(st, r.opts...)
		if err := fn(c); err != nil {
			return State{}, err
		}
		return c.Export(), nil
	})
}

func (r *Registry) Delete(ctx context.Context, conversationID string) error {
	if err := r.store.Delete(ctx, conversationID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// #endregion registry
