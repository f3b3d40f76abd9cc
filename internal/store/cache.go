// Package store holds the non-memory session.Store implementations: a
// ristretto-backed cache and a SQLite database.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	lib_store "github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/session"
)

const keyPrefix = "session:"

// #region cache-store
// CacheStore keeps exported session states in an in-process ristretto
// cache. With a zero TTL entries never expire, though ristretto may still
// drop them under cost pressure.
type CacheStore struct {
	client *ristretto.Cache
	cache  *cache.Cache[[]byte]
	ttl    time.Duration
	locks  session.KeyLocks
	logger *zap.Logger
}

// NewCacheStore builds the ristretto client and wraps it with gocache.
func NewCacheStore(ttl time.Duration, logger *zap.Logger) (*CacheStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,
		MaxCost:     1 << 16, // entries cost 1 each
		BufferItems: 64,

		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &CacheStore{
		client: client,
		cache:  cache.New[[]byte](ristretto_store.NewRistretto(client)),
		ttl:    ttl,
		logger: logger.Named("store"),
	}, nil
}

// Close stops the ristretto background goroutines.
func (c *CacheStore) Close() error {
	c.client.Close()
	return nil
}

// #endregion cache-store

// #region cache-ops
func (c *CacheStore) Load(ctx context.Context, conversationID string) (session.State, bool, error) {
	raw, err := c.cache.Get(ctx, keyPrefix+conversationID)
	if err != nil {
		if isNotFound(err) {
			return session.State{}, false, nil
		}
		return session.State{}, false, fmt.Errorf("cache get: %w", err)
	}
	if raw == nil {
		return session.State{}, false, nil
	}
	var st session.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return session.State{}, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return st, true, nil
}

func (c *CacheStore) Save(ctx context.Context, st session.State) error {
	if err := st.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	opts := []lib_store.Option{lib_store.WithCost(1)}
	if c.ttl > 0 {
		opts = append(opts, lib_store.WithExpiration(c.ttl))
	}
	if err := c.cache.Set(ctx, keyPrefix+st.ConversationID, raw, opts...); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	// ristretto applies sets asynchronously
	c.client.Wait()
	c.logger.Debug("session cached",
		zap.String("conversation_id", st.ConversationID),
		zap.Int("cursor", st.Cursor))
	return nil
}

func (c *CacheStore) Delete(ctx context.Context, conversationID string) error {
	if err := c.cache.Delete(ctx, keyPrefix+conversationID); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	c.client.Wait()
	return nil
}

func (c *CacheStore) Update(ctx context.Context, conversationID string, fn func(session.State) (session.State, error)) (session.State, error) {
	return session.UpdateLocked(ctx, &c.locks, c, conversationID, fn)
}

// #endregion cache-ops

func isNotFound(err error) bool {
	var nf *lib_store.NotFound
	return errors.As(err, &nf) || errors.Is(err, lib_store.NotFound{})
}
