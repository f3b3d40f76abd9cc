package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/outfit"
)

func TestMemoryStoreLoadSaveDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, ok, err := m.Load(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	st := NewState("a").Push(outfit.Snapshot{ID: "s1", Items: one("Tee", outfit.ZoneTop)})
	require.NoError(t, m.Save(ctx, st))

	got, ok, err := m.Load(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, got.Cursor)

	// returned values are copies
	got.History[0].Items[0].Name = "changed"
	again, _, _ := m.Load(ctx, "a")
	assert.Equal(t, "Tee", again.History[0].Items[0].Name)

	require.NoError(t, m.Delete(ctx, "a"))
	_, ok, _ = m.Load(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	m := NewMemoryStore()
	err := m.Save(context.Background(), State{ConversationID: "a", Cursor: 5})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateFailureSavesNothing(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	boom := errors.New("boom")
	_, err := m.Update(ctx, "a", func(st State) (State, error) {
		return st.WithMetadata("k", "v"), boom
	})
	assert.ErrorIs(t, err, boom)
	_, ok, _ := m.Load(ctx, "a")
	assert.False(t, ok)
}

func TestRegistryDoSerializesPerConversation(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(NewMemoryStore())

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Do(ctx, "conv", func(c *Context) error {
				v, _ := c.GetMetadata("count")
				cur, _ := strconv.Atoi(v)
				c.SetMetadata("count", strconv.Itoa(cur+1))
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := r.Lookup(ctx, "conv")
	require.NoError(t, err)
	v, _ := c.GetMetadata("count")
	assert.Equal(t, strconv.Itoa(n), v)
}

func TestRegistryLazyCreateAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	r := NewRegistry(m)

	_, err := r.Lookup(ctx, "new")
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := r.Get(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "new", c.ConversationID())
	assert.Equal(t, -1, c.Cursor())
	assert.Equal(t, 1, m.Len())

	st, err := r.Do(ctx, "new", func(c *Context) error {
		c.PushSnapshot(one("Tee", outfit.ZoneTop), "", "")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, st.Cursor)

	require.NoError(t, r.Delete(ctx, "new"))
	_, err = r.Lookup(ctx, "new")
	assert.ErrorIs(t, err, ErrNotFound)
}
