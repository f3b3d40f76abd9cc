package logging

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "turns.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, EnsureSchema(db))
	return db
}

// #endregion helpers

// #region log-turn-tests
func TestLogTurn_Success(t *testing.T) {
	db := setupDB(t)

	entry := TurnEntry{
		TurnID:          "t1",
		ConversationID:  "c1",
		RequestType:     "add_item",
		Action:          "add_items",
		Reason:          "Adding Scarf",
		DecisionContext: "[Decision Result]\naction: add_items",
		RecordJSON:      `{"message":"add a scarf"}`,
		CreatedAt:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, LogTurn(db, entry))

	turns, err := Turns(db, "c1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	got := turns[0]
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))
	got.CreatedAt = entry.CreatedAt
	assert.Equal(t, entry, got)
}

func TestLogTurn_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	before := time.Now().UTC().Add(-time.Second)

	require.NoError(t, LogTurn(db, TurnEntry{TurnID: "t2", ConversationID: "c1", RequestType: "undo", Action: "undo"}))

	turns, err := Turns(db, "c1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.True(t, turns[0].CreatedAt.After(before))
}

func TestLogTurn_EmptyOptionalFieldsStoreNull(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, LogTurn(db, TurnEntry{TurnID: "t3", ConversationID: "c1", RequestType: "clear", Action: "clear"}))

	var reason, ctx sql.NullString
	require.NoError(t, db.QueryRow("SELECT reason, decision_context FROM turn_log").Scan(&reason, &ctx))
	assert.False(t, reason.Valid)
	assert.False(t, ctx.Valid)
}

func TestLogTurn_MissingTable(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "bare.db"))
	require.NoError(t, err)
	defer db.Close()

	err = LogTurn(db, TurnEntry{TurnID: "t4", ConversationID: "c1", RequestType: "x", Action: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log turn")
}

// #endregion log-turn-tests

// #region read-tests
func TestTurns_OrderAndLimit(t *testing.T) {
	db := setupDB(t)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, LogTurn(db, TurnEntry{TurnID: id, ConversationID: "c1", RequestType: "add_item", Action: "add_items"}))
	}
	require.NoError(t, LogTurn(db, TurnEntry{TurnID: "other", ConversationID: "c2", RequestType: "undo", Action: "undo"}))

	turns, err := Turns(db, "c1", 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "a", turns[0].TurnID)
	assert.Equal(t, "b", turns[1].TurnID)

	none, err := Turns(db, "missing", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// #endregion read-tests

// #region logger-tests
func TestNew(t *testing.T) {
	l, err := New("debug", true)
	require.NoError(t, err)
	assert.NotNil(t, l)

	l, err = New("", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1)) // debug off at info

	_, err = New("loud", false)
	assert.Error(t, err)

	assert.NotNil(t, OrNop(nil))
}

// #endregion logger-tests
