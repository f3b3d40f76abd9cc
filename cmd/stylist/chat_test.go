package main

import (
	"bufio"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/config"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/engine"
)

func testApp(t *testing.T, vars map[string]string) *app {
	t.Helper()
	logger = zap.NewNop()
	c, err := config.FromMap(vars)
	require.NoError(t, err)
	a, err := openApp(c, logger)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func lines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var got []map[string]any
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		got = append(got, m)
	}
	return got
}

func TestParseLine(t *testing.T) {
	line, err := parseLine("add a scarf")
	require.NoError(t, err)
	assert.Equal(t, "add a scarf", line.Message)

	line, err = parseLine(`{"answer": "garment_2"}`)
	require.NoError(t, err)
	assert.Equal(t, "garment_2", line.Answer)

	_, err = parseLine(`{"message": `)
	assert.Error(t, err)
	_, err = parseLine(`{}`)
	assert.Error(t, err)
}

func TestChatLoopMemoryStore(t *testing.T) {
	a := testApp(t, map[string]string{"STYLIST_STORE": "memory", "STYLIST_PROVENANCE": "false", "STYLIST_SEED": "5"})
	require.Nil(t, a.sqlite)

	in := strings.Join([]string{
		"add a white tee and blue jeans",
		"",
		"{not json",
		"add a red top",
		`{"answer": "garment_2"}`,
		"quit",
		"add a scarf",
	}, "\n")
	var out strings.Builder
	require.NoError(t, chatLoop(context.Background(), a.engine, "c1", strings.NewReader(in), &out))

	got := lines(t, out.String())
	require.Len(t, got, 4)
	assert.Equal(t, "add_items", got[0]["decision"].(map[string]any)["action"])
	assert.Contains(t, got[1], "error")
	assert.Equal(t, "clarify", got[2]["decision"].(map[string]any)["action"])
	assert.Equal(t, "replace_items", got[3]["decision"].(map[string]any)["action"])
	assert.Equal(t, "c1", got[3]["conversation_id"])
}

func TestChatFeedbackNeedsDatabase(t *testing.T) {
	a := testApp(t, map[string]string{"STYLIST_STORE": "memory", "STYLIST_PROVENANCE": "false"})
	var out strings.Builder
	in := `{"feedback": [{"kind": "color", "value": "navy", "signal": "liked"}]}`
	require.NoError(t, chatLoop(context.Background(), a.engine, "c1", strings.NewReader(in), &out))
	assert.Contains(t, out.String(), engine.ErrNoPreferences.Error())
}

func TestChatSQLiteAndInspectData(t *testing.T) {
	db := filepath.Join(t.TempDir(), "stylist.db")
	a := testApp(t, map[string]string{"STYLIST_STORE": "memory", "STYLIST_DB": db})
	require.NotNil(t, a.sqlite)

	in := strings.Join([]string{
		`{"feedback": [{"kind": "color", "value": "navy", "signal": "liked"}, {"kind": "color", "value": "navy", "signal": "liked"}]}`,
		`{"message": "add a navy scarf", "message_id": "m1"}`,
	}, "\n")
	var out strings.Builder
	require.NoError(t, chatLoop(context.Background(), a.engine, "c1", strings.NewReader(in), &out))

	got := lines(t, out.String())
	require.Len(t, got, 2)
	prefs := got[0]["preferences"].(map[string]any)
	assert.Equal(t, []any{"navy"}, prefs["favorite_colors"])
	assert.Equal(t, "add_items", got[1]["decision"].(map[string]any)["action"])

	// the memory store is mirrored into sqlite
	sums, err := a.sqlite.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, "c1", sums[0].ConversationID)
	assert.Equal(t, 1, sums[0].Snapshots)
}
