package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, Config{
		Store:      StoreMemory,
		DB:         "stylist.db",
		LogLevel:   "info",
		Provenance: true,
	}, cfg)
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"STYLIST_STORE":      "cache",
		"STYLIST_SEED":       "42",
		"STYLIST_CACHE_TTL":  "90s",
		"STYLIST_LOG_DEV":    "true",
		"STYLIST_PROVENANCE": "false",
		"STYLIST_RULES":      "rules.yaml",
	})
	require.NoError(t, err)
	assert.Equal(t, StoreCache, cfg.Store)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.LogDev)
	assert.False(t, cfg.Provenance)
	assert.Equal(t, "rules.yaml", cfg.Rules)
	assert.False(t, cfg.UsesSQLite())
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"store", map[string]string{"STYLIST_STORE": "redis"}},
		{"seed", map[string]string{"STYLIST_SEED": "abc"}},
		{"ttl", map[string]string{"STYLIST_CACHE_TTL": "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.vars)
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STYLIST_STORE=sqlite\nSTYLIST_DB=/tmp/x.db\n"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		os.Unsetenv("STYLIST_STORE")
		os.Unsetenv("STYLIST_DB")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "/tmp/x.db", cfg.DB)
	assert.True(t, cfg.UsesSQLite())
}
