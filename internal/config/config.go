// Package config reads process configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreCache  = "cache"
	StoreSQLite = "sqlite"
)

type Config struct {
	// session store backend: memory | cache | sqlite
	Store string `env:"STYLIST_STORE" envDefault:"memory"`
	// sqlite path, used by the sqlite store, the turn log and preference memory
	DB string `env:"STYLIST_DB" envDefault:"stylist.db"`
	// optional YAML override of the embedded rule tables
	Rules string `env:"STYLIST_RULES"`

	LogLevel string `env:"STYLIST_LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"STYLIST_LOG_DEV"`

	// follow-up prompt seed, 0 = time-based
	Seed int64 `env:"STYLIST_SEED"`
	// 0 = never expire
	CacheTTL time.Duration `env:"STYLIST_CACHE_TTL"`
	// turn provenance log, only written when a sqlite database is open
	Provenance bool `env:"STYLIST_PROVENANCE" envDefault:"true"`
}

// Load loads .env (if present) and parses environment variables into Config.
func Load() (Config, error) {
	// Load .env if available; ignore error if file does not exist
	_ = godotenv.Load()
	return parse(env.Options{})
}

// FromMap parses Config from vars instead of the process environment.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreCache, StoreSQLite:
	default:
		return fmt.Errorf("invalid STYLIST_STORE %q: want memory, cache or sqlite", c.Store)
	}
	if c.Store == StoreSQLite && c.DB == "" {
		return fmt.Errorf("STYLIST_DB is required for the sqlite store")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("invalid STYLIST_CACHE_TTL %s: must not be negative", c.CacheTTL)
	}
	return nil
}

// UsesSQLite reports whether a sqlite database should be opened.
func (c Config) UsesSQLite() bool {
	return c.Store == StoreSQLite || (c.Provenance && c.DB != "")
}
