package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/config"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/engine"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/preference"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/rules"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/session"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/store"
	"github.com/danielpatrickdp/outfit-state/go-stylist/internal/templates"
)

// #region app

// app is the wired process: one engine over the configured store.
type app struct {
	engine  *engine.Engine
	sqlite  *store.SQLiteStore // nil unless a database is open
	closers []func() error
}

// openApp builds the engine from cfg. The sqlite store backs sessions when
// selected; otherwise, with provenance on, it still receives the turn log,
// a mirror of every session and the preference memory.
func openApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	tables, err := rules.LoadOrDefault(cfg.Rules)
	if err != nil {
		return nil, err
	}
	a := &app{}
	opts := []engine.Option{
		engine.WithTables(tables),
		engine.WithTemplates(templates.NewSeeded(cfg.Seed)),
		engine.WithLogger(logger),
	}

	if cfg.UsesSQLite() {
		a.sqlite, err = store.NewSQLiteStore(cfg.DB, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.DB, err)
		}
		a.closers = append(a.closers, a.sqlite.Close)

		mem, err := preference.NewMemory(a.sqlite.DB(), preference.WithLogger(logger))
		if err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, engine.WithPreferences(mem))
		if cfg.Provenance {
			opts = append(opts, engine.WithProvenance(a.sqlite.DB()))
		}
	}

	var sessions session.Store
	switch cfg.Store {
	case config.StoreSQLite:
		sessions = a.sqlite
	case config.StoreCache:
		cache, err := store.NewCacheStore(cfg.CacheTTL, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, cache.Close)
		sessions = cache
	default:
		sessions = session.NewMemoryStore()
	}
	if a.sqlite != nil && cfg.Store != config.StoreSQLite {
		opts = append(opts, engine.WithMirror(a.sqlite))
	}

	a.engine, err = engine.New(session.NewRegistry(sessions), opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	logger.Info("stylist ready",
		zap.String("store", cfg.Store),
		zap.String("db", cfg.DB),
		zap.Bool("provenance", cfg.Provenance && a.sqlite != nil),
		zap.String("rules", cfg.Rules),
	)
	return a, nil
}

// Close releases everything openApp opened, newest first.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// #endregion app
