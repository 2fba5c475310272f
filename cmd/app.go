package cmd

import (
	"fmt"
	"log/slog"

	"github.com/papapumpkin/textage/internal/cache"
	"github.com/papapumpkin/textage/internal/config"
	"github.com/papapumpkin/textage/internal/fetch"
	"github.com/papapumpkin/textage/internal/logging"
	"github.com/papapumpkin/textage/internal/pipeline"
	"github.com/papapumpkin/textage/internal/rules"
	"github.com/papapumpkin/textage/internal/telemetry"
)

// app bundles the collaborators a command needs, built from configuration.
type app struct {
	cfg    config.Config
	table  rules.Table
	store  *cache.Store
	logger *slog.Logger
}

// loadApp reads configuration, initializes logging and resolves the
// effective rule table.
func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	level, _ := logging.ParseLevel(cfg.LogLevel) // validated by Load
	logging.Init(level, cfg.LogFormat, nil)

	table, err := effectiveTable(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		table:  table,
		store:  cache.New(cfg.CacheDir, cfg.MaxCacheAge),
		logger: logging.New("textage"),
	}, nil
}

// effectiveTable returns the built-in datasets with the overlay file, if
// any, merged on top.
func effectiveTable(rulesFile string) (rules.Table, error) {
	table := rules.Builtin()
	if rulesFile == "" {
		return table, nil
	}
	extra, err := rules.LoadFile(rulesFile)
	if err != nil {
		return nil, err
	}
	return table.Merge(extra), nil
}

// fetcher reads from source_dir when configured, otherwise over HTTP.
func (a *app) fetcher() fetch.Fetcher {
	if a.cfg.SourceDir != "" {
		a.logger.Debug("reading sources from local mirror", "dir", a.cfg.SourceDir)
		return fetch.Dir{Root: a.cfg.SourceDir}
	}
	return fetch.NewHTTP(a.cfg.BaseURL, a.cfg.HTTPTimeout, a.cfg.UserAgent, logging.New("fetch"))
}

// runner builds a pipeline runner. The returned close function flushes the
// event log.
func (a *app) runner(force bool) (*pipeline.Runner, func(), error) {
	events, err := telemetry.NewEmitter(a.cfg.EventsFile)
	if err != nil {
		// A run proceeds without the event log.
		a.logger.Warn("event log disabled", "path", a.cfg.EventsFile, "error", err)
		events = nil
	}
	r, err := pipeline.NewRunner(a.store, a.fetcher(), events, logging.New("pipeline"))
	if err != nil {
		events.Close()
		return nil, nil, err
	}
	r.Force = force
	return r, func() { _ = events.Close() }, nil
}
