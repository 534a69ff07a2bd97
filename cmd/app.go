// Package cmd implements the fin command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/assistant"
	"github.com/etnz/fintrack/audit"
	"github.com/etnz/fintrack/config"
	"github.com/etnz/fintrack/kv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

// Verbose switches the application log to debug level.
var Verbose = flag.Bool("v", false, "verbose logging")

var stdout io.Writer = os.Stdout

// app holds what a command needs to work on the ledger.
type app struct {
	cfg    config.Config
	log    *zap.Logger
	store  kv.Store
	ledger *fintrack.Ledger
	audit  *audit.Logger
}

// openApp loads the configuration and opens the ledger it points to.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg.Log.Level, *Verbose)
	if err != nil {
		return nil, err
	}
	store, err := kv.Open(cfg.Store.Backend, cfg.Store.Location())
	if err != nil {
		return nil, fmt.Errorf("could not open the %s store: %w", cfg.Store.Backend, err)
	}
	ledger := fintrack.NewLedger(store)
	if err := ledger.Init(); err != nil {
		store.Close()
		return nil, err
	}
	trail, err := audit.New(store, log)
	if err != nil {
		store.Close()
		return nil, err
	}
	if on, err := ledger.DarkMode(); err == nil {
		darkMode = on
	}
	log.Debug("ledger opened", zap.String("backend", cfg.Store.Backend), zap.String("path", cfg.Store.Location()))
	return &app{cfg: cfg, log: log, store: store, ledger: ledger, audit: trail}, nil
}

// Close releases the store and flushes the log.
func (a *app) Close() error {
	_ = a.log.Sync()
	return a.store.Close()
}

func (a *app) currency() string { return a.cfg.UI.Currency }

// assistant returns the chat assistant backed by the configured model.
func (a *app) assistant(ctx context.Context) (*assistant.Assistant, error) {
	key := a.cfg.LLM.Key()
	if key == "" {
		return nil, fmt.Errorf("no API key: set %s or llm.api_key in %s", a.cfg.LLM.APIKeyEnv, config.Path())
	}
	gemini, err := assistant.NewGemini(ctx, key, a.cfg.LLM.Model)
	if err != nil {
		return nil, err
	}
	return assistant.New(a.ledger, gemini, a.audit, assistant.Options{
		Currency: a.currency(),
		Policy:   assistant.Policy{Attempts: a.cfg.LLM.Attempts, Timeout: a.cfg.LLM.Timeout},
		Plain:    !a.cfg.LLM.Synthesize,
	}), nil
}

// newLogger returns the application logger. It writes JSON to stderr, or
// human readable lines in verbose mode.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(lvl)
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	return zapConfig.Build()
}

// withApp opens the app, runs f and closes it.
func withApp(f func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return f(a)
}

// forms returns an assistant for the account forms, which do not talk to the
// model.
func (a *app) forms() *assistant.Assistant {
	return assistant.New(a.ledger, nil, a.audit, assistant.Options{Currency: a.currency()})
}

// findAccount resolves ref as an account id, then as an account name.
func findAccount(s fintrack.Snapshot, ref string) (fintrack.Account, error) {
	if acc, ok := s.Account(ref); ok {
		return acc, nil
	}
	if acc, ok := s.ByName(ref); ok {
		return acc, nil
	}
	return fintrack.Account{}, fmt.Errorf("%w. Available accounts: %s", &fintrack.NotFoundError{Kind: "account", ID: ref}, s.Listing(ref))
}
