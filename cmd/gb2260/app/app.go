// Package app centralizes configuration, logging and lifecycle for the
// gb2260 CLI, so commands receive their dependencies instead of reaching
// for globals.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/gbdata/gb2260/pkg/errors"
)

// App carries the CLI's shared dependencies.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger
}

// New creates an App with the given build information.
func New(version, commit, date string) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapIO("read", "config", err)
	}

	logger := NewLogger(config)
	return &App{
		version: version,
		commit:  commit,
		date:    date,
		config:  config,
		logger:  &logger,
	}, nil
}

// Version returns the version string.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// ReloadLogger rebuilds the logger after flag binding changed the config.
func (a *App) ReloadLogger() {
	logger := NewLogger(a.config)
	a.logger = &logger
}

// ContextWithSignals returns a context cancelled on SIGINT or SIGTERM.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// ExitOnError prints err and exits non-zero. Used only at the top of main.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "gb2260:", err)
	os.Exit(1)
}
