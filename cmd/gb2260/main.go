// Package main provides the entry point for the gb2260 CLI tool.
package main

import (
	"context"
	"os"

	"github.com/gbdata/gb2260/cmd/gb2260/app"
	"github.com/gbdata/gb2260/cmd/gb2260/cmd"
)

// Version information populated by the build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	application, err := app.New(version, commit, date)
	if err != nil {
		app.ExitOnError(err)
	}

	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	root := cmd.New(application)
	if err := root.ExecuteContext(ctx); err != nil {
		application.Logger().Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}
