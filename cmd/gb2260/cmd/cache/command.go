// Package cache implements the cache command group: snapshot management for
// the scraped listing.
package cache

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gbdata/gb2260/cmd/gb2260/app"
	"github.com/gbdata/gb2260/internal/fetch"
	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
	"github.com/gbdata/gb2260/pkg/sources"
)

// NewCommand creates the cache command group.
func NewCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached listing snapshots",
	}
	cmd.AddCommand(newRefreshCommand(a))
	return cmd
}

// newRefreshCommand creates the cache refresh command.
func newRefreshCommand(a *app.App) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Download and persist listing snapshots",
		Long: `Refresh downloads the HTML listing for every known publication date (or
a single one with --version) and saves the raw snapshots into the cache
directory, where later runs with --cached can pick them up.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if version != "" && !sources.IsVersion(version) {
				return errors.NewValidationError("version", version,
					"unknown publication date; one of "+strings.Join(sources.Versions(), ", "))
			}

			ctx := logging.WithLogger(cmd.Context(), a.Logger())
			fetcher := fetch.New(a.Config().CacheDir)
			return fetcher.RefreshCache(ctx, version)
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "refresh only this publication date")
	return cmd
}
