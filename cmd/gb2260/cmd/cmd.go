// Package cmd assembles the gb2260 command tree.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gbdata/gb2260/cmd/gb2260/app"
	"github.com/gbdata/gb2260/cmd/gb2260/cmd/cache"
	"github.com/gbdata/gb2260/cmd/gb2260/cmd/query"
	"github.com/gbdata/gb2260/cmd/gb2260/cmd/update"
)

// New creates the root command with all subcommands attached.
func New(a *app.App) *cobra.Command {
	root := &cobra.Command{
		Use:   "gb2260",
		Short: "Build and query the unified GB/T 2260 division dataset",
		Long: `gb2260 reconciles administrative-division reference data from the scraped
NBS listing, the transcribed GB/T 2260-2007 standard and the CITAS
historical data set into one unified table keyed by six-digit code.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Flags have been parsed into the config by now.
			a.ReloadLogger()
		},
	}

	flags := root.PersistentFlags()
	config := a.Config()
	flags.BoolVarP(&config.Verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&config.Quiet, "quiet", "q", false, "only log errors")
	flags.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format (console or json)")
	flags.StringVar(&config.DataDir, "data-dir", config.DataDir, "directory holding the input CSV files")

	root.AddCommand(
		update.NewCommand(a),
		cache.NewCommand(a),
		query.NewLookupCommand(a),
		query.NewChildrenCommand(a),
		newVersionCommand(a),
	)
	return root
}

// newVersionCommand reports build information.
func newVersionCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gb2260 %s (commit %s, built %s)\n",
				a.Version(), a.Commit(), a.Date())
		},
	}
}
