// Package update implements the update command: the full pipeline run.
package update

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gbdata/gb2260/cmd/gb2260/app"
	"github.com/gbdata/gb2260/internal/pipeline"
	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
	"github.com/gbdata/gb2260/pkg/sources"
)

// Flags holds the update-specific flags.
type Flags struct {
	Version  string
	UseCache bool
	OutDir   string
}

// NewCommand creates the update command.
func NewCommand(a *app.App) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Rebuild the unified dataset from all sources",
		Long: `Update runs the full pipeline: parse the scraped NBS listing for the
chosen publication date, load the GB/T 2260-2007 transcription and its
supplement, load the CITAS historical data, align everything against the
scraped set, merge under the field priority policy, and write latest.csv,
unified.csv, unified.db and audit.yaml.

Conflicts and unmatched records never abort the run; they are written to
the audit report and summarized on completion.`,
		Example: `  gb2260 update                         # newest known listing, live fetch
  gb2260 update --version 2013-08-31    # a specific publication date
  gb2260 update --cached                # use the cached snapshot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !sources.IsVersion(flags.Version) {
				return errors.NewValidationError("version", flags.Version,
					"unknown publication date; one of "+strings.Join(sources.Versions(), ", "))
			}

			config := a.Config()
			outDir := flags.OutDir
			if outDir == "" {
				outDir = config.OutDir
			}

			ctx := logging.WithLogger(cmd.Context(), a.Logger())
			p := pipeline.New(pipeline.Options{
				Version:  flags.Version,
				UseCache: flags.UseCache,
				DataDir:  config.DataDir,
				CacheDir: config.CacheDir,
				OutDir:   outDir,
			})

			summary, err := p.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "unified %d records for %s\n", summary.Records, summary.Version)
			if summary.Conflicts > 0 || summary.Unmatched > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "audit: %d conflicts, %d unmatched (see audit.yaml)\n",
					summary.Conflicts, summary.Unmatched)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.Version, "version", sources.DefaultVersion,
		"publication date of the scraped listing ("+strings.Join(sources.Versions(), ", ")+")")
	cmd.Flags().BoolVar(&flags.UseCache, "cached", false,
		"read the cached HTML snapshot instead of fetching")
	cmd.Flags().StringVar(&flags.OutDir, "out-dir", "",
		"output directory (defaults to the data directory)")
	return cmd
}
