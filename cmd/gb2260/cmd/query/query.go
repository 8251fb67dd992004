// Package query implements the lookup and children commands over a built
// unified.db.
package query

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gbdata/gb2260/cmd/gb2260/app"
	"github.com/gbdata/gb2260/internal/store"
	"github.com/gbdata/gb2260/pkg/division"
)

// openStore opens unified.db under the configured output directory.
func openStore(a *app.App) (*store.Store, error) {
	return store.Open(filepath.Join(a.Config().OutDir, "unified.db"))
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(a *app.App) *cobra.Command {
	var within int

	cmd := &cobra.Command{
		Use:   "lookup CODE|NAME",
		Short: "Look up a division by code or Chinese name",
		Long: `Lookup finds one division in the unified dataset. A numeric argument is
treated as a six-digit code, anything else as a Chinese name. Names shared
by several divisions (every prefecture has a 市辖区 row) need --within to
narrow the search.`,
		Example: `  gb2260 lookup 110108
  gb2260 lookup 海淀区
  gb2260 lookup 市辖区 --within 110000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(a)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			ctx := cmd.Context()
			var rec division.Record
			if code, convErr := strconv.Atoi(args[0]); convErr == nil {
				rec, err = s.Lookup(ctx, code)
			} else {
				rec, err = s.LookupName(ctx, args[0], within)
			}
			if err != nil {
				return err
			}

			printRecord(cmd, ctx, s, rec)
			return nil
		},
	}

	cmd.Flags().IntVar(&within, "within", 0, "restrict a name lookup to divisions under this code")
	return cmd
}

// NewChildrenCommand creates the children command.
func NewChildrenCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "children CODE",
		Short: "List the direct children of a division",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("children wants a six-digit code: %w", err)
			}

			s, err := openStore(a)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			children, err := s.Children(cmd.Context(), code)
			if err != nil {
				return err
			}
			for _, child := range children {
				fmt.Fprintln(cmd.OutOrStdout(), child.String())
			}
			return nil
		},
	}
}

// printRecord renders one record with its optional fields and alpha code.
func printRecord(cmd *cobra.Command, ctx context.Context, s *store.Store, rec division.Record) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, rec.String())
	if rec.NamePinyin != nil {
		fmt.Fprintf(out, "  pinyin: %s\n", *rec.NamePinyin)
	}
	if rec.NameEN != nil {
		fmt.Fprintf(out, "  english: %s\n", *rec.NameEN)
	}
	if alpha, err := s.AlphaCode(ctx, rec.Code); err == nil {
		fmt.Fprintf(out, "  alpha: %s\n", alpha)
	}
	if rec.Latitude != nil && rec.Longitude != nil {
		fmt.Fprintf(out, "  location: %g, %g\n", *rec.Latitude, *rec.Longitude)
	}
}
