package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ravi-m-fleetenable/global-search/internal/app"
	"github.com/ravi-m-fleetenable/global-search/internal/config"
)

func newBootstrapCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the search index of every collection",
		Long: `Create one RediSearch index per collection. Existing indexes are kept.
The embedded backend creates its indexes when it opens, so bootstrap only
reports them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), func(ctx context.Context, _ config.Config, a *app.App, _ *zap.Logger) error {
				out := cmd.OutOrStdout()
				if a.Collections == nil {
					_, err := fmt.Fprintf(out, "embedded indexes ready: %s\n", strings.Join(a.Registry.Names(), ", "))
					return err //nolint:wrapcheck // terminal output
				}

				created, err := a.Collections.EnsureAll(ctx, a.Registry)
				if err != nil {
					return fmt.Errorf("bootstrap: %w", err)
				}
				if len(created) == 0 {
					_, err = fmt.Fprintln(out, "all indexes already exist")
					return err //nolint:wrapcheck // terminal output
				}
				_, err = fmt.Fprintf(out, "created indexes: %s\n", strings.Join(created, ", "))
				return err //nolint:wrapcheck // terminal output
			})
		},
	}
}
