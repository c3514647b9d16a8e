package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ravi-m-fleetenable/global-search/internal/app"
	"github.com/ravi-m-fleetenable/global-search/internal/config"
	seeduc "github.com/ravi-m-fleetenable/global-search/internal/usecase/seed"
)

func newSeedCmd(opts *globalOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fixture records into the search store",
		Long: `Load a YAML fixture file (collection -> list of records) into the search
store. Missing indexes are created first. Records without an id get a UUID.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), func(ctx context.Context, cfg config.Config, a *app.App, _ *zap.Logger) error {
				path := file
				if path == "" {
					path = cfg.Seed.FixturesPath
				}
				if path == "" {
					return fmt.Errorf("no fixture file: pass --file or set seed.fixtures_path")
				}

				fx, err := seeduc.LoadFile(path)
				if err != nil {
					return err //nolint:wrapcheck // already wrapped by the loader
				}

				if a.Collections != nil {
					if _, err := a.Collections.EnsureAll(ctx, a.Registry); err != nil {
						return fmt.Errorf("bootstrap: %w", err)
					}
				}

				counts, err := a.Seed.Seed(ctx, fx)
				if err != nil {
					return err //nolint:wrapcheck // already wrapped by the service
				}

				out := cmd.OutOrStdout()
				for _, name := range a.Registry.Names() {
					if n, ok := counts[name]; ok {
						if _, err := fmt.Fprintf(out, "%s: %d\n", name, n); err != nil {
							return err //nolint:wrapcheck // terminal output
						}
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Fixture file (default: seed.fixtures_path)")
	return cmd
}
