// Package cmd provides the CLI commands for globalsearch.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ravi-m-fleetenable/global-search/internal/app"
	"github.com/ravi-m-fleetenable/global-search/internal/config"
	logpkg "github.com/ravi-m-fleetenable/global-search/internal/logger"
	"github.com/ravi-m-fleetenable/global-search/internal/version"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	env        string
	configPath string
}

// NewRootCmd creates the root command for the globalsearch CLI.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "globalsearch",
		Short: "Federated search over orders, accounts, fleets, drivers, billings, invoices and pods",
		Long: `globalsearch runs one query across every record collection a caller may see
and returns ranked, highlighted, role-filtered results.

It serves the HTTP API, creates search indexes, loads fixture data and runs
one-shot queries from the command line.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetVersionTemplate("globalsearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(),
		"Environment name: selects config/<env>.yaml and the log format")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a config file (overrides --env lookup and CONFIG_PATH)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newBootstrapCmd(opts))
	cmd.AddCommand(newSeedCmd(opts))
	cmd.AddCommand(newQueryCmd(opts))
	cmd.AddCommand(newTokenCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *globalOptions) loadConfig() (config.Config, error) {
	if o.configPath != "" {
		cfg, err := config.LoadFile(o.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(o.env)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setup loads configuration and builds the logger.
func (o *globalOptions) setup() (config.Config, *zap.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logpkg.NewLogger(o.env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// withApp runs fn against a wired App and releases it afterwards.
func (o *globalOptions) withApp(
	ctx context.Context,
	fn func(ctx context.Context, cfg config.Config, a *app.App, logger *zap.Logger) error,
) error {
	cfg, logger, err := o.setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("Close failed", zap.Error(err))
		}
	}()

	return fn(ctx, cfg, a, logger)
}
