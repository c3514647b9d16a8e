package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ravi-m-fleetenable/global-search/internal/app"
	"github.com/ravi-m-fleetenable/global-search/internal/config"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	"github.com/ravi-m-fleetenable/global-search/internal/domain/role"
	chiTransport "github.com/ravi-m-fleetenable/global-search/internal/transport/chi"
	healthuc "github.com/ravi-m-fleetenable/global-search/internal/usecase/health"
	"github.com/ravi-m-fleetenable/global-search/internal/version"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var bootstrap bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return opts.withApp(ctx, func(ctx context.Context, cfg config.Config, a *app.App, logger *zap.Logger) error {
				return serve(ctx, cfg, a, logger, opts.env, bootstrap)
			})
		},
	}

	cmd.Flags().BoolVar(&bootstrap, "bootstrap", false, "Create missing search indexes before serving")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, a *app.App, logger *zap.Logger, env string, bootstrap bool) error {
	build := version.Get()
	logger.Info("Starting global-search API server",
		zap.String("version", build.Version),
		zap.String("commit", build.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	if bootstrap && a.Collections != nil {
		created, err := a.Collections.EnsureAll(ctx, a.Registry)
		if err != nil {
			return fmt.Errorf("bootstrap indexes: %w", err)
		}
		logger.Info("Indexes ensured", zap.Strings("created", created))
	}

	if report := a.Health.Check(ctx); report.Status != healthuc.Healthy {
		logger.Warn("Search store is not fully healthy", zap.Stringer("health", report))
	}

	auth, err := authConfig(cfg.Auth)
	if err != nil {
		return err
	}
	if auth.Secret == "" {
		logger.Warn("auth.jwt_secret is empty: every request runs as the development caller",
			zap.String("role", string(auth.Dev.Role())))
	}

	server := chiTransport.NewServer(a.Search, a.Autocomplete, a.Facets, a.Health, chiTransport.Options{
		Limits:          app.Limits(cfg.Search),
		SuggestLimit:    cfg.Autocomplete.MaxResults,
		SuggestMinChars: cfg.Autocomplete.MinChars,
		Timeout:         cfg.Search.Timeout(),
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, auth, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// authConfig validates the development caller and builds the middleware config.
func authConfig(a config.AuthConfig) (chiTransport.AuthConfig, error) {
	r, err := role.Parse(a.DevRole)
	if err != nil {
		return chiTransport.AuthConfig{}, fmt.Errorf("auth.dev_role: %w", err)
	}
	return chiTransport.AuthConfig{
		Secret: a.JWTSecret,
		Dev:    caller.New(a.DevUserID, r, a.DevDriverID),
	}, nil
}
