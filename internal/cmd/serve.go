package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/sleeplab/internal/adapters/http/api"
	"github.com/okian/sleeplab/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCommand(rt *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard",
		Long: `Load the dataset and serve the dashboard and its JSON API. The raw
file is watched and reloaded when it is replaced; a broken replacement
keeps the last good dataset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default: config addr)")
	return cmd
}

func (rt *session) serve(ctx context.Context) error {
	svc, err := rt.service(nil)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	apiServer := api.NewServer(svc,
		api.WithCorrelation(rt.cfg.References, rt.cfg.Candidates, rt.cfg.CorrelationThreshold),
		api.WithDefaultWeeks(rt.cfg.DashboardWeeks),
		api.WithAllowedOrigins(rt.cfg.AllowedOrigins),
		api.WithStats(svc),
		api.WithLogger(rt.log.Named("api")),
	)

	ln, err := net.Listen("tcp", rt.cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: listen %s: %w", api.ErrServe, rt.cfg.Addr, err)
	}

	srv := &http.Server{
		Handler:           apiServer.Handler(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: %w", api.ErrServe, err)
		}
		return nil
	case <-ctx.Done():
	}
	rt.log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		rt.log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}

	rt.log.Info(ctx, "server stopped")
	return nil
}
