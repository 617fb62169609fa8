package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"solana-token-info/internal/api"
	"solana-token-info/internal/observability"
)

const shutdownTimeout = 30 * time.Second

var serveOpts struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve token reports, health and metrics over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.addr, "addr", "", "listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(rootOpts)
	if err != nil {
		return err
	}
	defer a.close()

	addr := a.cfg.Server.Addr
	if serveOpts.addr != "" {
		addr = serveOpts.addr
	}

	router := api.NewRouter(a.agg, a.cfg.Batch.Concurrency, observability.Handler(prometheus.DefaultGatherer), a.logger)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info("Shutdown complete")
	return nil
}
