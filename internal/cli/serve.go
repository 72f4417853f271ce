package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/nextaction/internal/adapters/server"
	"github.com/example/nextaction/internal/wire"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API over HTTP",
	Long: `Serve the JSON API over HTTP. The OpenAPI document is at /openapi.json.

Unless --no-sweep is given, the overdue sweeper runs alongside the server
on the configured interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		noSweep, _ := cmd.Flags().GetBool("no-sweep")
		cfg := wire.Config()
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}
		logger := wire.Logger()

		handler, err := server.New(wire.ServerConfig())
		if err != nil {
			return fmt.Errorf("failed to build API: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if !noSweep {
			go wire.SweepService().Run(ctx, cfg.Sweeper.Interval)
		}

		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", cfg.HTTP.Addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (defaults to http.addr from config)")
	serveCmd.Flags().Bool("no-sweep", false, "Do not run the overdue sweeper")
}

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return serveCmd
}
