package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/workspacehq/assistant/internal/logger"
	"github.com/workspacehq/assistant/internal/server"
)

func newServeCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the assistant HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			var lister server.Lister
			if a.archive != nil {
				lister = a.archive
			}

			srv := &http.Server{
				Addr:              a.cfg.Server.Addr(),
				Handler:           server.New(a.session, a.client, lister).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.L.Info("starting server", "address", srv.Addr, "model", a.cfg.LLM.Model)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.L.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
