package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httptransport "violet-client/internal/transport/http"
)

func (rt *runtime) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local bridge for the browser page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := rt.restore(ctx); err != nil && !errors.Is(err, ErrNotLoggedIn) {
				return err
			}
			if addr == "" {
				addr = rt.app.Config.BridgeAddr()
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httptransport.NewRouter(rt.app),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				fmt.Fprintf(rt.out, "bridge listening on http://%s\n", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("bridge shutdown failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to bridge.host:bridge.port)")
	return cmd
}
