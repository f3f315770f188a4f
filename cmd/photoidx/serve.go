package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/RKrahl/photoidx/consts"
	"github.com/RKrahl/photoidx/library"
	"github.com/RKrahl/photoidx/logging"
	"github.com/RKrahl/photoidx/rest"
)

const (
	recentLogLines  = 500
	shutdownTimeout = 5 * time.Second
)

func (c *cli) serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the index read-only over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("listen") {
				listen = c.cfg.Serve.Listen
			}
			recent := logging.NewRecent(recentLogLines)
			if err := logging.Setup(c.cfg.Log, recent.Core(zapcore.InfoLevel)); err != nil {
				return err
			}
			log := logging.Root().Named("serve")
			base := logging.Context(context.Background(), log)

			// fail early on a missing or broken index
			idx, err := library.Open(base, c.dir)
			if err != nil {
				return err
			}
			idx.Close()

			router := mux.NewRouter()
			rest.NewApp(c.dir, c.cfg.GPSRadius).InitRoutes(router)
			rest.NewMetricsHandler().InitRoutes(router)
			rest.NewLogsHandler(recent).InitRoutes(router)
			if consts.IsDevMode() {
				DebugHandler{}.InitRoutes(router)
			}

			srv := &http.Server{
				Addr:              listen,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return base },
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			errs := make(chan error, 1)
			go func() {
				errs <- srv.ListenAndServe()
			}()
			log.Info("Serving index", zap.String("dir", c.dir), zap.String("listen", listen))
			select {
			case err := <-errs:
				return err
			case <-ctx.Done():
			}
			log.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (default from config)")
	return cmd
}
