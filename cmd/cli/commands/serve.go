package commands

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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bpamb/escala/pkg/api"
	"github.com/bpamb/escala/pkg/core/snapshot"
	"github.com/bpamb/escala/pkg/db"
)

const (
	shutdownTimeout = 10 * time.Second
	watchRetryDelay = 5 * time.Second
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the roster API and keep snapshots in sync with the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Cfg.HTTPAddr
			}

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.Engine.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to load initial snapshot: %w", err)
			}

			handler := api.NewHandler(app.Engine, app.Logger)
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(handler, app.Cfg.AllowedOrigins),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				watchChanges(gctx, app.Cache, app.Database, app.Logger)
				return nil
			})
			g.Go(func() error {
				app.Logger.Info("Serving API", zap.String("addr", addr))
				fmt.Printf("\n🚀 Servindo em %s (Ctrl+C para sair)\n\n", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("failed to serve: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				app.Logger.Info("Shutting down API")
				return srv.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}

	cmd.Flags().String("addr", "", "Listen address (defaults to httpAddr from the config)")
	return cmd
}

// watchChanges keeps the cache subscribed to database changes, resubscribing
// after the source closes or fails, until ctx is cancelled
func watchChanges(ctx context.Context, cache *snapshot.Cache, source db.ChangeSource, logger *zap.Logger) {
	for {
		err := cache.Watch(ctx, source)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn("Change watch failed, retrying", zap.Error(err), zap.Duration("delay", watchRetryDelay))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(watchRetryDelay):
		}

		// Changes may have been missed while unsubscribed
		if err := cache.Refresh(ctx); err != nil {
			logger.Warn("Refresh after resubscribe failed", zap.Error(err))
		}
	}
}
