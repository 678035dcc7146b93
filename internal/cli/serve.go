package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/okian/sentinela/internal/adapters/http/api"
	"github.com/okian/sentinela/internal/adapters/http/swagger"
	"github.com/okian/sentinela/internal/adapters/source"
	service "github.com/okian/sentinela/internal/app"
	"github.com/okian/sentinela/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd(e *env) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the latest analysis and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := e.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch = watch
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return fmt.Errorf("%w: listen %s: %w", api.ErrServe, cfg.Addr, err)
			}
			return e.serve(cmd.Context(), ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-run the analysis when the data directory changes")
	return cmd
}

// serve runs the HTTP API on ln until ctx is cancelled.
func (e *env) serve(ctx context.Context, ln net.Listener) error {
	cfg := e.cfg
	monitor := service.NewMonitor(e.service())

	mux := http.NewServeMux()
	api.NewServer(monitor, api.WithNoDataCheck(service.IsNoData)).Register(ctx, mux)
	swagger.Register(ctx, mux)

	srv := &http.Server{
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		e.log.Info(gctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%w: %w", api.ErrServe, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		e.log.Info(context.Background(), "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			e.log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
		}
		return nil
	})

	// Warm the cache so the first request does not pay for a full run.
	g.Go(func() error {
		if _, err := monitor.Current(gctx); err != nil {
			e.log.Warn(gctx, "initial analysis failed", logger.Error(err))
		}
		return nil
	})

	if cfg.Watch {
		debounce := time.Duration(cfg.WatchDebounceMS) * time.Millisecond
		g.Go(func() error {
			return source.Watch(gctx, cfg.DataDir, debounce, func(ctx context.Context) {
				a, err := monitor.Refresh(ctx)
				if err != nil {
					e.log.Warn(ctx, "refresh after change failed", logger.Error(err))
					return
				}
				e.log.Info(ctx, "analysis refreshed",
					logger.String("run_id", a.RunID),
					logger.Int("alerts", a.Report.TotalAlerts),
				)
			})
		})
	}

	err := g.Wait()
	e.log.Info(context.Background(), "server stopped")
	return err
}
