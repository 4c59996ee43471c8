package cli

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/iliyamo/video-rental/internal/config"
	"github.com/iliyamo/video-rental/internal/database"
	"github.com/iliyamo/video-rental/internal/handler"
	"github.com/iliyamo/video-rental/internal/middleware"
	"github.com/iliyamo/video-rental/internal/router"
)

// NewServeCmd exposes the rental operations over HTTP.  One pool is shared
// by all requests; Redis, when reachable, backs the response cache and the
// rate limiter.
func NewServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the rental API over HTTP",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, cfg config.Config, db *sql.DB, d database.Dialect) error {
				rdb := config.NewRedisClient(ctx)
				if rdb != nil {
					defer rdb.Close()
				}
				e := router.New(db, handler.NewRentalHandler(newService(cfg, db, d)),
					middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
					middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
				)
				if addr == "" {
					addr = ":" + cfg.Port
				}
				log.Printf("listening on %s (env=%s, driver=%s)", addr, cfg.Env, d)
				return serve(ctx, e, addr)
			})
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", `listen address (default ":$APP_PORT")`)
	return cmd
}

// serve runs e until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, e *echo.Echo, addr string) error {
	errc := make(chan error, 1)
	go func() { errc <- e.Start(addr) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
