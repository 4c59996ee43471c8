// Package cli wires the rental commands onto a cobra command tree.  Every
// command opens its own pool, runs one operation and closes the pool before
// returning.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/video-rental/internal/config"
	"github.com/iliyamo/video-rental/internal/database"
	"github.com/iliyamo/video-rental/internal/metrics"
	"github.com/iliyamo/video-rental/internal/repository"
	"github.com/iliyamo/video-rental/internal/service"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rental",
		Short: "Manage films, clients and rentals of a video rental store",
		Long: `rental tracks films, clients and rental transactions in a relational store.

Connection parameters come from the environment (DB_DRIVER, DB_HOST, DB_PORT,
DB_USER, DB_PASSWORD, DB_NAME, or DB_PATH for sqlite3). A .env file in the
working directory is loaded when present.`,
		SilenceErrors: true,
	}
	root.AddCommand(
		NewSetupCmd(),
		NewSeedCmd(),
		NewShowCmd(),
		NewAddCmd(),
		NewUpdateEmailCmd(),
		NewRemoveCmd(),
		NewShowClientCmd(),
		NewFindMoviesCmd(),
		NewFindCustomersCmd(),
		NewRentalHistoryCmd(),
		NewCurrentlyRentedCmd(),
		NewServeCmd(),
		NewWatchEventsCmd(),
	)
	return root
}

// Execute runs the command line args and returns the process exit status.
// Failures print "Error: <command>: <cause>" to stderr.  An unknown command
// also prints the usage listing the valid commands and exits non-zero.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if strings.HasPrefix(err.Error(), "unknown command") {
			fmt.Fprint(stderr, root.UsageString())
		}
		return 1
	}
	return 0
}

// runE adapts an operation into a cobra RunE: usage is no longer printed once
// arguments parsed, the outcome is counted, and errors are prefixed with the
// command name.
func runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		err := fn(cmd, args)
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.CommandsTotal.WithLabelValues(cmd.Name(), status).Inc()
		if err != nil {
			return fmt.Errorf("%s: %w", cmd.Name(), err)
		}
		return nil
	}
}

// withStore loads the configuration, opens the pool and hands it to fn.  The
// pool is closed on every return path.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, cfg config.Config, db *sql.DB, d database.Dialect) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	db, d, err := database.Open(ctx, cfg)
	if err != nil {
		return repository.Classify("connect", err)
	}
	defer db.Close()
	return fn(ctx, cfg, db, d)
}

// withService is withStore plus a RentalService built from the configuration.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *service.RentalService) error) error {
	return withStore(cmd, func(ctx context.Context, cfg config.Config, db *sql.DB, d database.Dialect) error {
		return fn(ctx, newService(cfg, db, d))
	})
}

func newService(cfg config.Config, db *sql.DB, d database.Dialect) *service.RentalService {
	opts := service.Options{Timeout: cfg.QueryTimeout, CaseInsensitive: cfg.CaseInsensitive}
	if cfg.RabbitURL != "" {
		opts.Events = service.AMQPPublisher{URL: cfg.RabbitURL}
	}
	return service.New(db, d, opts)
}
