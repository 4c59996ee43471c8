package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/video-rental/internal/config"
	"github.com/iliyamo/video-rental/internal/queue"
)

func NewWatchEventsCmd() *cobra.Command {
	var logPath string
	cmd := &cobra.Command{
		Use:   "watch-events",
		Short: "Consume rental events and append them to a log file",
		Long: `watch-events reads the rental.events queue from RABBITMQ_URL and appends one
line per event to the log file until interrupted.`,
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadBroker()
			if err != nil {
				return err
			}
			if logPath == "" {
				logPath = cfg.LogPath
			}
			if logPath == "" {
				logPath = queue.DefaultLogPath
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s, writing to %s\n", queue.QueueName, logPath)
			err = queue.StartConsumer(cmd.Context(), cfg.URL, logPath)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}),
	}
	cmd.Flags().StringVar(&logPath, "log", "", "event log file (default $EVENT_LOG_PATH or logs/rental-events.log)")
	return cmd
}
