package cmd

import (
	"errors"
	"fmt"
	"time"

	"channel-manager/core/booking"
	"channel-manager/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncChannelID uint
	syncFrom      string
	syncTo        string
	syncAll       bool
)

// syncCmd is the parent command for inbound syncs.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull data from external channels",
}

// syncBookingsCmd fetches and reconciles the bookings of one channel.
var syncBookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "Fetch and reconcile channel bookings",
	Long: `Fetches the bookings of a channel for a date window and reconciles them into the
canonical booking table. The resulting sync run is printed as JSON.

Examples:
  # Default window (today + channels.sync_window_days)
  sync bookings --channel-id 3

  # Explicit window
  sync bookings --channel-id 3 --from 2026-11-01 --to 2026-11-30

  # Every active channel
  sync bookings --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !syncAll && syncChannelID == 0 {
			return errors.New("either --channel-id or --all is required")
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if syncAll {
			runs, err := a.channels.SyncActive(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(runs)
		}

		window := booking.NewDateRange(time.Now(), a.cfg.Channels.SyncWindowDays)
		if syncFrom != "" || syncTo != "" {
			if window, err = booking.ParseDateRange(syncFrom, syncTo); err != nil {
				return err
			}
		}

		run, err := a.channels.SyncChannel(cmd.Context(), syncChannelID, window)
		if err != nil {
			var fatal *reconcile.BatchFatalError
			if errors.As(err, &fatal) {
				a.logger.Error("Sync failed", zap.Uint("run_log_id", fatal.RunLogID))
			}
			return fmt.Errorf("sync channel %d: %w", syncChannelID, err)
		}
		return printJSON(run)
	},
}

func init() {
	syncBookingsCmd.Flags().UintVar(&syncChannelID, "channel-id", 0, "Channel ID")
	syncBookingsCmd.Flags().StringVar(&syncFrom, "from", "", "Window start (YYYY-MM-DD)")
	syncBookingsCmd.Flags().StringVar(&syncTo, "to", "", "Window end (YYYY-MM-DD)")
	syncBookingsCmd.Flags().BoolVar(&syncAll, "all", false, "Sync every active channel")

	syncCmd.AddCommand(syncBookingsCmd)
	RootCmd.AddCommand(syncCmd)
}
