package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one pickup expiry pass and one notification purge, then exit",
	Long: `Marks every "ready for pick-up" request whose deadline has passed as unclaimed and deletes
read notifications older than NOTIFICATION_RETENTION. Useful from cron when the API runs with
more than one replica. With REALTIME_REDIS_RELAY enabled the resulting events still reach
connected dashboards.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		expired, err := a.sweeper.Sweep(ctx)
		if err != nil {
			return fmt.Errorf("pickup sweep: %w", err)
		}
		purged, err := a.notifications.PurgeExpired(ctx)
		if err != nil {
			return fmt.Errorf("notification purge: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "expired %d pickups, purged %d notifications\n", expired, purged)
		return nil
	},
}
