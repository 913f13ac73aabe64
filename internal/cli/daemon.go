package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/scheduler"
	"github.com/example/garage/internal/wire"
)

// DaemonCmd returns the daemon command
func DaemonCmd() *cobra.Command {
	var schedule string
	var runNow bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run scheduled maintenance until interrupted",
		Long: `Run the emergency auto-cancel sweep on a cron schedule until SIGINT or SIGTERM.

The schedule defaults to emergency.sweep_schedule from the config file.

Examples:
  garage daemon
  garage daemon --schedule "@every 30s" --now`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if schedule == "" {
				schedule = wire.Config().Emergency.SweepSchedule
			}

			ctx, stop := signal.NotifyContext(NewContext(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sweeper := scheduler.NewEmergencySweeper(wire.EmergencyService(), schedule, wire.Logger().Named("daemon"))
			if runNow {
				sweeper.RunOnce(ctx)
			}
			if err := sweeper.Start(ctx); err != nil {
				return err
			}
			fmt.Printf("%s Sweeping expired emergencies (%s). Press Ctrl+C to stop.\n", okMark, schedule)

			<-ctx.Done()
			sweeper.Stop()
			fmt.Printf("Stopped after auto-cancelling %d emergencies.\n", sweeper.Cancelled())
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule for the sweep")
	cmd.Flags().BoolVar(&runNow, "now", false, "Sweep once immediately on start")

	return cmd
}
