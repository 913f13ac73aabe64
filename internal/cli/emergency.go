package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/wire"
)

var emergencyCmd = &cobra.Command{
	Use:   "emergency",
	Short: "Manage roadside emergencies",
	Long: `Raise and respond to roadside emergencies.

A pending emergency nobody responds to before its deadline is auto-cancelled
by 'garage emergency sweep' or by the daemon.`,
}

var emergencyCreateCmd = &cobra.Command{
	Use:   "create [vehicle-id]",
	Short: "Raise an emergency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		customerID, _ := cmd.Flags().GetString("customer")
		branchID, _ := cmd.Flags().GetString("branch")
		issue, _ := cmd.Flags().GetString("issue")
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		address, _ := cmd.Flags().GetString("address")

		e, err := wire.EmergencyService().RaiseEmergency(NewContext(), primary.RaiseEmergencyRequest{
			CustomerID:       customerID,
			BranchID:         branchID,
			VehicleID:        args[0],
			IssueDescription: issue,
			Latitude:         lat,
			Longitude:        lng,
			Address:          address,
		})
		if err != nil {
			return fmt.Errorf("failed to raise emergency: %w", err)
		}
		fmt.Printf("%s Raised emergency %s, respond by %s\n", okMark, e.ID, formatTime(e.ResponseDeadline))
		return nil
	},
}

var emergencyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List emergencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		branchID, _ := cmd.Flags().GetString("branch")
		_, err := wire.EmergencyAdapter().List(NewContext(), status, branchID)
		return err
	},
}

var emergencyRespondCmd = &cobra.Command{
	Use:   "respond [emergency-id] [technician-id]",
	Short: "Accept a pending emergency with an available technician",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := wire.EmergencyService().Respond(NewContext(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to respond: %w", err)
		}
		fmt.Printf("%s Emergency %s accepted by %s\n", okMark, e.ID, e.TechnicianID)
		return nil
	},
}

var emergencyStartCmd = &cobra.Command{
	Use:   "start [emergency-id]",
	Short: "Mark an accepted emergency in progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.EmergencyService().Start(NewContext(), args[0]); err != nil {
			return fmt.Errorf("failed to start emergency: %w", err)
		}
		fmt.Printf("%s Emergency %s in progress\n", okMark, args[0])
		return nil
	},
}

var emergencyCompleteCmd = &cobra.Command{
	Use:   "complete [emergency-id]",
	Short: "Complete an emergency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.EmergencyService().Complete(NewContext(), args[0]); err != nil {
			return fmt.Errorf("failed to complete emergency: %w", err)
		}
		fmt.Printf("%s Emergency %s completed\n", okMark, args[0])
		return nil
	},
}

var emergencyCancelCmd = &cobra.Command{
	Use:   "cancel [emergency-id]",
	Short: "Cancel a live emergency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		if err := wire.EmergencyService().Cancel(NewContext(), args[0], reason); err != nil {
			return fmt.Errorf("failed to cancel emergency: %w", err)
		}
		fmt.Printf("%s Emergency %s cancelled\n", okMark, args[0])
		return nil
	},
}

var emergencyLinkCmd = &cobra.Command{
	Use:   "link [emergency-id] [request-id]",
	Short: "Link the repair request raised for an emergency",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.EmergencyService().LinkRequest(NewContext(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to link request: %w", err)
		}
		fmt.Printf("%s Emergency %s linked to %s\n", okMark, args[0], args[1])
		return nil
	},
}

var emergencySweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Auto-cancel pending emergencies past their deadline",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.EmergencyAdapter().Sweep(NewContext())
		return err
	},
}

func init() {
	emergencyCreateCmd.Flags().String("customer", "", "Customer user ID (required)")
	emergencyCreateCmd.Flags().StringP("branch", "b", "", "Branch ID (required)")
	emergencyCreateCmd.Flags().String("issue", "", "What happened")
	emergencyCreateCmd.Flags().Float64("lat", 0, "Latitude")
	emergencyCreateCmd.Flags().Float64("lng", 0, "Longitude")
	emergencyCreateCmd.Flags().String("address", "", "Address")
	emergencyCreateCmd.MarkFlagRequired("customer")
	emergencyCreateCmd.MarkFlagRequired("branch")

	emergencyListCmd.Flags().StringP("status", "s", "", "Filter by status")
	emergencyListCmd.Flags().StringP("branch", "b", "", "Filter by branch")

	emergencyCancelCmd.Flags().StringP("reason", "r", "", "Cancellation reason")

	emergencyCmd.AddCommand(emergencyCreateCmd)
	emergencyCmd.AddCommand(emergencyListCmd)
	emergencyCmd.AddCommand(emergencyRespondCmd)
	emergencyCmd.AddCommand(emergencyStartCmd)
	emergencyCmd.AddCommand(emergencyCompleteCmd)
	emergencyCmd.AddCommand(emergencyCancelCmd)
	emergencyCmd.AddCommand(emergencyLinkCmd)
	emergencyCmd.AddCommand(emergencySweepCmd)
}

// EmergencyCmd returns the emergency command
func EmergencyCmd() *cobra.Command {
	return emergencyCmd
}
