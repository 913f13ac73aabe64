package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/core/money"
	"github.com/example/garage/internal/core/repairorder"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/wire"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Manage repair orders",
}

var orderCreateCmd = &cobra.Command{
	Use:   "create [vehicle-id]",
	Short: "Open a repair order for a walk-in or an accepted request",
	Long: `Open a repair order. With --request the order is created from that request
and inherits its lines.

Examples:
  garage order create VEH-1 --customer USR-1 --branch BR-1 --odometer 42000
  garage order create VEH-1 --customer USR-1 --branch BR-1 --request REQ-7`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		customerID, _ := cmd.Flags().GetString("customer")
		branchID, _ := cmd.Flags().GetString("branch")
		requestID, _ := cmd.Flags().GetString("request")
		odometer, _ := cmd.Flags().GetInt("odometer")
		note, _ := cmd.Flags().GetString("note")
		eta, _ := cmd.Flags().GetString("eta")

		estimated, err := optionalTime(eta)
		if err != nil {
			return err
		}
		req := primary.CreateOrderRequest{
			BranchID:                branchID,
			VehicleID:               args[0],
			CustomerID:              customerID,
			Odometer:                odometer,
			Note:                    note,
			EstimatedCompletionDate: estimated,
		}

		ctx := NewContext()
		var order *primary.RepairOrder
		if requestID != "" {
			order, err = wire.RepairOrderService().CreateFromRequest(ctx, requestID, req)
		} else {
			order, err = wire.RepairOrderService().CreateWalkIn(ctx, req)
		}
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		fmt.Printf("%s Created repair order %s (cost %s)\n", okMark, order.ID, money.Format(order.CostCents))
		return nil
	},
}

var orderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List repair orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		branchID, _ := cmd.Flags().GetString("branch")
		customerID, _ := cmd.Flags().GetString("customer")
		vehicleID, _ := cmd.Flags().GetString("vehicle")
		lifecycle, _ := cmd.Flags().GetString("lifecycle")

		_, err := wire.OrderAdapter().List(NewContext(), primary.RepairOrderFilters{
			BranchID:   branchID,
			CustomerID: customerID,
			VehicleID:  vehicleID,
			Lifecycle:  lifecycle,
		})
		return err
	},
}

var orderShowCmd = &cobra.Command{
	Use:   "show [order-id]",
	Short: "Show an order with its lines and jobs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.OrderAdapter().Show(NewContext(), args[0])
		return err
	},
}

var orderStatusCmd = &cobra.Command{
	Use:   "status [order-id] [pending|in-progress|completed]",
	Short: "Change the status of an active order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		statusID, err := parseOrderStatus(args[1])
		if err != nil {
			return err
		}
		if err := wire.RepairOrderService().ChangeStatus(NewContext(), args[0], statusID); err != nil {
			return fmt.Errorf("failed to change status: %w", err)
		}
		fmt.Printf("%s Order %s is now %s\n", okMark, args[0], args[1])
		return nil
	},
}

var orderArchiveCmd = &cobra.Command{
	Use:   "archive [order-id]",
	Short: "Archive a completed order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.RepairOrderService().Archive(NewContext(), args[0]); err != nil {
			return fmt.Errorf("failed to archive order: %w", err)
		}
		fmt.Printf("%s Archived order %s\n", okMark, args[0])
		return nil
	},
}

var orderCancelCmd = &cobra.Command{
	Use:   "cancel [order-id]",
	Short: "Cancel an active order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		if err := wire.RepairOrderService().Cancel(NewContext(), args[0], reason); err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		fmt.Printf("%s Cancelled order %s\n", okMark, args[0])
		return nil
	},
}

var orderAddServiceCmd = &cobra.Command{
	Use:   "add-service [order-id] [service-id]",
	Short: "Add a service line at catalog price",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := wire.RepairOrderService().AddService(NewContext(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to add service: %w", err)
		}
		fmt.Printf("%s Added %s; order cost is now %s\n", okMark, args[1], money.Format(order.CostCents))
		return nil
	},
}

var orderAddPartCmd = &cobra.Command{
	Use:   "add-part [order-id] [part-id] [quantity]",
	Short: "Add a part line at catalog price",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty := 1
		if len(args) == 3 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[2])
			}
			qty = n
		}
		order, err := wire.RepairOrderService().AddPart(NewContext(), args[0], args[1], qty)
		if err != nil {
			return fmt.Errorf("failed to add part: %w", err)
		}
		fmt.Printf("%s Added %d x %s; order cost is now %s\n", okMark, qty, args[1], money.Format(order.CostCents))
		return nil
	},
}

var inspectionCmd = &cobra.Command{
	Use:   "inspection",
	Short: "Manage vehicle inspections on an order",
}

var inspectionCreateCmd = &cobra.Command{
	Use:   "create [order-id]",
	Short: "Open an inspection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		concern, _ := cmd.Flags().GetString("concern")
		insp, err := wire.InspectionService().CreateInspection(NewContext(), args[0], concern)
		if err != nil {
			return fmt.Errorf("failed to create inspection: %w", err)
		}
		fmt.Printf("%s Created inspection %s\n", okMark, insp.ID)
		return nil
	},
}

var inspectionListCmd = &cobra.Command{
	Use:   "list [order-id]",
	Short: "List the inspections of an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := wire.InspectionService().ListInspections(NewContext(), args[0])
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No inspections found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tTECHNICIAN\tCONCERN")
		fmt.Fprintln(w, "--\t------\t----------\t-------")
		for _, i := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", i.ID, i.Status, orDash(i.TechnicianID), orDash(i.CustomerConcern))
		}
		w.Flush()
		return nil
	},
}

var inspectionAssignCmd = &cobra.Command{
	Use:   "assign [inspection-id] [technician-id]",
	Short: "Assign a technician",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.InspectionService().AssignTechnician(NewContext(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to assign technician: %w", err)
		}
		fmt.Printf("%s Technician %s assigned to %s\n", okMark, args[1], args[0])
		return nil
	},
}

var inspectionFindingCmd = &cobra.Command{
	Use:   "finding [inspection-id] [part-id] [condition]",
	Short: "Record the condition of a part",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		if err := wire.InspectionService().RecordPartFinding(NewContext(), args[0], args[1], args[2], description); err != nil {
			return fmt.Errorf("failed to record finding: %w", err)
		}
		fmt.Printf("%s Recorded %s as %s\n", okMark, args[1], args[2])
		return nil
	},
}

var inspectionRecommendCmd = &cobra.Command{
	Use:   "recommend [inspection-id] [service-id]",
	Short: "Recommend a service",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, _ := cmd.Flags().GetString("note")
		if err := wire.InspectionService().RecommendService(NewContext(), args[0], args[1], note); err != nil {
			return fmt.Errorf("failed to recommend service: %w", err)
		}
		fmt.Printf("%s Recommended %s\n", okMark, args[1])
		return nil
	},
}

var inspectionCompleteCmd = &cobra.Command{
	Use:   "complete [inspection-id] [finding]",
	Short: "Complete an inspection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.InspectionService().Complete(NewContext(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to complete inspection: %w", err)
		}
		fmt.Printf("%s Completed inspection %s\n", okMark, args[0])
		return nil
	},
}

// parseOrderStatus accepts a status name or its numeric id.
func parseOrderStatus(s string) (int, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "-")) {
	case "pending", "1":
		return repairorder.OrderStatusPending, nil
	case "in-progress", "2":
		return repairorder.OrderStatusInProgress, nil
	case "completed", "3":
		return repairorder.OrderStatusCompleted, nil
	}
	return 0, fmt.Errorf("unknown order status %q: use pending, in-progress or completed", s)
}

func init() {
	orderCreateCmd.Flags().String("customer", "", "Customer user ID (required)")
	orderCreateCmd.Flags().StringP("branch", "b", "", "Branch ID (required)")
	orderCreateCmd.Flags().String("request", "", "Create from this repair request")
	orderCreateCmd.Flags().Int("odometer", 0, "Odometer reading at intake")
	orderCreateCmd.Flags().String("note", "", "Intake note")
	orderCreateCmd.Flags().String("eta", "", "Estimated completion date")
	orderCreateCmd.MarkFlagRequired("customer")
	orderCreateCmd.MarkFlagRequired("branch")

	orderListCmd.Flags().StringP("branch", "b", "", "Filter by branch")
	orderListCmd.Flags().String("customer", "", "Filter by customer")
	orderListCmd.Flags().String("vehicle", "", "Filter by vehicle")
	orderListCmd.Flags().String("lifecycle", "", "Filter by lifecycle (active|archived|cancelled)")

	orderCancelCmd.Flags().StringP("reason", "r", "", "Cancellation reason")

	inspectionCreateCmd.Flags().String("concern", "", "Customer concern")
	inspectionFindingCmd.Flags().String("description", "", "Finding details")
	inspectionRecommendCmd.Flags().String("note", "", "Recommendation note")

	inspectionCmd.AddCommand(inspectionCreateCmd)
	inspectionCmd.AddCommand(inspectionListCmd)
	inspectionCmd.AddCommand(inspectionAssignCmd)
	inspectionCmd.AddCommand(inspectionFindingCmd)
	inspectionCmd.AddCommand(inspectionRecommendCmd)
	inspectionCmd.AddCommand(inspectionCompleteCmd)

	orderCmd.AddCommand(orderCreateCmd)
	orderCmd.AddCommand(orderListCmd)
	orderCmd.AddCommand(orderShowCmd)
	orderCmd.AddCommand(orderStatusCmd)
	orderCmd.AddCommand(orderArchiveCmd)
	orderCmd.AddCommand(orderCancelCmd)
	orderCmd.AddCommand(orderAddServiceCmd)
	orderCmd.AddCommand(orderAddPartCmd)
	orderCmd.AddCommand(inspectionCmd)
}

// OrderCmd returns the order command
func OrderCmd() *cobra.Command {
	return orderCmd
}
