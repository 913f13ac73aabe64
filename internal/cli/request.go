package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/core/money"
	"github.com/example/garage/internal/core/repairrequest"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/wire"
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Manage customer repair requests",
}

var requestSubmitCmd = &cobra.Command{
	Use:   "submit [vehicle-id]",
	Short: "Submit a repair request",
	Long: `Submit a pending repair request. Line prices come from the catalog.

Only one active request may exist per vehicle and request date.

Examples:
  garage request submit VEH-1 --customer USR-1 --branch BR-1 --service SVC-OIL --part PART-FILTER:2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		customerID, _ := cmd.Flags().GetString("customer")
		branchID, _ := cmd.Flags().GetString("branch")
		description, _ := cmd.Flags().GetString("description")
		date, _ := cmd.Flags().GetString("date")
		arrival, _ := cmd.Flags().GetString("arrival")
		services, _ := cmd.Flags().GetStringSlice("service")
		partArgs, _ := cmd.Flags().GetStringSlice("part")

		requestDate := time.Now().UTC()
		if date != "" {
			t, err := parseTime(date)
			if err != nil {
				return err
			}
			requestDate = t
		}
		arrivalStart, err := optionalTime(arrival)
		if err != nil {
			return err
		}
		parts, err := parsePartQuantities(partArgs)
		if err != nil {
			return err
		}

		req, err := wire.RepairRequestService().SubmitRequest(NewContext(), primary.SubmitRequestRequest{
			VehicleID:          args[0],
			CustomerID:         customerID,
			BranchID:           branchID,
			Description:        description,
			RequestDate:        requestDate,
			ArrivalWindowStart: arrivalStart,
			ServiceIDs:         services,
			Parts:              parts,
		})
		if err != nil {
			return fmt.Errorf("failed to submit request: %w", err)
		}
		fmt.Printf("%s Submitted request %s (estimated %s)\n", okMark, req.ID, money.Format(req.EstimatedCostCents))
		return nil
	},
}

var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List repair requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		customerID, _ := cmd.Flags().GetString("customer")
		vehicleID, _ := cmd.Flags().GetString("vehicle")
		branchID, _ := cmd.Flags().GetString("branch")
		statusName, _ := cmd.Flags().GetString("status")

		filters := primary.RepairRequestFilters{
			CustomerID: customerID,
			VehicleID:  vehicleID,
			BranchID:   branchID,
		}
		if statusName != "" {
			st, err := repairrequest.ParseStatus(statusName)
			if err != nil {
				return err
			}
			n := int(st)
			filters.Status = &n
		}

		requests, err := wire.RepairRequestService().ListRequests(NewContext(), filters)
		if err != nil {
			return fmt.Errorf("failed to list requests: %w", err)
		}
		if len(requests) == 0 {
			fmt.Println("No repair requests found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tVEHICLE\tDATE\tSTATUS\tESTIMATE\tVERSION")
		fmt.Fprintln(w, "--\t-------\t----\t------\t--------\t-------")
		for _, r := range requests {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
				r.ID, r.VehicleID, r.RequestDate.Format("2006-01-02"), r.StatusName, money.Format(r.EstimatedCostCents), r.RowVersion)
		}
		w.Flush()
		return nil
	},
}

var requestShowCmd = &cobra.Command{
	Use:   "show [request-id]",
	Short: "Show a repair request with its lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := wire.RepairRequestService().GetRequest(NewContext(), args[0])
		if err != nil {
			return fmt.Errorf("request not found: %w", err)
		}

		fmt.Printf("Request: %s\n", r.ID)
		fmt.Printf("Vehicle: %s\n", r.VehicleID)
		fmt.Printf("Customer: %s\n", r.CustomerID)
		fmt.Printf("Branch: %s\n", r.BranchID)
		fmt.Printf("Date: %s\n", r.RequestDate.Format("2006-01-02"))
		fmt.Printf("Status: %s\n", r.StatusName)
		fmt.Printf("Estimate: %s\n", money.Format(r.EstimatedCostCents))
		fmt.Printf("Version: %d\n", r.RowVersion)
		if r.Description != "" {
			fmt.Printf("Description: %s\n", r.Description)
		}
		if len(r.ServiceIDs) > 0 {
			fmt.Printf("Services: %s\n", strings.Join(r.ServiceIDs, ", "))
		}
		for _, p := range r.Parts {
			fmt.Printf("Part: %s x%d\n", p.PartID, p.Quantity)
		}
		return nil
	},
}

var requestStatusCmd = &cobra.Command{
	Use:   "status [request-id] [status]",
	Short: "Move a request to a new status",
	Long: `Move a request to a new status. --version must be the row version you last
read (see 'garage request show'); a stale version is rejected as a conflict.

Statuses: Pending, InProgress, Accepted, Completed, Cancelled, Rejected.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetInt64("version")
		st, err := repairrequest.ParseStatus(args[1])
		if err != nil {
			return err
		}

		r, err := wire.RepairRequestService().ChangeStatus(NewContext(), args[0], int(st), version)
		if err != nil {
			return fmt.Errorf("failed to change status: %w", err)
		}
		fmt.Printf("%s Request %s is now %s (version %d)\n", okMark, r.ID, r.StatusName, r.RowVersion)
		return nil
	},
}

// parsePartQuantities parses "PART-ID:qty" values; a missing quantity means 1.
func parsePartQuantities(values []string) ([]primary.PartQuantity, error) {
	parts := make([]primary.PartQuantity, 0, len(values))
	for _, v := range values {
		id, qty, found := strings.Cut(v, ":")
		q := 1
		if found {
			n, err := strconv.Atoi(qty)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid part quantity %q", v)
			}
			q = n
		}
		if id == "" {
			return nil, fmt.Errorf("invalid part %q", v)
		}
		parts = append(parts, primary.PartQuantity{PartID: id, Quantity: q})
	}
	return parts, nil
}

func init() {
	requestSubmitCmd.Flags().String("customer", "", "Customer user ID (required)")
	requestSubmitCmd.Flags().StringP("branch", "b", "", "Branch ID (required)")
	requestSubmitCmd.Flags().StringP("description", "d", "", "What is wrong")
	requestSubmitCmd.Flags().String("date", "", "Request date (default today)")
	requestSubmitCmd.Flags().String("arrival", "", "Start of the arrival window")
	requestSubmitCmd.Flags().StringSlice("service", nil, "Requested service ID (repeatable)")
	requestSubmitCmd.Flags().StringSlice("part", nil, "Requested part as ID:qty (repeatable)")
	requestSubmitCmd.MarkFlagRequired("customer")
	requestSubmitCmd.MarkFlagRequired("branch")

	requestListCmd.Flags().String("customer", "", "Filter by customer")
	requestListCmd.Flags().String("vehicle", "", "Filter by vehicle")
	requestListCmd.Flags().StringP("branch", "b", "", "Filter by branch")
	requestListCmd.Flags().StringP("status", "s", "", "Filter by status")

	requestStatusCmd.Flags().Int64("version", 0, "Row version last read (required)")
	requestStatusCmd.MarkFlagRequired("version")

	requestCmd.AddCommand(requestSubmitCmd)
	requestCmd.AddCommand(requestListCmd)
	requestCmd.AddCommand(requestShowCmd)
	requestCmd.AddCommand(requestStatusCmd)
}

// RequestCmd returns the request command
func RequestCmd() *cobra.Command {
	return requestCmd
}
