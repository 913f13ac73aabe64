package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/garage/internal/core/money"
	"github.com/example/garage/internal/core/repairorder"
	"github.com/example/garage/internal/ports/primary"
)

// OrderAdapter is a thin adapter that translates CLI operations to the
// repair order and job services.
type OrderAdapter struct {
	orders primary.RepairOrderService
	jobs   primary.JobService
	out    io.Writer
}

// NewOrderAdapter creates a new OrderAdapter with the given services.
func NewOrderAdapter(orders primary.RepairOrderService, jobs primary.JobService, out io.Writer) *OrderAdapter {
	return &OrderAdapter{
		orders: orders,
		jobs:   jobs,
		out:    out,
	}
}

// List lists orders matching filters.
func (a *OrderAdapter) List(ctx context.Context, filters primary.RepairOrderFilters) ([]*primary.RepairOrder, error) {
	orders, err := a.orders.ListOrders(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No repair orders found.")
		return orders, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tVEHICLE\tSTATUS\tLIFECYCLE\tCOST\tPAID")
	fmt.Fprintln(w, "--\t-------\t------\t---------\t----\t----")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID,
			o.VehicleID,
			orderStatusName(o.OrderStatusID),
			o.Lifecycle,
			money.Format(o.CostCents),
			o.PaidStatus,
		)
	}
	w.Flush()
	return orders, nil
}

// Show displays an order with its lines and jobs.
func (a *OrderAdapter) Show(ctx context.Context, id string) (*primary.RepairOrder, error) {
	order, err := a.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	fmt.Fprintf(a.out, "\nRepair order: %s\n", order.ID)
	fmt.Fprintf(a.out, "Branch:    %s\n", order.BranchID)
	fmt.Fprintf(a.out, "Vehicle:   %s\n", order.VehicleID)
	fmt.Fprintf(a.out, "Customer:  %s\n", order.CustomerID)
	if order.RepairRequestID != "" {
		fmt.Fprintf(a.out, "Request:   %s\n", order.RepairRequestID)
	}
	fmt.Fprintf(a.out, "Status:    %s (%s)\n", orderStatusName(order.OrderStatusID), order.Lifecycle)
	fmt.Fprintf(a.out, "Cost:      %s\n", money.Format(order.CostCents))
	fmt.Fprintf(a.out, "Paid:      %s (%s)\n", money.Format(order.PaidAmountCents), order.PaidStatus)
	if order.CancelReason != "" {
		fmt.Fprintf(a.out, "Cancelled: %s\n", order.CancelReason)
	}

	if len(order.Services) > 0 {
		fmt.Fprintln(a.out, "\nServices:")
		for _, s := range order.Services {
			fmt.Fprintf(a.out, "  - %s  %s\n", s.ServiceID, money.Format(s.PriceCents))
		}
	}
	if len(order.Parts) > 0 {
		fmt.Fprintln(a.out, "\nParts:")
		for _, p := range order.Parts {
			fmt.Fprintf(a.out, "  - %s  %d x %s\n", p.PartID, p.Quantity, money.Format(p.UnitPriceCents))
		}
	}

	jobs, err := a.jobs.ListJobs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	if len(jobs) > 0 {
		fmt.Fprintln(a.out, "\nJobs:")
		for _, j := range jobs {
			rev := ""
			if j.OriginalJobID != "" {
				rev = fmt.Sprintf(" (rev %d of %s)", j.RevisionCount, j.OriginalJobID)
			}
			fmt.Fprintf(a.out, "  - %s [%s] %s%s\n", j.ID, j.Status, j.Name, rev)
		}
	}
	fmt.Fprintln(a.out)

	return order, nil
}

// JobHistory prints the revision chain of a job, newest first.
func (a *OrderAdapter) JobHistory(ctx context.Context, jobID string) ([]string, error) {
	job, err := a.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	chain, err := a.jobs.RevisionHistory(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load revision history: %w", err)
	}

	fmt.Fprintf(a.out, "%s (revision %d)\n", job.ID, job.RevisionCount)
	for _, id := range chain {
		fmt.Fprintf(a.out, "  ↳ %s\n", id)
	}
	if len(chain) == 0 {
		fmt.Fprintln(a.out, "  original version")
	}
	return chain, nil
}

func orderStatusName(id int) string {
	switch id {
	case repairorder.OrderStatusPending:
		return "pending"
	case repairorder.OrderStatusInProgress:
		return "in progress"
	case repairorder.OrderStatusCompleted:
		return "completed"
	}
	return fmt.Sprintf("status %d", id)
}
