package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/garage/internal/ports/primary"
)

// EmergencyAdapter is a thin adapter that translates CLI operations to EmergencyService calls.
type EmergencyAdapter struct {
	service primary.EmergencyService
	out     io.Writer
}

// NewEmergencyAdapter creates a new EmergencyAdapter with the given service.
func NewEmergencyAdapter(service primary.EmergencyService, out io.Writer) *EmergencyAdapter {
	return &EmergencyAdapter{
		service: service,
		out:     out,
	}
}

// List lists emergencies with optional status and branch filters.
func (a *EmergencyAdapter) List(ctx context.Context, status, branchID string) ([]*primary.Emergency, error) {
	emergencies, err := a.service.ListEmergencies(ctx, status, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list emergencies: %w", err)
	}

	if len(emergencies) == 0 {
		fmt.Fprintln(a.out, "No emergencies found.")
		return emergencies, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tVEHICLE\tSTATUS\tTECHNICIAN\tDEADLINE")
	fmt.Fprintln(w, "--\t-------\t------\t----------\t--------")
	for _, e := range emergencies {
		tech := e.TechnicianID
		if tech == "" {
			tech = "-"
		}
		deadline := "-"
		if e.ResponseDeadline != nil {
			deadline = e.ResponseDeadline.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.VehicleID, e.Status, tech, deadline)
	}
	w.Flush()
	return emergencies, nil
}

// Sweep auto-cancels pending emergencies past their response deadline.
func (a *EmergencyAdapter) Sweep(ctx context.Context) ([]string, error) {
	cancelled, err := a.service.SweepExpired(ctx)
	for _, id := range cancelled {
		fmt.Fprintf(a.out, "%s %s auto-cancelled\n", color.New(color.FgYellow).Sprint("!"), id)
	}
	if err != nil {
		return cancelled, fmt.Errorf("sweep incomplete: %w", err)
	}
	if len(cancelled) == 0 {
		fmt.Fprintln(a.out, "No expired emergencies.")
	}
	return cancelled, nil
}
