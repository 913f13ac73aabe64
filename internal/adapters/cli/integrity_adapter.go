package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/garage/internal/ports/primary"
)

// IntegrityAdapter is a thin adapter that translates CLI operations to IntegrityService calls.
type IntegrityAdapter struct {
	service primary.IntegrityService
	out     io.Writer
}

// NewIntegrityAdapter creates a new IntegrityAdapter with the given service.
func NewIntegrityAdapter(service primary.IntegrityService, out io.Writer) *IntegrityAdapter {
	return &IntegrityAdapter{
		service: service,
		out:     out,
	}
}

// Impact prints what deleting a row would cascade, clear or be blocked by.
func (a *IntegrityAdapter) Impact(ctx context.Context, table, id string) (*primary.DeleteImpact, error) {
	impact, err := a.service.DeleteImpact(ctx, table, id)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze delete: %w", err)
	}
	a.printImpact(impact)
	return impact, nil
}

// Delete deletes a row. A blocked delete prints the impact before returning the error.
func (a *IntegrityAdapter) Delete(ctx context.Context, table, id string) (*primary.DeleteImpact, error) {
	impact, err := a.service.Delete(ctx, table, id)
	if err != nil {
		if impact != nil {
			a.printImpact(impact)
		}
		return impact, err
	}

	fmt.Fprintf(a.out, "✓ Deleted %s\n", impact.Root)
	total := 0
	for _, n := range impact.Deleted {
		total += n
	}
	if total > 0 {
		fmt.Fprintf(a.out, "  %d dependent row(s) removed by cascade\n", total)
	}
	cleared := 0
	for _, n := range impact.Nulled {
		cleared += n
	}
	if cleared > 0 {
		fmt.Fprintf(a.out, "  %d reference(s) cleared\n", cleared)
	}
	return impact, nil
}

// Verify prints the comparison of the relation registry with the live schema.
func (a *IntegrityAdapter) Verify(ctx context.Context) (*primary.SchemaReport, error) {
	report, err := a.service.Verify(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}

	if report.OK() {
		fmt.Fprintf(a.out, "%s Schema matches registry (%d relations, %d unique indexes)\n",
			color.New(color.FgGreen).Sprint("✓"), report.Relations, report.UniqueIndexes)
		return report, nil
	}

	fmt.Fprintf(a.out, "%s %d problem(s) found:\n", color.New(color.FgRed).Sprint("✗"), len(report.Problems))
	for _, p := range report.Problems {
		fmt.Fprintf(a.out, "  - %s\n", p)
	}
	return report, nil
}

func (a *IntegrityAdapter) printImpact(impact *primary.DeleteImpact) {
	fmt.Fprintf(a.out, "\nDelete %s\n", impact.Root)

	if len(impact.Deleted) == 0 && len(impact.Nulled) == 0 && len(impact.Blocking) == 0 {
		fmt.Fprintln(a.out, "  no dependent rows")
	} else {
		w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "  EFFECT\tTARGET\tROWS")
		for _, table := range sortedKeys(impact.Deleted) {
			fmt.Fprintf(w, "  %s\t%s\t%d\n", color.New(color.FgBlue).Sprint("cascade"), table, impact.Deleted[table])
		}
		for _, rel := range sortedKeys(impact.Nulled) {
			fmt.Fprintf(w, "  %s\t%s\t%d\n", color.New(color.FgYellow).Sprint("set null"), rel, impact.Nulled[rel])
		}
		for _, b := range impact.Blocking {
			fmt.Fprintf(w, "  %s\t%s\t%d (%s)\n", color.New(color.FgRed).Sprint("blocked"), b.Relation, b.Count, strings.Join(b.Sample, ", "))
		}
		w.Flush()
	}

	if impact.Allowed {
		fmt.Fprintln(a.out, "\nDelete is allowed.")
	} else {
		fmt.Fprintf(a.out, "\n%s %s\n", color.New(color.FgRed).Sprint("✗"), impact.Reason)
	}
	fmt.Fprintln(a.out)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
