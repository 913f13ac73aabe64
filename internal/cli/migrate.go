package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/wire"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply, revert and inspect schema migrations",
	Long: `Move the database schema between versions.

Every applied or reverted step is appended to the schema_migrations ledger.

Examples:
  garage migrate up          # apply everything pending
  garage migrate down        # revert the newest applied migration
  garage migrate to 3        # move to version 3 in either direction
  garage migrate status`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		m := wire.Migrator()

		before, err := m.Current(ctx)
		if err != nil {
			return err
		}
		if err := m.Up(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		if before == m.Latest() {
			fmt.Printf("%s Schema already at version %d\n", okMark, before)
			return nil
		}
		fmt.Printf("%s Migrated %d → %d\n", okMark, before, m.Latest())
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the newest applied migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		m := wire.Migrator()

		current, err := m.Current(ctx)
		if err != nil {
			return err
		}
		if current == 0 {
			fmt.Println("Nothing to revert.")
			return nil
		}
		if err := m.MigrateTo(ctx, current-1); err != nil {
			return fmt.Errorf("revert failed: %w", err)
		}
		fmt.Printf("%s Reverted %d → %d\n", okMark, current, current-1)
		return nil
	},
}

var migrateToCmd = &cobra.Command{
	Use:   "to [version]",
	Short: "Move the schema to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}

		ctx := NewContext()
		m := wire.Migrator()
		current, err := m.Current(ctx)
		if err != nil {
			return err
		}
		if err := m.MigrateTo(ctx, target); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Printf("%s Schema moved %d → %d\n", okMark, current, target)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List known migrations and whether each is applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		m := wire.Migrator()

		statuses, err := m.Status(ctx)
		if err != nil {
			return err
		}
		current, err := m.Current(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
		fmt.Fprintln(w, "-------\t----\t-------")
		for _, s := range statuses {
			mark := "-"
			if s.Applied {
				mark = okMark
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, s.Name, mark)
		}
		w.Flush()
		fmt.Printf("\nCurrent version: %d (latest %d)\n", current, m.Latest())
		return nil
	},
}

var migrateHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the migration ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := wire.Migrator().History(NewContext())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Ledger is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tVERSION\tNAME\tDIRECTION\tAPPLIED AT")
		fmt.Fprintln(w, "--\t-------\t----\t---------\t----------")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", e.ID, e.Version, e.Name, e.Direction, e.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		w.Flush()
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateToCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateHistoryCmd)
}

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	return migrateCmd
}
