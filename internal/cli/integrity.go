package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/garage/internal/wire"
)

var impactCmd = &cobra.Command{
	Use:   "impact [table] [id]",
	Short: "Show what deleting a row would cascade, clear or be blocked by",
	Long: `Walk the relation registry from one row and report the effect of deleting it.

Examples:
  garage impact repair_orders 7f3c...
  garage impact vehicles 1b9e...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.IntegrityAdapter().Impact(NewContext(), args[0], args[1])
		return err
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [table] [id]",
	Short: "Delete a row, honoring cascade, restrict and set-null rules",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.IntegrityAdapter().Delete(NewContext(), args[0], args[1])
		return err
	},
}

// ImpactCmd returns the impact command
func ImpactCmd() *cobra.Command {
	return impactCmd
}

// DeleteCmd returns the delete command
func DeleteCmd() *cobra.Command {
	return deleteCmd
}
