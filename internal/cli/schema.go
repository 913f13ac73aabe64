package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/db"
	"github.com/example/garage/internal/wire"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the database schema",
}

var schemaVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare the live schema with the relation and index registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := wire.IntegrityAdapter().Verify(NewContext())
		if err != nil {
			return err
		}
		if !report.OK() {
			return fmt.Errorf("schema drift detected")
		}
		return nil
	},
}

var schemaSQLCmd = &cobra.Command{
	Use:   "sql",
	Short: "Print the DDL of the latest schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(db.GetSchemaSQL())
		return nil
	},
}

func init() {
	schemaCmd.AddCommand(schemaVerifyCmd)
	schemaCmd.AddCommand(schemaSQLCmd)
}

// SchemaCmd returns the schema command
func SchemaCmd() *cobra.Command {
	return schemaCmd
}
