package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/cli"
	"github.com/example/garage/internal/version"
	"github.com/example/garage/internal/wire"
)

func main() {
	var configPath, envFile, actor string

	rootCmd := &cobra.Command{
		Use:     "garage",
		Short:   "garage - repair shop data store",
		Version: version.String(),
		Long: `garage manages the data of a vehicle repair shop: branches, customers,
vehicles, repair requests and orders, jobs, quotations, payments and roadside
emergencies, on a SQLite database that enforces its relations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.SetConfigFiles(configPath, envFile)
			cli.SetActor(actor)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.garage/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Env file loaded before GARAGE_* variables")
	rootCmd.PersistentFlags().StringVar(&actor, "as", "", "Act as this user ID (default $GARAGE_ACTOR)")

	// Schema and integrity
	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.SchemaCmd())
	rootCmd.AddCommand(cli.ImpactCmd())
	rootCmd.AddCommand(cli.DeleteCmd())

	// Entity commands
	rootCmd.AddCommand(cli.BranchCmd())
	rootCmd.AddCommand(cli.UserCmd())
	rootCmd.AddCommand(cli.CatalogCmd())
	rootCmd.AddCommand(cli.VehicleCmd())
	rootCmd.AddCommand(cli.RequestCmd())
	rootCmd.AddCommand(cli.OrderCmd())
	rootCmd.AddCommand(cli.JobCmd())
	rootCmd.AddCommand(cli.QuotationCmd())
	rootCmd.AddCommand(cli.PromotionCmd())
	rootCmd.AddCommand(cli.PaymentCmd())
	rootCmd.AddCommand(cli.FeedbackCmd())
	rootCmd.AddCommand(cli.EmergencyCmd())
	rootCmd.AddCommand(cli.WebhookCmd())
	rootCmd.AddCommand(cli.NotifyCmd())
	rootCmd.AddCommand(cli.AuditCmd())
	rootCmd.AddCommand(cli.ChatCmd())

	// Operations
	rootCmd.AddCommand(cli.DaemonCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.ConfigCmd())

	err := rootCmd.Execute()
	wire.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
