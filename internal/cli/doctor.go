package cli

import (
	gocontext "context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/adapters/sqlite"
	"github.com/example/garage/internal/app"
	"github.com/example/garage/internal/config"
	"github.com/example/garage/internal/db"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration, database and schema",
		Long: `Health check for a garage installation.

Validates:
- Configuration file, .env file and GARAGE_* variables
- Database reachability
- Foreign key enforcement on the connection
- Schema version against the newest migration
- Live foreign keys and unique indexes against the registry

Examples:
  garage doctor              # Run full health check
  garage doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				if p, err := config.DefaultPath(); err == nil {
					path = p
				}
			}

			results := runChecks(NewContext(), path, envFile)

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				// Print compact table
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()

				// Print details for non-passing checks
				hasDetails := false
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						if !hasDetails {
							fmt.Println("Details:")
							hasDetails = true
						}
						fmt.Printf("\n%s:\n%s\n", r.Name, r.Details)
					}
				}

				if hasErrors {
					fmt.Println("\n⚠ Issues found.")
				} else {
					fmt.Println("All checks passed.")
				}
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

// runChecks runs every check in order; checks that need the database are
// skipped when it cannot be opened.
func runChecks(ctx gocontext.Context, path, env string) []CheckResult {
	cfgResult, cfg := checkConfig(path, env)
	results := []CheckResult{cfgResult}
	if cfg == nil {
		return results
	}

	dbResult, database := checkDatabase(cfg.Database.Path)
	results = append(results, dbResult)
	if database == nil {
		return results
	}
	defer database.Close()

	results = append(results, checkForeignKeys(ctx, database))
	versionResult := checkSchemaVersion(ctx, database)
	results = append(results, versionResult)
	if versionResult.Status == "✓" {
		results = append(results, checkSchemaRegistry(ctx, database))
	}
	return results
}

// checkConfig loads the configuration the way every other command does
func checkConfig(path, env string) (CheckResult, *config.Config) {
	cfg, err := config.Load(path, env)
	if err != nil {
		return CheckResult{Name: "Config", Status: "✗", Details: "  " + err.Error()}, nil
	}
	return CheckResult{Name: "Config", Status: "✓"}, cfg
}

// checkDatabase opens the configured database
func checkDatabase(path string) (CheckResult, *sql.DB) {
	database, err := db.Open(path)
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: fmt.Sprintf("  %s: %v", path, err)}, nil
	}
	return CheckResult{Name: "Database", Status: "✓"}, database
}

// checkForeignKeys verifies the connection enforces foreign keys
func checkForeignKeys(ctx gocontext.Context, database *sql.DB) CheckResult {
	on, err := db.ForeignKeysEnabled(ctx, database)
	if err != nil {
		return CheckResult{Name: "Foreign keys", Status: "✗", Details: "  " + err.Error()}
	}
	if !on {
		return CheckResult{Name: "Foreign keys", Status: "✗", Details: "  PRAGMA foreign_keys is off on this connection"}
	}
	return CheckResult{Name: "Foreign keys", Status: "✓"}
}

// checkSchemaVersion compares the ledger with the newest known migration
func checkSchemaVersion(ctx gocontext.Context, database *sql.DB) CheckResult {
	m := db.NewMigrator(database, nil)
	current, err := m.Current(ctx)
	if err != nil {
		return CheckResult{Name: "Schema version", Status: "✗", Details: "  " + err.Error()}
	}
	switch {
	case current < m.Latest():
		return CheckResult{
			Name:    "Schema version",
			Status:  "⚠",
			Details: fmt.Sprintf("  at version %d of %d\n  Run 'garage migrate up'", current, m.Latest()),
		}
	case current > m.Latest():
		return CheckResult{
			Name:    "Schema version",
			Status:  "✗",
			Details: fmt.Sprintf("  at version %d, newer than this binary (%d)", current, m.Latest()),
		}
	}
	return CheckResult{Name: "Schema version", Status: "✓"}
}

// checkSchemaRegistry compares live foreign keys and unique indexes with the registry
func checkSchemaRegistry(ctx gocontext.Context, database *sql.DB) CheckResult {
	service := app.NewIntegrityService(sqlite.NewIntegrityRepository(database), sqlite.NewAuditRepository(database), nil)
	report, err := service.Verify(ctx)
	if err != nil {
		return CheckResult{Name: "Schema registry", Status: "✗", Details: "  " + err.Error()}
	}
	if !report.OK() {
		return CheckResult{Name: "Schema registry", Status: "✗", Details: "  - " + strings.Join(report.Problems, "\n  - ")}
	}
	return CheckResult{Name: "Schema registry", Status: "✓"}
}
