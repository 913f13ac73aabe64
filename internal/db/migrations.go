package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/garage/internal/core/migration"
)

// migrations is the list of all migrations in order.
// Applied migrations are never edited; changes go in a new entry.
var migrations = []migration.Migration{
	{
		Version: 1,
		Name:    "create_branch_and_identity_tables",
		Ops:     branchAndIdentityOps(),
	},
	{
		Version: 2,
		Name:    "create_catalog_tables",
		Ops:     catalogOps(),
	},
	{
		Version: 3,
		Name:    "create_inventory_and_technician_tables",
		Ops:     inventoryAndTechnicianOps(),
	},
	{
		Version: 4,
		Name:    "create_intake_tables",
		Ops:     intakeOps(),
	},
	{
		Version: 5,
		Name:    "create_work_order_tables",
		Ops:     workOrderOps(),
	},
	{
		Version: 6,
		Name:    "create_commercial_tables",
		Ops:     commercialOps(),
	},
	{
		Version: 7,
		Name:    "create_support_tables",
		Ops:     supportOps(),
	},
	{
		Version: 8,
		Name:    "add_repair_request_row_version",
		Ops: []migration.Op{
			migration.AddColumn{Table: "repair_requests", Column: "row_version", Definition: "INTEGER NOT NULL DEFAULT 1"},
		},
	},
	{
		Version: 9,
		Name:    "rename_webhook_inbox_error_column",
		Ops: []migration.Op{
			migration.RenameColumn{Table: "webhook_inbox", From: "error", To: "last_error"},
		},
	},
	{
		Version: 10,
		Name:    "add_repair_request_active_index",
		Ops: []migration.Op{
			createIndex("UX_RepairRequests_VehicleRequestDate_Active",
				`CREATE UNIQUE INDEX UX_RepairRequests_VehicleRequestDate_Active ON repair_requests(vehicle_id, request_date) WHERE status IN (0, 1, 2)`),
		},
	},
	{
		Version: 11,
		Name:    "add_feedback_rating_check",
		Ops: []migration.Op{
			migration.RebuildTable{
				Table:    "feedbacks",
				FromBody: feedbacksBodyV7,
				ToBody:   feedbacksBodyV11,
				Columns:  []string{"id", "repair_order_id", "user_id", "rating", "comment", "created_at"},
				Indexes:  feedbackIndexes,
			},
		},
	},
	{
		Version: 12,
		Name:    "seed_order_statuses",
		Ops: []migration.Op{
			migration.InsertRows{
				Table:   "order_statuses",
				Columns: []string{"id", "name", "description"},
				Key:     "id",
				Rows: [][]any{
					{1, "Pending", "Order received, work not started"},
					{2, "InProgress", "Work is underway"},
					{3, "Completed", "All jobs finished"},
				},
			},
		},
	},
	{
		Version: 13,
		Name:    "defer_hierarchy_delete_checks",
		Ops: []migration.Op{
			migration.RebuildTable{
				Table:    "service_categories",
				FromBody: serviceCategoriesBodyV2,
				ToBody:   serviceCategoriesBodyV13,
				Columns:  []string{"id", "name", "description", "parent_service_category_id", "is_active", "created_at", "updated_at"},
				Indexes:  serviceCategoryIndexes,
			},
			migration.RebuildTable{
				Table:    "jobs",
				FromBody: jobsBodyV5,
				ToBody:   jobsBodyV13,
				Columns: []string{"id", "repair_order_id", "service_id", "original_job_id", "name", "note", "status",
					"total_amount_cents", "revision_count", "revision_reason", "deadline", "created_at", "updated_at"},
				Indexes: jobIndexes,
			},
		},
	},
}

// Migrations returns the ordered migration list.
func Migrations() []migration.Migration {
	return migrations
}

const ledgerSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	version INTEGER NOT NULL,
	name TEXT NOT NULL,
	direction TEXT NOT NULL CHECK(direction IN ('up', 'down')),
	applied_at DATETIME NOT NULL
);
CREATE TRIGGER IF NOT EXISTS schema_migrations_no_update
BEFORE UPDATE ON schema_migrations
BEGIN
	SELECT RAISE(ABORT, 'schema_migrations is append-only');
END;
CREATE TRIGGER IF NOT EXISTS schema_migrations_no_delete
BEFORE DELETE ON schema_migrations
BEGIN
	SELECT RAISE(ABORT, 'schema_migrations is append-only');
END;
`

// LedgerEntry is one row of the append-only migration ledger.
type LedgerEntry struct {
	ID        int64
	Version   int
	Name      string
	Direction migration.Direction
	AppliedAt time.Time
}

// MigrationStatus reports whether a known migration is currently applied.
type MigrationStatus struct {
	Version int
	Name    string
	Applied bool
}

// Migrator applies migrations and records every step in schema_migrations.
type Migrator struct {
	db         *sql.DB
	migrations []migration.Migration
	logger     *zap.Logger
	now        func() time.Time
}

// NewMigrator creates a migrator over the package migration list.
func NewMigrator(db *sql.DB, logger *zap.Logger) *Migrator {
	return newMigrator(db, migrations, logger)
}

func newMigrator(db *sql.DB, ms []migration.Migration, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{
		db:         db,
		migrations: ms,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Latest is the newest version this binary knows about.
func (m *Migrator) Latest() int {
	return migration.Latest(m.migrations)
}

func (m *Migrator) ensureLedger(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, ledgerSQL); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// Current returns the schema version implied by the last ledger entry.
func (m *Migrator) Current(ctx context.Context) (int, error) {
	if err := m.ensureLedger(ctx); err != nil {
		return 0, err
	}

	var version int
	var direction string
	err := m.db.QueryRowContext(ctx,
		"SELECT version, direction FROM schema_migrations ORDER BY id DESC LIMIT 1",
	).Scan(&version, &direction)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return migration.VersionAfter(version, migration.Direction(direction)), nil
}

// History returns every ledger entry, oldest first.
func (m *Migrator) History(ctx context.Context) ([]LedgerEntry, error) {
	if err := m.ensureLedger(ctx); err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx,
		"SELECT id, version, name, direction, applied_at FROM schema_migrations ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		var direction string
		if err := rows.Scan(&e.ID, &e.Version, &e.Name, &direction, &e.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.Direction = migration.Direction(direction)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Status lists every known migration and whether it is applied.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	current, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, mig := range m.migrations {
		statuses = append(statuses, MigrationStatus{
			Version: mig.Version,
			Name:    mig.Name,
			Applied: mig.Version <= current,
		})
	}
	return statuses, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	return m.MigrateTo(ctx, m.Latest())
}

// MigrateTo moves the schema to target, applying or reverting one migration
// at a time. Each step runs in its own transaction; a failed step leaves the
// schema at the last successfully applied version.
func (m *Migrator) MigrateTo(ctx context.Context, target int) error {
	if err := migration.Validate(m.migrations); err != nil {
		return err
	}

	current, err := m.Current(ctx)
	if err != nil {
		return err
	}

	steps, err := migration.Plan(m.migrations, current, target)
	if err != nil {
		return err
	}

	for _, step := range steps {
		m.logger.Info("applying migration",
			zap.Int("version", step.Migration.Version),
			zap.String("name", step.Migration.Name),
			zap.String("direction", string(step.Direction)),
		)
		if err := m.apply(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

// apply runs one step on a dedicated connection. Foreign keys are switched
// off for the duration so table rebuilds can drop and recreate referenced
// tables; integrity is re-checked with foreign_key_check before commit.
func (m *Migrator) apply(ctx context.Context, step migration.Step) (err error) {
	mig := step.Migration

	conn, err := m.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("failed to disable foreign keys: %w", err)
	}
	defer func() {
		if _, fkErr := conn.ExecContext(context.Background(), "PRAGMA foreign_keys = ON"); fkErr != nil && err == nil {
			err = fmt.Errorf("failed to re-enable foreign keys: %w", fkErr)
		}
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", mig.Version, err)
	}
	defer tx.Rollback()

	for _, op := range mig.OpsFor(step.Direction) {
		for _, stmt := range op.Statements() {
			if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
				return fmt.Errorf("migration %d (%s) %s failed at %s: %w", mig.Version, mig.Name, step.Direction, op.Kind(), err)
			}
		}
	}

	if err := checkForeignKeys(ctx, tx); err != nil {
		return fmt.Errorf("migration %d (%s) %s: %w", mig.Version, mig.Name, step.Direction, err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, direction, applied_at) VALUES (?, ?, ?, ?)",
		mig.Version, mig.Name, string(step.Direction), m.now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record migration %d: %w", mig.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", mig.Version, err)
	}
	return nil
}

func checkForeignKeys(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return fmt.Errorf("failed to run foreign_key_check: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		var table, parent string
		var rowid sql.NullInt64
		var fkid int
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return fmt.Errorf("failed to scan foreign_key_check: %w", err)
		}
		return fmt.Errorf("foreign key violation: %s row %d references missing %s", table, rowid.Int64, parent)
	}
	return rows.Err()
}
