package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/example/garage/internal/core/integrity"
	"github.com/example/garage/internal/db"
	"github.com/example/garage/internal/ports/secondary"
)

// IntegrityRepository implements secondary.IntegrityRepository with SQLite.
type IntegrityRepository struct {
	db *sql.DB
}

// NewIntegrityRepository creates a new SQLite integrity repository.
func NewIntegrityRepository(db *sql.DB) *IntegrityRepository {
	return &IntegrityRepository{db: db}
}

// Resolve finds the row of table whose id column equals id.
func (r *IntegrityRepository) Resolve(ctx context.Context, table, id string) (integrity.RowRef, error) {
	if !isKnownTable(table) {
		return integrity.RowRef{}, fmt.Errorf("unknown table %q", table)
	}
	return resolveRow(ctx, r.db, table, id)
}

// Dependents returns the rows of rel.Child that reference parent through rel.
func (r *IntegrityRepository) Dependents(ctx context.Context, rel integrity.Relation, parent integrity.RowRef) ([]integrity.RowRef, error) {
	return dependents(ctx, r.db, rel, parent)
}

// DeleteRow deletes one row by rowid.
func (r *IntegrityRepository) DeleteRow(ctx context.Context, row integrity.RowRef) error {
	if !isKnownTable(row.Table) {
		return fmt.Errorf("unknown table %q", row.Table)
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+row.Table+" WHERE rowid = ?", row.RowID)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", row, translate(err, row.Table))
	}
	return requireAffected(res, row.Table, row.String())
}

// ForeignKeys lists every foreign key declared by the live schema.
func (r *IntegrityRepository) ForeignKeys(ctx context.Context) ([]secondary.LiveForeignKey, error) {
	snap, err := db.TakeSnapshot(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var out []secondary.LiveForeignKey
	for _, table := range snap.TableNames() {
		for _, fk := range snap.Tables[table].ForeignKeys {
			out = append(out, secondary.LiveForeignKey{
				Child:         table,
				Columns:       fk.Columns,
				Parent:        fk.Parent,
				ParentColumns: fk.ParentColumns,
				OnDelete:      fk.OnDelete,
			})
		}
	}
	return out, nil
}

// UniqueIndexes lists every named unique index of the live schema.
// Automatic indexes backing primary keys are skipped.
func (r *IntegrityRepository) UniqueIndexes(ctx context.Context) ([]secondary.LiveUniqueIndex, error) {
	snap, err := db.TakeSnapshot(ctx, r.db)
	if err != nil {
		return nil, err
	}
	var out []secondary.LiveUniqueIndex
	for _, table := range snap.TableNames() {
		for _, idx := range snap.Tables[table].Indexes {
			if !idx.Unique || idx.Origin != "c" {
				continue
			}
			out = append(out, secondary.LiveUniqueIndex{
				Name:      idx.Name,
				Table:     table,
				Columns:   idx.Columns,
				Predicate: idx.Where,
			})
		}
	}
	return out, nil
}

// isKnownTable guards table names that end up in SQL text.
func isKnownTable(table string) bool {
	return slices.Contains(integrity.Tables(), table)
}

func resolveRow(ctx context.Context, q *sql.DB, table, id string) (integrity.RowRef, error) {
	var rowID int64
	err := q.QueryRowContext(ctx, "SELECT rowid FROM "+table+" WHERE id = ?", id).Scan(&rowID)
	if err == sql.ErrNoRows {
		return integrity.RowRef{}, notFound(table, id)
	}
	if err != nil {
		return integrity.RowRef{}, fmt.Errorf("failed to resolve %s %s: %w", table, id, err)
	}
	return integrity.RowRef{Table: table, RowID: rowID, Key: id}, nil
}

func hasIDColumn(ctx context.Context, q *sql.DB, table string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = 'id'", table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	return n > 0, nil
}

// dependents joins child to parent on every key column, so composite
// relations resolve the same way as single-column ones.
func dependents(ctx context.Context, q *sql.DB, rel integrity.Relation, parent integrity.RowRef) ([]integrity.RowRef, error) {
	withID, err := hasIDColumn(ctx, q, rel.Child)
	if err != nil {
		return nil, err
	}

	on := make([]string, len(rel.Columns))
	for i := range rel.Columns {
		on[i] = fmt.Sprintf("c.%s = p.%s", rel.Columns[i], rel.ParentColumns[i])
	}
	key := "''"
	if withID {
		key = "CAST(c.id AS TEXT)"
	}
	query := fmt.Sprintf("SELECT c.rowid, %s FROM %s c JOIN %s p ON %s WHERE p.rowid = ? ORDER BY c.rowid",
		key, rel.Child, rel.Parent, strings.Join(on, " AND "))

	rows, err := q.QueryContext(ctx, query, parent.RowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s dependents: %w", rel.Name, err)
	}
	defer rows.Close()

	var out []integrity.RowRef
	for rows.Next() {
		ref := integrity.RowRef{Table: rel.Child}
		if err := rows.Scan(&ref.RowID, &ref.Key); err != nil {
			return nil, fmt.Errorf("failed to scan %s dependent: %w", rel.Name, err)
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

var _ secondary.IntegrityRepository = (*IntegrityRepository)(nil)
