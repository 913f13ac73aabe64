package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// Snapshot is the observable structure of a schema: tables with their
// definition text, columns, indexes (including partial predicates) and
// foreign keys.
// Internal sqlite_* tables and the migration ledger are excluded.
type Snapshot struct {
	Tables map[string]TableShape
}

// TableShape describes a single table.
type TableShape struct {
	SQL         string // normalized CREATE TABLE text; the only place CHECK constraints show
	Columns     []ColumnShape
	Indexes     []IndexShape
	ForeignKeys []ForeignKeyShape
}

// ColumnShape is one row of table_info. Columns are sorted by name, since
// ALTER TABLE appends and a drop-then-add restores a column at the end.
type ColumnShape struct {
	Name    string
	Type    string
	NotNull bool
	Default string
	PK      int
}

// IndexShape is one index with its key columns and WHERE predicate.
type IndexShape struct {
	Name    string
	Unique  bool
	Origin  string
	Columns []string
	Where   string
}

// ForeignKeyShape is one (possibly composite) foreign key.
type ForeignKeyShape struct {
	Parent        string
	Columns       []string
	ParentColumns []string
	OnDelete      string
}

// Key is a stable identity for comparing foreign keys across snapshots.
func (fk ForeignKeyShape) Key() string {
	return fk.Parent + "(" + strings.Join(fk.Columns, ",") + ")"
}

// Queryer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// TakeSnapshot introspects the current schema.
//
// Each query's rows are drained before the next query runs: with a
// single-connection pool a nested query would block forever.
func TakeSnapshot(ctx context.Context, q Queryer) (*Snapshot, error) {
	tables, err := queryStrings(ctx, q,
		`SELECT name FROM sqlite_master
		 WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name <> 'schema_migrations'
		 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	snap := &Snapshot{Tables: make(map[string]TableShape, len(tables))}
	for _, table := range tables {
		shape := TableShape{}
		if shape.SQL, err = tableSQL(ctx, q, table); err != nil {
			return nil, err
		}
		if shape.Columns, err = tableColumns(ctx, q, table); err != nil {
			return nil, err
		}
		if shape.Indexes, err = tableIndexes(ctx, q, table); err != nil {
			return nil, err
		}
		if shape.ForeignKeys, err = tableForeignKeys(ctx, q, table); err != nil {
			return nil, err
		}
		snap.Tables[table] = shape
	}
	return snap, nil
}

// TableNames returns the snapshot's tables in name order.
func (s *Snapshot) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasColumn reports whether table has the named column.
func (s *Snapshot) HasColumn(table, column string) bool {
	for _, c := range s.Tables[table].Columns {
		if c.Name == column {
			return true
		}
	}
	return false
}

// Index returns the named index on table, if present.
func (s *Snapshot) Index(table, name string) (IndexShape, bool) {
	for _, idx := range s.Tables[table].Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return IndexShape{}, false
}

func queryStrings(ctx context.Context, q Queryer, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func tableSQL(ctx context.Context, q Queryer, table string) (string, error) {
	ddl, err := queryStrings(ctx, q, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
	if err != nil {
		return "", fmt.Errorf("failed to read definition of %s: %w", table, err)
	}
	if len(ddl) == 0 {
		return "", nil
	}
	return normalizeSQL(ddl[0]), nil
}

// normalizeSQL makes definitions comparable across rebuilds and renames:
// SQLite quotes a renamed table's name, and ALTER TABLE edits keep the
// surrounding whitespace of whatever statement created the table.
func normalizeSQL(ddl string) string {
	s := strings.ReplaceAll(ddl, `"`, "")
	s = strings.Join(strings.Fields(s), " ")
	for _, p := range []string{"(", ")", ","} {
		s = strings.ReplaceAll(s, " "+p, p)
		s = strings.ReplaceAll(s, p+" ", p)
	}
	return s
}

func tableColumns(ctx context.Context, q Queryer, table string) ([]ColumnShape, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []ColumnShape
	for rows.Next() {
		var c ColumnShape
		var notNull int
		var dflt sql.NullString
		if err := rows.Scan(&c.Name, &c.Type, &notNull, &dflt, &c.PK); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		c.NotNull = notNull == 1
		c.Default = dflt.String
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })
	return cols, nil
}

func tableIndexes(ctx context.Context, q Queryer, table string) ([]IndexShape, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT il.name, il."unique", il.origin, COALESCE(m.sql, '')
		 FROM pragma_index_list(?) il
		 LEFT JOIN sqlite_master m ON m.type = 'index' AND m.name = il.name
		 ORDER BY il.name`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read indexes of %s: %w", table, err)
	}

	var indexes []IndexShape
	var ddls []string
	for rows.Next() {
		var idx IndexShape
		var unique int
		var ddl string
		if err := rows.Scan(&idx.Name, &unique, &idx.Origin, &ddl); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan index of %s: %w", table, err)
		}
		idx.Unique = unique == 1
		indexes = append(indexes, idx)
		ddls = append(ddls, ddl)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range indexes {
		indexes[i].Where = wherePredicate(ddls[i])
		cols, err := queryStrings(ctx, q,
			`SELECT COALESCE(name, '') FROM pragma_index_info(?) ORDER BY seqno`, indexes[i].Name)
		if err != nil {
			return nil, fmt.Errorf("failed to read columns of index %s: %w", indexes[i].Name, err)
		}
		indexes[i].Columns = cols
	}
	return indexes, nil
}

// wherePredicate extracts the partial-index predicate from CREATE INDEX sql.
func wherePredicate(ddl string) string {
	upper := strings.ToUpper(ddl)
	pos := strings.LastIndex(upper, " WHERE ")
	if pos < 0 {
		return ""
	}
	return strings.Join(strings.Fields(ddl[pos+len(" WHERE "):]), " ")
}

func tableForeignKeys(ctx context.Context, q Queryer, table string) ([]ForeignKeyShape, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, "table", "from", COALESCE("to", ''), on_delete
		 FROM pragma_foreign_key_list(?) ORDER BY id, seq`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	byID := map[int]*ForeignKeyShape{}
	var order []int
	for rows.Next() {
		var id int
		var parent, from, to, onDelete string
		if err := rows.Scan(&id, &parent, &from, &to, &onDelete); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key of %s: %w", table, err)
		}
		fk, ok := byID[id]
		if !ok {
			fk = &ForeignKeyShape{Parent: parent, OnDelete: onDelete}
			byID[id] = fk
			order = append(order, id)
		}
		fk.Columns = append(fk.Columns, from)
		fk.ParentColumns = append(fk.ParentColumns, to)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fks := make([]ForeignKeyShape, 0, len(order))
	for _, id := range order {
		fks = append(fks, *byID[id])
	}
	sort.Slice(fks, func(i, j int) bool { return fks[i].Key() < fks[j].Key() })
	return fks, nil
}
