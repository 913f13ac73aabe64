// Package migration contains the pure model of schema migrations.
// This is part of the Functional Core - operations render SQL and compute
// their own inverse, nothing here touches a database.
package migration

import (
	"fmt"
	"strings"
)

// Statement is a single SQL statement with optional bind arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Op is one structural change to the schema.
// Every Op knows how to undo itself: applying Inverse() after the Op must
// restore the previous structure.
type Op interface {
	Kind() string
	Statements() []Statement
	Inverse() Op
}

// CreateTable creates a table from a complete CREATE TABLE statement.
type CreateTable struct {
	Name string
	DDL  string
}

func (o CreateTable) Kind() string { return "create_table" }

func (o CreateTable) Statements() []Statement {
	return []Statement{{SQL: strings.TrimSpace(o.DDL)}}
}

func (o CreateTable) Inverse() Op { return DropTable(o) }

// DropTable drops a table. DDL is kept so the drop can be reversed.
type DropTable struct {
	Name string
	DDL  string
}

func (o DropTable) Kind() string { return "drop_table" }

func (o DropTable) Statements() []Statement {
	return []Statement{{SQL: "DROP TABLE " + o.Name}}
}

func (o DropTable) Inverse() Op { return CreateTable(o) }

// AddColumn appends a column to an existing table.
type AddColumn struct {
	Table      string
	Column     string
	Definition string // type and column constraints, e.g. "INTEGER NOT NULL DEFAULT 1"
}

func (o AddColumn) Kind() string { return "add_column" }

func (o AddColumn) Statements() []Statement {
	return []Statement{{SQL: fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", o.Table, o.Column, o.Definition)}}
}

func (o AddColumn) Inverse() Op { return DropColumn(o) }

// DropColumn removes a column. The column must not be indexed or part of a
// table constraint; use RebuildTable for those.
type DropColumn struct {
	Table      string
	Column     string
	Definition string
}

func (o DropColumn) Kind() string { return "drop_column" }

func (o DropColumn) Statements() []Statement {
	return []Statement{{SQL: fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", o.Table, o.Column)}}
}

func (o DropColumn) Inverse() Op { return AddColumn(o) }

// RenameColumn renames a column in place.
type RenameColumn struct {
	Table string
	From  string
	To    string
}

func (o RenameColumn) Kind() string { return "rename_column" }

func (o RenameColumn) Statements() []Statement {
	return []Statement{{SQL: fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", o.Table, o.From, o.To)}}
}

func (o RenameColumn) Inverse() Op {
	return RenameColumn{Table: o.Table, From: o.To, To: o.From}
}

// RenameTable renames a table.
type RenameTable struct {
	From string
	To   string
}

func (o RenameTable) Kind() string { return "rename_table" }

func (o RenameTable) Statements() []Statement {
	return []Statement{{SQL: fmt.Sprintf("ALTER TABLE %s RENAME TO %s", o.From, o.To)}}
}

func (o RenameTable) Inverse() Op { return RenameTable{From: o.To, To: o.From} }

// CreateIndex creates an index from a complete CREATE INDEX statement.
type CreateIndex struct {
	Name string
	DDL  string
}

func (o CreateIndex) Kind() string { return "create_index" }

func (o CreateIndex) Statements() []Statement {
	return []Statement{{SQL: strings.TrimSpace(o.DDL)}}
}

func (o CreateIndex) Inverse() Op { return DropIndex(o) }

// DropIndex drops an index. DDL is kept so the drop can be reversed.
type DropIndex struct {
	Name string
	DDL  string
}

func (o DropIndex) Kind() string { return "drop_index" }

func (o DropIndex) Statements() []Statement {
	return []Statement{{SQL: "DROP INDEX " + o.Name}}
}

func (o DropIndex) Inverse() Op { return CreateIndex(o) }

// RebuildTable replaces a table definition while keeping its rows.
// SQLite cannot add or drop table constraints in place, so the table is
// copied into a new definition, the old one is dropped and the copy renamed.
//
// FromBody and ToBody are the column and constraint lists between the
// parentheses of CREATE TABLE. Columns are copied verbatim and must exist in
// both definitions. Indexes are recreated after the rename.
type RebuildTable struct {
	Table    string
	FromBody string
	ToBody   string
	Columns  []string
	Indexes  []string
}

func (o RebuildTable) Kind() string { return "rebuild_table" }

func (o RebuildTable) Statements() []Statement {
	tmp := o.Table + "__rebuild"
	cols := strings.Join(o.Columns, ", ")
	stmts := []Statement{
		{SQL: fmt.Sprintf("CREATE TABLE %s (%s)", tmp, strings.TrimSpace(o.ToBody))},
		{SQL: fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", tmp, cols, cols, o.Table)},
		{SQL: "DROP TABLE " + o.Table},
		{SQL: fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tmp, o.Table)},
	}
	for _, idx := range o.Indexes {
		stmts = append(stmts, Statement{SQL: strings.TrimSpace(idx)})
	}
	return stmts
}

func (o RebuildTable) Inverse() Op {
	return RebuildTable{
		Table:    o.Table,
		FromBody: o.ToBody,
		ToBody:   o.FromBody,
		Columns:  o.Columns,
		Indexes:  o.Indexes,
	}
}

// InsertRows seeds lookup data. Key names the column that identifies a row
// when the insert is reversed.
type InsertRows struct {
	Table   string
	Columns []string
	Key     string
	Rows    [][]any
}

func (o InsertRows) Kind() string { return "insert_rows" }

func (o InsertRows) Statements() []Statement {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(o.Columns)), ", ")
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", o.Table, strings.Join(o.Columns, ", "), placeholders)
	stmts := make([]Statement, 0, len(o.Rows))
	for _, row := range o.Rows {
		stmts = append(stmts, Statement{SQL: sql, Args: row})
	}
	return stmts
}

func (o InsertRows) Inverse() Op { return DeleteRows(o) }

// DeleteRows removes seeded rows by key. Full rows are kept for the inverse.
type DeleteRows struct {
	Table   string
	Columns []string
	Key     string
	Rows    [][]any
}

func (o DeleteRows) Kind() string { return "delete_rows" }

func (o DeleteRows) Statements() []Statement {
	keyIdx := indexOf(o.Columns, o.Key)
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", o.Table, o.Key)
	stmts := make([]Statement, 0, len(o.Rows))
	// delete in reverse insertion order
	for i := len(o.Rows) - 1; i >= 0; i-- {
		var key any
		if keyIdx >= 0 && keyIdx < len(o.Rows[i]) {
			key = o.Rows[i][keyIdx]
		}
		stmts = append(stmts, Statement{SQL: sql, Args: []any{key}})
	}
	return stmts
}

func (o DeleteRows) Inverse() Op { return InsertRows(o) }

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
