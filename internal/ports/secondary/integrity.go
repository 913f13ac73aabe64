package secondary

import (
	"context"

	"github.com/example/garage/internal/core/integrity"
)

// IntegrityRepository defines the secondary port the delete-impact engine and
// schema verification read through.
type IntegrityRepository interface {
	// Resolve finds the row of table whose id column equals id.
	Resolve(ctx context.Context, table, id string) (integrity.RowRef, error)

	// Dependents returns the rows of rel.Child that reference parent through rel.
	Dependents(ctx context.Context, rel integrity.Relation, parent integrity.RowRef) ([]integrity.RowRef, error)

	// DeleteRow deletes one row by rowid; the store applies the referential actions.
	DeleteRow(ctx context.Context, row integrity.RowRef) error

	// ForeignKeys lists every foreign key declared by the live schema.
	ForeignKeys(ctx context.Context) ([]LiveForeignKey, error)

	// UniqueIndexes lists every named unique index of the live schema.
	UniqueIndexes(ctx context.Context) ([]LiveUniqueIndex, error)
}

// LiveForeignKey is a foreign key as the store reports it.
type LiveForeignKey struct {
	Child         string
	Columns       []string
	Parent        string
	ParentColumns []string
	OnDelete      string
}

// LiveUniqueIndex is a unique index as the store reports it.
type LiveUniqueIndex struct {
	Name      string
	Table     string
	Columns   []string
	Predicate string
}
