package primary

import "context"

// IntegrityService defines the primary port for delete impact analysis and
// schema verification.
type IntegrityService interface {
	// DeleteImpact reports what deleting a row would cascade, clear or be blocked by.
	DeleteImpact(ctx context.Context, table, id string) (*DeleteImpact, error)

	// Delete removes a row. A blocking RESTRICT relation is returned as a
	// foreign-key ConstraintViolation naming that relation.
	Delete(ctx context.Context, table, id string) (*DeleteImpact, error)

	// Verify compares the relation and unique-index registry with the live schema.
	Verify(ctx context.Context) (*SchemaReport, error)
}

// DeleteImpact is the consequence of deleting one row.
type DeleteImpact struct {
	Root     string
	Allowed  bool
	Reason   string
	Deleted  map[string]int // cascaded rows per table
	Nulled   map[string]int // cleared references per relation
	Blocking []BlockingRelation
	Summary  string
}

// BlockingRelation is a RESTRICT relation that still has dependents.
type BlockingRelation struct {
	Relation string
	Child    string
	Parent   string
	Count    int
	Sample   []string
}

// SchemaReport is the outcome of Verify.
type SchemaReport struct {
	Relations     int
	UniqueIndexes int
	Problems      []string
}

// OK reports whether the live schema matches the registry.
func (r *SchemaReport) OK() bool {
	return len(r.Problems) == 0
}
