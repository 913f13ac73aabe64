package integrity

import (
	"fmt"
	"sort"
	"strings"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// RowRef identifies one row. RowID is the SQLite rowid; Key is the id
// column rendered as text, empty for join tables without one.
type RowRef struct {
	Table string
	RowID int64
	Key   string
}

func (r RowRef) String() string {
	if r.Key != "" {
		return r.Table + "/" + r.Key
	}
	return fmt.Sprintf("%s#%d", r.Table, r.RowID)
}

// Effect is one dependent row touched by a delete.
type Effect struct {
	Relation Relation
	Row      RowRef
}

// Blocker is a RESTRICT or NO ACTION relation with live dependents.
type Blocker struct {
	Relation Relation
	Parent   RowRef
	Count    int
	Sample   []string
}

// DeletePlan is the full consequence of deleting Root.
type DeletePlan struct {
	Root     RowRef
	Deleted  []Effect // rows removed by cascade, root excluded
	Nulled   []Effect // rows whose reference is cleared
	Blockers []Blocker
}

// Allowed reports whether the delete can proceed.
func (p DeletePlan) Allowed() bool {
	return len(p.Blockers) == 0
}

// DeletedCounts returns cascaded row counts per table.
func (p DeletePlan) DeletedCounts() map[string]int {
	counts := map[string]int{}
	for _, e := range p.Deleted {
		counts[e.Row.Table]++
	}
	return counts
}

// NulledCounts returns cleared reference counts per relation name.
func (p DeletePlan) NulledCounts() map[string]int {
	counts := map[string]int{}
	for _, e := range p.Nulled {
		counts[e.Relation.Name]++
	}
	return counts
}

// DependentsFunc returns the rows of rel.Child that reference parent.
type DependentsFunc func(rel Relation, parent RowRef) ([]RowRef, error)

// DeletePlanInput contains the inputs needed to plan a delete.
// All lookups are supplied by the caller - no I/O in the planner.
type DeletePlanInput struct {
	Root         RowRef
	Dependents   DependentsFunc
	ReferencedBy func(table string) []Relation // defaults to the registry
}

const sampleSize = 3

// BuildDeletePlan walks the dependency graph breadth-first from Root.
// Cascaded rows are visited once each, so cycles terminate.
func BuildDeletePlan(in DeletePlanInput) (DeletePlan, error) {
	referencedBy := in.ReferencedBy
	if referencedBy == nil {
		referencedBy = ReferencedBy
	}

	plan := DeletePlan{Root: in.Root}
	visited := map[string]bool{rowKey(in.Root): true}
	queue := []RowRef{in.Root}
	var deferred []pendingBlocker

	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		for _, rel := range referencedBy(parent.Table) {
			rows, err := in.Dependents(rel, parent)
			if err != nil {
				return DeletePlan{}, fmt.Errorf("failed to load dependents for %s: %w", rel.Name, err)
			}
			if len(rows) == 0 {
				continue
			}

			switch rel.OnDelete {
			case Restrict:
				plan.Blockers = append(plan.Blockers, newBlocker(rel, parent, rows))
			case NoAction:
				deferred = append(deferred, pendingBlocker{rel: rel, parent: parent, rows: rows})
			case Cascade:
				for _, row := range rows {
					k := rowKey(row)
					if visited[k] {
						continue
					}
					visited[k] = true
					plan.Deleted = append(plan.Deleted, Effect{Relation: rel, Row: row})
					queue = append(queue, row)
				}
			case SetNull:
				for _, row := range rows {
					plan.Nulled = append(plan.Nulled, Effect{Relation: rel, Row: row})
				}
			}
		}
	}

	// NO ACTION is checked once the cascade has run, so dependents the
	// cascade removes do not block.
	for _, d := range deferred {
		var surviving []RowRef
		for _, row := range d.rows {
			if !visited[rowKey(row)] {
				surviving = append(surviving, row)
			}
		}
		if len(surviving) > 0 {
			plan.Blockers = append(plan.Blockers, newBlocker(d.rel, d.parent, surviving))
		}
	}

	return plan, nil
}

type pendingBlocker struct {
	rel    Relation
	parent RowRef
	rows   []RowRef
}

func newBlocker(rel Relation, parent RowRef, rows []RowRef) Blocker {
	return Blocker{
		Relation: rel,
		Parent:   parent,
		Count:    len(rows),
		Sample:   sample(rows),
	}
}

// CanDelete evaluates whether a planned delete may run.
// Rule: any RESTRICT relation with live dependents blocks the delete, as does
// a NO ACTION relation with dependents the cascade leaves behind.
func CanDelete(plan DeletePlan) GuardResult {
	if plan.Allowed() {
		return GuardResult{Allowed: true}
	}

	b := plan.Blockers[0]
	reason := fmt.Sprintf("Cannot delete %s: %d %s row(s) still reference %s through %s",
		plan.Root, b.Count, b.Relation.Child, b.Parent, b.Relation.Name)
	if len(plan.Blockers) > 1 {
		reason += fmt.Sprintf(" (and %d more blocking relation(s))", len(plan.Blockers)-1)
	}
	return GuardResult{Allowed: false, Reason: reason}
}

// BlockingRelations returns the distinct relation names that block the plan, sorted.
func (p DeletePlan) BlockingRelations() []string {
	seen := map[string]bool{}
	var names []string
	for _, b := range p.Blockers {
		if !seen[b.Relation.Name] {
			seen[b.Relation.Name] = true
			names = append(names, b.Relation.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Describe renders the plan as indented text lines.
func (p DeletePlan) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "delete %s\n", p.Root)

	tables := make([]string, 0)
	counts := p.DeletedCounts()
	for t := range counts {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	for _, t := range tables {
		fmt.Fprintf(&b, "  cascade  %-28s %d\n", t, counts[t])
	}

	nulled := p.NulledCounts()
	names := make([]string, 0, len(nulled))
	for n := range nulled {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(&b, "  set null %-28s %d\n", n, nulled[n])
	}

	for _, bl := range p.Blockers {
		fmt.Fprintf(&b, "  blocked  %-28s %d (%s)\n", bl.Relation.Name, bl.Count, strings.Join(bl.Sample, ", "))
	}
	return b.String()
}

func rowKey(r RowRef) string {
	return fmt.Sprintf("%s#%d", r.Table, r.RowID)
}

func sample(rows []RowRef) []string {
	n := len(rows)
	if n > sampleSize {
		n = sampleSize
	}
	out := make([]string, 0, n)
	for _, r := range rows[:n] {
		out = append(out, r.String())
	}
	return out
}
