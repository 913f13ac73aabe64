package integrity

import (
	"errors"
	"strings"
	"testing"
)

// graph is an in-memory dependents lookup keyed by relation name and parent row.
type graph map[string]map[int64][]RowRef

func (g graph) dependents(rel Relation, parent RowRef) ([]RowRef, error) {
	return g[rel.Name][parent.RowID], nil
}

func TestRelationName(t *testing.T) {
	tests := []struct {
		child   string
		parent  string
		columns []string
		want    string
	}{
		{"jobs", "jobs", []string{"original_job_id"}, "FK_Jobs_Jobs_OriginalJobId"},
		{"repair_orders", "branches", []string{"branch_id"}, "FK_RepairOrders_Branches_BranchId"},
		{"vehicles", "model_colors", []string{"model_id", "color_id"}, "FK_Vehicles_ModelColors_ModelId_ColorId"},
	}
	for _, tt := range tests {
		if got := relationName(tt.child, tt.parent, tt.columns); got != tt.want {
			t.Errorf("relationName(%s, %s, %v) = %q, want %q", tt.child, tt.parent, tt.columns, got, tt.want)
		}
	}
}

func TestRegistry_NamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range Relations() {
		if seen[r.Name] {
			t.Errorf("duplicate relation name %s", r.Name)
		}
		seen[r.Name] = true
	}
}

func TestRegistry_Lookups(t *testing.T) {
	r, ok := RelationByName("FK_Jobs_Jobs_OriginalJobId")
	if !ok {
		t.Fatal("expected job revision relation")
	}
	if r.OnDelete != NoAction || r.Shape != Hierarchy || !r.SelfReferencing() {
		t.Errorf("job revision relation = %+v", r)
	}

	if _, ok := FindRelation("vehicles", []string{"model_id", "color_id"}, "model_colors"); !ok {
		t.Error("expected composite vehicle colour relation")
	}

	u, ok := UniqueByColumns("repair_requests", []string{"vehicle_id", "request_date"})
	if !ok || !u.Partial() {
		t.Errorf("expected partial active-request index, got %+v", u)
	}

	if !IsParent("repair_orders") || IsParent("webhook_inbox") {
		t.Error("IsParent() returned wrong answer")
	}
}

func TestBuildDeletePlan(t *testing.T) {
	order := RowRef{Table: "repair_orders", RowID: 1, Key: "RO-1"}
	job := RowRef{Table: "jobs", RowID: 10, Key: "J-1"}
	revision := RowRef{Table: "jobs", RowID: 11, Key: "J-2"}
	jobPart := RowRef{Table: "job_parts", RowID: 20, Key: "JP-1"}
	quotation := RowRef{Table: "quotations", RowID: 30, Key: "Q-1"}

	jobsOfOrder, _ := FindRelation("jobs", []string{"repair_order_id"}, "repair_orders")
	partsOfJob, _ := FindRelation("job_parts", []string{"job_id"}, "jobs")
	revisions, _ := FindRelation("jobs", []string{"original_job_id"}, "jobs")
	quotesOfOrder, _ := FindRelation("quotations", []string{"repair_order_id"}, "repair_orders")
	quotesOfInspection, _ := FindRelation("quotations", []string{"inspection_id"}, "inspections")

	t.Run("cascade reaches grandchildren", func(t *testing.T) {
		g := graph{
			jobsOfOrder.Name: {1: {job}},
			partsOfJob.Name:  {10: {jobPart}},
		}
		plan, err := BuildDeletePlan(DeletePlanInput{Root: order, Dependents: g.dependents})
		if err != nil {
			t.Fatalf("BuildDeletePlan() error: %v", err)
		}
		if !plan.Allowed() {
			t.Fatalf("expected allowed plan, blockers: %+v", plan.Blockers)
		}
		counts := plan.DeletedCounts()
		if counts["jobs"] != 1 || counts["job_parts"] != 1 {
			t.Errorf("DeletedCounts() = %v", counts)
		}
	})

	t.Run("surviving revision blocks with relation name", func(t *testing.T) {
		g := graph{revisions.Name: {10: {revision}}}
		plan, err := BuildDeletePlan(DeletePlanInput{Root: job, Dependents: g.dependents})
		if err != nil {
			t.Fatalf("BuildDeletePlan() error: %v", err)
		}
		res := CanDelete(plan)
		if res.Allowed {
			t.Fatal("expected delete to be blocked")
		}
		if !strings.Contains(res.Reason, "FK_Jobs_Jobs_OriginalJobId") {
			t.Errorf("reason should name the relation, got %q", res.Reason)
		}
		if got := plan.BlockingRelations(); len(got) != 1 || got[0] != "FK_Jobs_Jobs_OriginalJobId" {
			t.Errorf("BlockingRelations() = %v", got)
		}
	})

	t.Run("revision chain inside the cascade does not block", func(t *testing.T) {
		g := graph{
			jobsOfOrder.Name: {1: {job, revision}},
			revisions.Name:   {10: {revision}},
		}
		plan, err := BuildDeletePlan(DeletePlanInput{Root: order, Dependents: g.dependents})
		if err != nil {
			t.Fatalf("BuildDeletePlan() error: %v", err)
		}
		if !plan.Allowed() {
			t.Fatalf("expected allowed plan, blockers: %v", plan.BlockingRelations())
		}
		if plan.DeletedCounts()["jobs"] != 2 {
			t.Errorf("DeletedCounts() = %v", plan.DeletedCounts())
		}
	})

	t.Run("restrict blocks even when the dependent is cascaded", func(t *testing.T) {
		parentRef := Relation{Name: "FK_B_A_AId", Child: "b", Parent: "a", OnDelete: Restrict}
		owned := Relation{Name: "FK_B_C_CId", Child: "b", Parent: "c", OnDelete: Cascade}
		ownsA := Relation{Name: "FK_A_C_CId", Child: "a", Parent: "c", OnDelete: Cascade}
		c1 := RowRef{Table: "c", RowID: 1}
		a1 := RowRef{Table: "a", RowID: 1}
		b1 := RowRef{Table: "b", RowID: 1}
		referencedBy := func(table string) []Relation {
			switch table {
			case "c":
				return []Relation{ownsA, owned}
			case "a":
				return []Relation{parentRef}
			}
			return nil
		}
		g := graph{ownsA.Name: {1: {a1}}, owned.Name: {1: {b1}}, parentRef.Name: {1: {b1}}}

		plan, err := BuildDeletePlan(DeletePlanInput{Root: c1, Dependents: g.dependents, ReferencedBy: referencedBy})
		if err != nil {
			t.Fatalf("BuildDeletePlan() error: %v", err)
		}
		if plan.Allowed() {
			t.Error("RESTRICT is checked immediately and must still block")
		}
	})

	t.Run("set null is reported but does not block", func(t *testing.T) {
		inspection := RowRef{Table: "inspections", RowID: 40, Key: "I-1"}
		g := graph{quotesOfInspection.Name: {40: {quotation}}}
		plan, err := BuildDeletePlan(DeletePlanInput{Root: inspection, Dependents: g.dependents})
		if err != nil {
			t.Fatalf("BuildDeletePlan() error: %v", err)
		}
		if !plan.Allowed() {
			t.Error("set null should not block")
		}
		if plan.NulledCounts()[quotesOfInspection.Name] != 1 {
			t.Errorf("NulledCounts() = %v", plan.NulledCounts())
		}
	})

	t.Run("rows reached twice are deleted once", func(t *testing.T) {
		g := graph{
			jobsOfOrder.Name:   {1: {job}},
			quotesOfOrder.Name: {1: {quotation, quotation}},
		}
		plan, _ := BuildDeletePlan(DeletePlanInput{Root: order, Dependents: g.dependents})
		if plan.DeletedCounts()["quotations"] != 1 {
			t.Errorf("expected quotation counted once, got %v", plan.DeletedCounts())
		}
	})

	t.Run("lookup errors propagate", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := BuildDeletePlan(DeletePlanInput{
			Root:       order,
			Dependents: func(Relation, RowRef) ([]RowRef, error) { return nil, boom },
		})
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped lookup error, got %v", err)
		}
	})
}

func TestBuildDeletePlan_CascadeCycleTerminates(t *testing.T) {
	ab := Relation{Name: "FK_B_A", Child: "b", Parent: "a", OnDelete: Cascade}
	ba := Relation{Name: "FK_A_B", Child: "a", Parent: "b", OnDelete: Cascade}
	a1 := RowRef{Table: "a", RowID: 1}
	b1 := RowRef{Table: "b", RowID: 1}

	referencedBy := func(table string) []Relation {
		if table == "a" {
			return []Relation{ab}
		}
		return []Relation{ba}
	}
	g := graph{ab.Name: {1: {b1}}, ba.Name: {1: {a1}}}

	plan, err := BuildDeletePlan(DeletePlanInput{Root: a1, Dependents: g.dependents, ReferencedBy: referencedBy})
	if err != nil {
		t.Fatalf("BuildDeletePlan() error: %v", err)
	}
	if len(plan.Deleted) != 1 || plan.Deleted[0].Row != b1 {
		t.Errorf("expected only b#1 cascaded, got %+v", plan.Deleted)
	}
}

func TestRowRefString(t *testing.T) {
	if s := (RowRef{Table: "jobs", RowID: 3, Key: "J-1"}).String(); s != "jobs/J-1" {
		t.Errorf("String() = %q", s)
	}
	if s := (RowRef{Table: "model_colors", RowID: 3}).String(); s != "model_colors#3" {
		t.Errorf("String() = %q", s)
	}
}

func TestDescribe(t *testing.T) {
	rel := Relation{Name: "FK_X_Y_YId", Child: "x", Parent: "y", OnDelete: Restrict}
	plan := DeletePlan{
		Root:     RowRef{Table: "y", RowID: 1, Key: "Y-1"},
		Blockers: []Blocker{{Relation: rel, Count: 2, Sample: []string{"x/1", "x/2"}}},
	}
	out := plan.Describe()
	if !strings.Contains(out, "delete y/Y-1") || !strings.Contains(out, "FK_X_Y_YId") {
		t.Errorf("Describe() = %q", out)
	}
}
