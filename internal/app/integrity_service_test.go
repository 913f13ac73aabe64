package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/garage/internal/core/integrity"
	"github.com/example/garage/internal/ports/secondary"
)

func newTestIntegrityService() (*IntegrityServiceImpl, *mockIntegrityRepository) {
	repo := newMockIntegrityRepository()
	return NewIntegrityService(repo, nil, nil), repo
}

// liveSchema renders the registry as the store would report it.
func liveSchema() ([]secondary.LiveForeignKey, []secondary.LiveUniqueIndex) {
	var fks []secondary.LiveForeignKey
	for _, rel := range integrity.Relations() {
		fks = append(fks, secondary.LiveForeignKey{
			Child:         rel.Child,
			Columns:       rel.Columns,
			Parent:        rel.Parent,
			ParentColumns: rel.ParentColumns,
			OnDelete:      string(rel.OnDelete),
		})
	}
	var indexes []secondary.LiveUniqueIndex
	for _, u := range integrity.UniqueConstraints() {
		indexes = append(indexes, secondary.LiveUniqueIndex{Name: u.Name, Table: u.Table, Columns: u.Columns, Predicate: u.Predicate})
	}
	return fks, indexes
}

// ============================================================================
// Delete Tests
// ============================================================================

func TestDelete_RestrictBlocksWithNamedRelation(t *testing.T) {
	service, repo := newTestIntegrityService()
	vehicle := repo.addRow("vehicles", "VEH-1")
	order := repo.addRow("repair_orders", "RO-1")
	repo.addDependent("FK_RepairOrders_Vehicles_VehicleId", vehicle, order)

	impact, err := service.Delete(context.Background(), "vehicles", "VEH-1")

	cv, ok := secondary.AsConstraintViolation(err, secondary.ConstraintForeignKey)
	if !ok {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
	if cv.Constraint != "FK_RepairOrders_Vehicles_VehicleId" {
		t.Errorf("expected violation naming the order relation, got %q", cv.Constraint)
	}
	if impact == nil || impact.Allowed || len(impact.Blocking) != 1 || impact.Blocking[0].Count != 1 {
		t.Errorf("expected one blocking relation in impact, got %+v", impact)
	}
	if len(repo.deleted) != 0 {
		t.Error("blocked delete must not remove rows")
	}
}

func TestDelete_CascadesThroughOwnedRows(t *testing.T) {
	service, repo := newTestIntegrityService()
	order := repo.addRow("repair_orders", "RO-1")
	job := repo.addRow("jobs", "JOB-1")
	part := repo.addRow("job_parts", "JP-1")
	payment := repo.addRow("payments", "PAY-1")
	repo.addDependent("FK_Jobs_RepairOrders_RepairOrderId", order, job)
	repo.addDependent("FK_JobParts_Jobs_JobId", job, part)
	repo.addDependent("FK_Payments_RepairOrders_RepairOrderId", order, payment)

	impact, err := service.Delete(context.Background(), "repair_orders", "RO-1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if impact.Deleted["jobs"] != 1 || impact.Deleted["job_parts"] != 1 || impact.Deleted["payments"] != 1 {
		t.Errorf("unexpected cascade counts %v", impact.Deleted)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != order {
		t.Errorf("expected only the root deleted by the service, got %v", repo.deleted)
	}
}

func TestDeleteImpact_SetNullClearsLinks(t *testing.T) {
	service, repo := newTestIntegrityService()
	inspection := repo.addRow("inspections", "INS-1")
	quote := repo.addRow("quotations", "QT-1")
	finding := repo.addRow("part_inspections", "PI-1")
	repo.addDependent("FK_Quotations_Inspections_InspectionId", inspection, quote)
	repo.addDependent("FK_PartInspections_Inspections_InspectionId", inspection, finding)

	impact, err := service.DeleteImpact(context.Background(), "inspections", "INS-1")
	if err != nil {
		t.Fatalf("DeleteImpact failed: %v", err)
	}
	if !impact.Allowed {
		t.Fatalf("expected delete allowed, got reason %q", impact.Reason)
	}
	if impact.Nulled["FK_Quotations_Inspections_InspectionId"] != 1 {
		t.Errorf("expected quotation link cleared, got %v", impact.Nulled)
	}
	if impact.Deleted["quotations"] != 0 || impact.Deleted["part_inspections"] != 1 {
		t.Errorf("unexpected cascade counts %v", impact.Deleted)
	}
	if len(repo.deleted) != 0 {
		t.Error("DeleteImpact must not delete")
	}
}

func TestDelete_UnknownTable(t *testing.T) {
	service, _ := newTestIntegrityService()

	if _, err := service.Delete(context.Background(), "sqlite_master", "1"); err == nil {
		t.Fatal("expected error for an unregistered table")
	}
}

func TestDelete_MissingRow(t *testing.T) {
	service, _ := newTestIntegrityService()

	_, err := service.Delete(context.Background(), "vehicles", "VEH-404")
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ============================================================================
// Verify Tests
// ============================================================================

func TestVerify_MatchingSchema(t *testing.T) {
	service, repo := newTestIntegrityService()
	repo.fks, repo.indexes = liveSchema()

	report, err := service.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !report.OK() {
		t.Errorf("expected no problems, got %v", report.Problems)
	}
	if report.Relations != len(integrity.Relations()) || report.UniqueIndexes != len(integrity.UniqueConstraints()) {
		t.Errorf("unexpected counts %d/%d", report.Relations, report.UniqueIndexes)
	}
}

func TestVerify_ReportsDrift(t *testing.T) {
	service, repo := newTestIntegrityService()
	fks, indexes := liveSchema()
	for i := range fks {
		if fks[i].Child == "repair_orders" && fks[i].Columns[0] == "vehicle_id" {
			fks[i].OnDelete = "CASCADE"
		}
	}
	fks = append(fks, secondary.LiveForeignKey{Child: "jobs", Columns: []string{"branch_id"}, Parent: "branches", ParentColumns: []string{"id"}, OnDelete: "RESTRICT"})
	var kept []secondary.LiveUniqueIndex
	for _, idx := range indexes {
		switch idx.Name {
		case "IX_Promotions_Code":
			continue
		case "UX_Jobs_OriginalJobId":
			idx.Predicate = ""
		}
		kept = append(kept, idx)
	}
	repo.fks, repo.indexes = fks, kept

	report, err := service.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	want := []string{
		"FK_RepairOrders_Vehicles_VehicleId: ON DELETE CASCADE",
		"jobs(branch_id)->branches(id): not registered",
		"IX_Promotions_Code: missing from schema",
		"UX_Jobs_OriginalJobId: filter",
	}
	joined := strings.Join(report.Problems, "\n")
	for _, w := range want {
		if !strings.Contains(joined, w) {
			t.Errorf("expected problem containing %q, got:\n%s", w, joined)
		}
	}
	if len(report.Problems) != len(want) {
		t.Errorf("expected %d problems, got %d", len(want), len(report.Problems))
	}
}
