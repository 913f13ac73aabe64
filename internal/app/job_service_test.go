package app

import (
	"context"
	"testing"

	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

type jobFixture struct {
	service     *JobServiceImpl
	jobs        *mockJobRepository
	orders      *mockRepairOrderRepository
	technicians *mockTechnicianRepository
}

func newTestJobService() jobFixture {
	f := jobFixture{
		jobs:        newMockJobRepository(),
		orders:      newMockRepairOrderRepository(),
		technicians: newMockTechnicianRepository(),
	}
	catalog := newMockServiceCatalogRepository()
	catalog.services["SVC-ALIGN"] = &secondary.ServiceRecord{ID: "SVC-ALIGN", Name: "Wheel alignment", PriceCents: 45000}
	parts := newMockPartRepository()
	parts.parts["PART-BOLT"] = &secondary.PartRecord{ID: "PART-BOLT", PriceCents: 1200}

	f.service = NewJobService(f.jobs, f.orders, f.technicians, catalog, parts, nil)
	f.service.newID = sequentialIDs("JOB")
	f.orders.orders["RO-1"] = &secondary.RepairOrderRecord{ID: "RO-1", BranchID: "BR-1", OrderStatusID: 2, Lifecycle: "active"}
	return f
}

func (f jobFixture) createJob(t *testing.T) *primary.Job {
	t.Helper()
	j, err := f.service.CreateJob(context.Background(), primary.CreateJobRequest{RepairOrderID: "RO-1", ServiceID: "SVC-ALIGN"})
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	return j
}

// ============================================================================
// CreateJob Tests
// ============================================================================

func TestCreateJob_UsesServiceDefaults(t *testing.T) {
	f := newTestJobService()

	j := f.createJob(t)

	if j.Name != "Wheel alignment" || j.TotalAmountCents != 45000 || j.Status != "pending" {
		t.Errorf("expected pending job named after the service at 450.00, got %+v", j)
	}
}

func TestCreateJob_InactiveOrder(t *testing.T) {
	f := newTestJobService()
	f.orders.orders["RO-1"].Lifecycle = "cancelled"

	_, err := f.service.CreateJob(context.Background(), primary.CreateJobRequest{RepairOrderID: "RO-1", ServiceID: "SVC-ALIGN"})
	if err == nil {
		t.Fatal("expected error creating a job on a cancelled order")
	}
}

// ============================================================================
// Revise Tests
// ============================================================================

func TestRevise_LinksToOriginal(t *testing.T) {
	f := newTestJobService()
	original := f.createJob(t)

	rev, err := f.service.Revise(context.Background(), original.ID, "customer added a second axle")
	if err != nil {
		t.Fatalf("Revise failed: %v", err)
	}
	if rev.OriginalJobID != original.ID || rev.RevisionCount != 1 || rev.Status != "pending" {
		t.Errorf("expected pending revision 1 of %s, got %+v", original.ID, rev)
	}
	if rev.RevisionReason != "customer added a second axle" {
		t.Errorf("expected revision reason stored, got %q", rev.RevisionReason)
	}
}

func TestRevise_OnlyLatestVersion(t *testing.T) {
	f := newTestJobService()
	ctx := context.Background()
	original := f.createJob(t)

	if _, err := f.service.Revise(ctx, original.ID, "first"); err != nil {
		t.Fatalf("Revise failed: %v", err)
	}
	if _, err := f.service.Revise(ctx, original.ID, "second"); err == nil {
		t.Fatal("expected error revising a superseded job")
	}
}

func TestRevise_CancelledJob(t *testing.T) {
	f := newTestJobService()
	ctx := context.Background()
	j := f.createJob(t)

	if err := f.service.ChangeStatus(ctx, j.ID, "cancelled"); err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if _, err := f.service.Revise(ctx, j.ID, "too late"); err == nil {
		t.Fatal("expected error revising a cancelled job")
	}
}

func TestRevisionHistory_NewestFirst(t *testing.T) {
	f := newTestJobService()
	ctx := context.Background()
	v1 := f.createJob(t)

	v2, err := f.service.Revise(ctx, v1.ID, "r1")
	if err != nil {
		t.Fatalf("Revise failed: %v", err)
	}
	v3, err := f.service.Revise(ctx, v2.ID, "r2")
	if err != nil {
		t.Fatalf("Revise failed: %v", err)
	}

	history, err := f.service.RevisionHistory(ctx, v3.ID)
	if err != nil {
		t.Fatalf("RevisionHistory failed: %v", err)
	}
	if len(history) != 2 || history[0] != v2.ID || history[1] != v1.ID {
		t.Errorf("expected [%s %s], got %v", v2.ID, v1.ID, history)
	}
	if v3.RevisionCount != 2 {
		t.Errorf("expected revision count 2, got %d", v3.RevisionCount)
	}
}

func TestDeleteJob_RevisedJobIsRestricted(t *testing.T) {
	f := newTestJobService()
	ctx := context.Background()
	original := f.createJob(t)
	if _, err := f.service.Revise(ctx, original.ID, "r1"); err != nil {
		t.Fatalf("Revise failed: %v", err)
	}

	err := f.service.DeleteJob(ctx, original.ID)
	if _, ok := secondary.AsConstraintViolation(err, secondary.ConstraintForeignKey); !ok {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

// ============================================================================
// Technician and Parts Tests
// ============================================================================

func TestJobAssignTechnician(t *testing.T) {
	f := newTestJobService()
	ctx := context.Background()
	j := f.createJob(t)
	f.technicians.technicians["TECH-1"] = availableTechnician("TECH-1", true)
	f.technicians.technicians["TECH-2"] = availableTechnician("TECH-2", false)

	if err := f.service.AssignTechnician(ctx, j.ID, "TECH-1"); err != nil {
		t.Fatalf("AssignTechnician failed: %v", err)
	}
	if err := f.service.AssignTechnician(ctx, j.ID, "TECH-1"); err == nil {
		t.Error("expected error assigning the same technician twice")
	}
	if err := f.service.AssignTechnician(ctx, j.ID, "TECH-2"); err == nil {
		t.Error("expected error assigning a busy technician")
	}

	got, err := f.service.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if len(got.TechnicianIDs) != 1 || got.TechnicianIDs[0] != "TECH-1" {
		t.Errorf("expected [TECH-1], got %v", got.TechnicianIDs)
	}
}

func TestJobAddPart_AddsToTotal(t *testing.T) {
	f := newTestJobService()
	j := f.createJob(t)

	got, err := f.service.AddPart(context.Background(), j.ID, "PART-BOLT", 4)
	if err != nil {
		t.Fatalf("AddPart failed: %v", err)
	}
	if got.TotalAmountCents != 49800 {
		t.Errorf("expected total 498.00, got %d", got.TotalAmountCents)
	}
}

func TestRecordRepair_RequiresAssignment(t *testing.T) {
	f := newTestJobService()
	ctx := context.Background()
	j := f.createJob(t)

	err := f.service.RecordRepair(ctx, primary.RecordRepairRequest{JobID: j.ID, TechnicianID: "TECH-1", Description: "aligned"})
	if err == nil {
		t.Fatal("expected error recording work by an unassigned technician")
	}

	f.technicians.technicians["TECH-1"] = availableTechnician("TECH-1", true)
	if err := f.service.AssignTechnician(ctx, j.ID, "TECH-1"); err != nil {
		t.Fatalf("AssignTechnician failed: %v", err)
	}
	if err := f.service.RecordRepair(ctx, primary.RecordRepairRequest{JobID: j.ID, TechnicianID: "TECH-1", Description: "aligned"}); err != nil {
		t.Fatalf("RecordRepair failed: %v", err)
	}
	if len(f.jobs.repairs) != 1 {
		t.Errorf("expected one repair record, got %d", len(f.jobs.repairs))
	}
}
