package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/garage/internal/core/repairrequest"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

func newTestRepairRequestService() (*RepairRequestServiceImpl, *mockRepairRequestRepository) {
	requests := newMockRepairRequestRepository()
	catalog := newMockServiceCatalogRepository()
	parts := newMockPartRepository()
	catalog.services["SVC-BRAKE"] = &secondary.ServiceRecord{ID: "SVC-BRAKE", PriceCents: 60000}
	parts.parts["PART-PAD"] = &secondary.PartRecord{ID: "PART-PAD", PriceCents: 15050}

	service := NewRepairRequestService(requests, catalog, parts)
	service.newID = sequentialIDs("RR")
	return service, requests
}

func submitTestRequest(t *testing.T, service *RepairRequestServiceImpl) *primary.RepairRequest {
	t.Helper()
	req, err := service.SubmitRequest(context.Background(), primary.SubmitRequestRequest{
		VehicleID:   "VEH-1",
		CustomerID:  "USR-1",
		BranchID:    "BR-1",
		Description: "squealing brakes",
		RequestDate: time.Date(2026, 4, 2, 17, 45, 0, 0, time.UTC),
		ServiceIDs:  []string{"SVC-BRAKE"},
		Parts:       []primary.PartQuantity{{PartID: "PART-PAD", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("SubmitRequest failed: %v", err)
	}
	return req
}

func TestSubmitRequest_PricesLines(t *testing.T) {
	service, _ := newTestRepairRequestService()

	req := submitTestRequest(t, service)

	if req.Status != int(repairrequest.StatusPending) {
		t.Errorf("expected Pending, got %d", req.Status)
	}
	if req.EstimatedCostCents != 90100 {
		t.Errorf("expected estimate 901.00, got %d", req.EstimatedCostCents)
	}
	if !req.RequestDate.Equal(time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected request date truncated to the day, got %v", req.RequestDate)
	}
	if len(req.ServiceIDs) != 1 || len(req.Parts) != 1 {
		t.Errorf("expected one service and one part line, got %v %v", req.ServiceIDs, req.Parts)
	}
}

func TestSubmitRequest_UnknownService(t *testing.T) {
	service, _ := newTestRepairRequestService()

	_, err := service.SubmitRequest(context.Background(), primary.SubmitRequestRequest{
		VehicleID: "VEH-1", CustomerID: "USR-1", BranchID: "BR-1",
		RequestDate: time.Now(),
		ServiceIDs:  []string{"SVC-NOPE"},
	})
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRequestChangeStatus_StaleVersion(t *testing.T) {
	service, _ := newTestRepairRequestService()
	ctx := context.Background()
	req := submitTestRequest(t, service)

	updated, err := service.ChangeStatus(ctx, req.ID, int(repairrequest.StatusAccepted), req.RowVersion)
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if updated.RowVersion == req.RowVersion {
		t.Error("expected the row version to change")
	}

	_, err = service.ChangeStatus(ctx, req.ID, int(repairrequest.StatusCancelled), req.RowVersion)
	if !errors.Is(err, secondary.ErrConcurrencyConflict) {
		t.Fatalf("expected ErrConcurrencyConflict for the stale version, got %v", err)
	}
}

func TestRequestChangeStatus_TerminalRequest(t *testing.T) {
	service, _ := newTestRepairRequestService()
	ctx := context.Background()
	req := submitTestRequest(t, service)

	rejected, err := service.ChangeStatus(ctx, req.ID, int(repairrequest.StatusRejected), req.RowVersion)
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if _, err := service.ChangeStatus(ctx, req.ID, int(repairrequest.StatusPending), rejected.RowVersion); err == nil {
		t.Fatal("expected error reopening a rejected request")
	}
}
