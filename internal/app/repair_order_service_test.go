package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/garage/internal/core/repairorder"
	"github.com/example/garage/internal/core/repairrequest"
	"github.com/example/garage/internal/ctxutil"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

var orderNow = time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)

type orderFixture struct {
	service  *RepairOrderServiceImpl
	orders   *mockRepairOrderRepository
	requests *mockRepairRequestRepository
	catalog  *mockServiceCatalogRepository
	parts    *mockPartRepository
}

func newTestRepairOrderService() orderFixture {
	f := orderFixture{
		orders:   newMockRepairOrderRepository(),
		requests: newMockRepairRequestRepository(),
		catalog:  newMockServiceCatalogRepository(),
		parts:    newMockPartRepository(),
	}
	f.orders.requests = f.requests
	f.orders.stock = f.parts
	f.service = NewRepairOrderService(f.orders, f.requests, f.catalog, f.parts, nil)
	f.service.newID = sequentialIDs("RO")
	f.service.now = fixedClock(orderNow)

	f.catalog.services["SVC-OIL"] = &secondary.ServiceRecord{ID: "SVC-OIL", Name: "Oil change", PriceCents: 25000}
	f.parts.parts["PART-FILTER"] = &secondary.PartRecord{ID: "PART-FILTER", Name: "Oil filter", PriceCents: 8000}
	return f
}

func (f orderFixture) seedRequest(id string, status repairrequest.Status) {
	f.requests.requests[id] = &secondary.RepairRequestRecord{
		ID:                 id,
		VehicleID:          "VEH-1",
		CustomerID:         "USR-1",
		BranchID:           "BR-1",
		Description:        "engine knocking",
		Status:             int(status),
		EstimatedCostCents: 40000,
		RowVersion:         3,
	}
}

func (f orderFixture) walkIn(t *testing.T) *primary.RepairOrder {
	t.Helper()
	order, err := f.service.CreateWalkIn(context.Background(), primary.CreateOrderRequest{
		BranchID: "BR-1", VehicleID: "VEH-1", CustomerID: "USR-1",
	})
	if err != nil {
		t.Fatalf("CreateWalkIn failed: %v", err)
	}
	return order
}

// ============================================================================
// CreateFromRequest Tests
// ============================================================================

func TestCreateFromRequest_MovesRequestInProgress(t *testing.T) {
	f := newTestRepairOrderService()
	f.seedRequest("RR-1", repairrequest.StatusAccepted)

	order, err := f.service.CreateFromRequest(context.Background(), "RR-1", primary.CreateOrderRequest{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if order.RepairRequestID != "RR-1" {
		t.Errorf("expected order linked to RR-1, got %q", order.RepairRequestID)
	}
	if order.BranchID != "BR-1" || order.VehicleID != "VEH-1" || order.CustomerID != "USR-1" {
		t.Errorf("expected order to inherit the request's branch, vehicle and customer, got %+v", order)
	}
	if order.OrderStatusID != repairorder.OrderStatusPending || order.Lifecycle != "active" {
		t.Errorf("expected pending active order, got status %d lifecycle %q", order.OrderStatusID, order.Lifecycle)
	}

	req := f.requests.requests["RR-1"]
	if repairrequest.Status(req.Status) != repairrequest.StatusInProgress {
		t.Errorf("expected request InProgress, got %s", repairrequest.Status(req.Status))
	}
	if req.RowVersion != 4 {
		t.Errorf("expected request version bumped to 4, got %d", req.RowVersion)
	}
}

func TestCreateFromRequest_OnlyOnce(t *testing.T) {
	f := newTestRepairOrderService()
	f.seedRequest("RR-1", repairrequest.StatusPending)
	ctx := context.Background()

	if _, err := f.service.CreateFromRequest(ctx, "RR-1", primary.CreateOrderRequest{}); err != nil {
		t.Fatalf("first conversion failed: %v", err)
	}
	if _, err := f.service.CreateFromRequest(ctx, "RR-1", primary.CreateOrderRequest{}); err == nil {
		t.Fatal("expected second conversion of the same request to fail")
	}
	if len(f.orders.orders) != 1 {
		t.Errorf("expected exactly one order, got %d", len(f.orders.orders))
	}
}

func TestCreateFromRequest_TerminalRequest(t *testing.T) {
	f := newTestRepairOrderService()
	f.seedRequest("RR-1", repairrequest.StatusCancelled)

	if _, err := f.service.CreateFromRequest(context.Background(), "RR-1", primary.CreateOrderRequest{}); err == nil {
		t.Fatal("expected error converting a cancelled request")
	}
	if len(f.orders.orders) != 0 {
		t.Error("no order should be created for a cancelled request")
	}
}

func TestCreateFromRequest_UnknownRequest(t *testing.T) {
	f := newTestRepairOrderService()

	_, err := f.service.CreateFromRequest(context.Background(), "RR-404", primary.CreateOrderRequest{})
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// staleRequests serves a request as it was one version ago, as if another
// writer updated it between the read and the conversion.
type staleRequests struct {
	*mockRepairRequestRepository
}

func (s staleRequests) GetByID(ctx context.Context, id string) (*secondary.RepairRequestRecord, error) {
	r, err := s.mockRepairRequestRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stale := *r
	stale.RowVersion--
	return &stale, nil
}

func TestCreateFromRequest_StaleVersionLeavesNoOrder(t *testing.T) {
	f := newTestRepairOrderService()
	f.seedRequest("RR-1", repairrequest.StatusAccepted)
	f.service.requestRepo = staleRequests{f.requests}

	_, err := f.service.CreateFromRequest(context.Background(), "RR-1", primary.CreateOrderRequest{})
	if !errors.Is(err, secondary.ErrConcurrencyConflict) {
		t.Fatalf("expected ErrConcurrencyConflict, got %v", err)
	}
	if len(f.orders.orders) != 0 {
		t.Errorf("expected no order after a conflict, got %d", len(f.orders.orders))
	}
	req := f.requests.requests["RR-1"]
	if repairrequest.Status(req.Status) != repairrequest.StatusAccepted || req.RowVersion != 3 {
		t.Errorf("expected request untouched, got status %s version %d", repairrequest.Status(req.Status), req.RowVersion)
	}
}

// ============================================================================
// Status and Lifecycle Tests
// ============================================================================

func TestOrderChangeStatus_CompleteWithOpenJobs(t *testing.T) {
	f := newTestRepairOrderService()
	order := f.walkIn(t)
	f.orders.openJobs[order.ID] = 2

	if err := f.service.ChangeStatus(context.Background(), order.ID, repairorder.OrderStatusCompleted); err == nil {
		t.Fatal("expected error completing an order with open jobs")
	}

	f.orders.openJobs[order.ID] = 0
	if err := f.service.ChangeStatus(context.Background(), order.ID, repairorder.OrderStatusCompleted); err != nil {
		t.Fatalf("expected completion once jobs are closed, got %v", err)
	}
	if got := f.orders.orders[order.ID]; got.CompletionDate == nil || !got.CompletionDate.Equal(orderNow) {
		t.Errorf("expected completion date %v, got %v", orderNow, got.CompletionDate)
	}
}

func TestOrderChangeStatus_UnknownStatus(t *testing.T) {
	f := newTestRepairOrderService()
	order := f.walkIn(t)

	if err := f.service.ChangeStatus(context.Background(), order.ID, 42); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestArchive_RequiresCompletion(t *testing.T) {
	f := newTestRepairOrderService()
	order := f.walkIn(t)
	ctx := ctxutil.WithActorID(context.Background(), "USR-ADMIN")

	if err := f.service.Archive(ctx, order.ID); err == nil {
		t.Fatal("expected error archiving a pending order")
	}
	if err := f.service.ChangeStatus(ctx, order.ID, repairorder.OrderStatusCompleted); err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if err := f.service.Archive(ctx, order.ID); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	got := f.orders.orders[order.ID]
	if got.Lifecycle != "archived" || got.ArchivedBy != "USR-ADMIN" {
		t.Errorf("expected archived by USR-ADMIN, got %q by %q", got.Lifecycle, got.ArchivedBy)
	}
	if err := f.service.Cancel(ctx, order.ID, "too late"); err == nil {
		t.Error("expected error cancelling an archived order")
	}
}

func TestCancel_BlocksFurtherWork(t *testing.T) {
	f := newTestRepairOrderService()
	order := f.walkIn(t)
	ctx := context.Background()

	if err := f.service.Cancel(ctx, order.ID, "customer withdrew"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, err := f.service.AddService(ctx, order.ID, "SVC-OIL"); err == nil {
		t.Error("expected error adding a service to a cancelled order")
	}
}

// ============================================================================
// Line Tests
// ============================================================================

func TestAddService_CatalogPrice(t *testing.T) {
	f := newTestRepairOrderService()
	order := f.walkIn(t)

	got, err := f.service.AddService(context.Background(), order.ID, "SVC-OIL")
	if err != nil {
		t.Fatalf("AddService failed: %v", err)
	}
	if got.CostCents != 25000 || len(got.Services) != 1 || got.Services[0].PriceCents != 25000 {
		t.Errorf("expected one service line at 250.00, got cost %d lines %+v", got.CostCents, got.Services)
	}
}

func TestAddPart_TakesBranchStock(t *testing.T) {
	f := newTestRepairOrderService()
	order := f.walkIn(t)
	f.parts.inventories["PART-FILTER/BR-1"] = &secondary.InventoryRecord{PartID: "PART-FILTER", BranchID: "BR-1", Stock: 5}

	got, err := f.service.AddPart(context.Background(), order.ID, "PART-FILTER", 2)
	if err != nil {
		t.Fatalf("AddPart failed: %v", err)
	}
	if got.CostCents != 16000 {
		t.Errorf("expected cost 160.00, got %d", got.CostCents)
	}
	if stock := f.parts.inventories["PART-FILTER/BR-1"].Stock; stock != 3 {
		t.Errorf("expected stock 3 after taking 2, got %d", stock)
	}
}

func TestAddPart_InsufficientStock(t *testing.T) {
	f := newTestRepairOrderService()
	order := f.walkIn(t)
	f.parts.inventories["PART-FILTER/BR-1"] = &secondary.InventoryRecord{PartID: "PART-FILTER", BranchID: "BR-1", Stock: 1}

	if _, err := f.service.AddPart(context.Background(), order.ID, "PART-FILTER", 2); err == nil {
		t.Fatal("expected error when stock would go negative")
	}
	if len(f.orders.parts[order.ID]) != 0 {
		t.Error("no part line should be added without stock")
	}
}

func TestAddPart_UnstockedBranch(t *testing.T) {
	f := newTestRepairOrderService()
	order := f.walkIn(t)

	got, err := f.service.AddPart(context.Background(), order.ID, "PART-FILTER", 1)
	if err != nil {
		t.Fatalf("expected part added without a stock row, got %v", err)
	}
	if len(got.Parts) != 1 {
		t.Errorf("expected one part line, got %d", len(got.Parts))
	}
}

// staleStock reports more stock than the branch holds, as if another order
// took parts after the read.
type staleStock struct {
	*mockPartRepository
	extra int
}

func (s staleStock) GetInventory(ctx context.Context, partID, branchID string) (*secondary.InventoryRecord, error) {
	inv, err := s.mockPartRepository.GetInventory(ctx, partID, branchID)
	if err != nil {
		return nil, err
	}
	stale := *inv
	stale.Stock += s.extra
	return &stale, nil
}

func TestAddPart_StockTakenConcurrently(t *testing.T) {
	f := newTestRepairOrderService()
	order := f.walkIn(t)
	f.parts.inventories["PART-FILTER/BR-1"] = &secondary.InventoryRecord{PartID: "PART-FILTER", BranchID: "BR-1", Stock: 1}
	f.service.partRepo = staleStock{mockPartRepository: f.parts, extra: 4}

	_, err := f.service.AddPart(context.Background(), order.ID, "PART-FILTER", 2)
	if _, ok := secondary.AsConstraintViolation(err, secondary.ConstraintCheck); !ok {
		t.Fatalf("expected check violation, got %v", err)
	}
	if len(f.orders.parts[order.ID]) != 0 {
		t.Error("no part line should be added when the stock take fails")
	}
	if cost := f.orders.orders[order.ID].CostCents; cost != 0 {
		t.Errorf("expected cost unchanged, got %d", cost)
	}
	if stock := f.parts.inventories["PART-FILTER/BR-1"].Stock; stock != 1 {
		t.Errorf("expected stock unchanged at 1, got %d", stock)
	}
}

func TestAddPart_AmountOutOfRange(t *testing.T) {
	f := newTestRepairOrderService()
	order := f.walkIn(t)
	f.parts.parts["PART-ENGINE"] = &secondary.PartRecord{ID: "PART-ENGINE", Name: "Engine", PriceCents: 1 << 62}

	if _, err := f.service.AddPart(context.Background(), order.ID, "PART-ENGINE", 4); err == nil {
		t.Fatal("expected error for a line amount past decimal(18,2)")
	}
	if len(f.orders.parts[order.ID]) != 0 {
		t.Error("no part line should be added for an out-of-range amount")
	}
}
