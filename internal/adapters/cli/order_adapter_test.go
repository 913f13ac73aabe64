package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/garage/internal/ports/primary"
)

// mockRepairOrderService implements primary.RepairOrderService for testing
type mockRepairOrderService struct {
	orders map[string]*primary.RepairOrder
}

func (m *mockRepairOrderService) CreateWalkIn(ctx context.Context, req primary.CreateOrderRequest) (*primary.RepairOrder, error) {
	return nil, errors.New("not implemented in adapter")
}

func (m *mockRepairOrderService) CreateFromRequest(ctx context.Context, requestID string, req primary.CreateOrderRequest) (*primary.RepairOrder, error) {
	return nil, errors.New("not implemented in adapter")
}

func (m *mockRepairOrderService) GetOrder(ctx context.Context, id string) (*primary.RepairOrder, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, errors.New("repair order not found")
}

func (m *mockRepairOrderService) ListOrders(ctx context.Context, filters primary.RepairOrderFilters) ([]*primary.RepairOrder, error) {
	var out []*primary.RepairOrder
	for _, o := range m.orders {
		if filters.Lifecycle == "" || o.Lifecycle == filters.Lifecycle {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockRepairOrderService) ChangeStatus(ctx context.Context, id string, statusID int) error {
	return nil
}

func (m *mockRepairOrderService) Archive(ctx context.Context, id string) error { return nil }

func (m *mockRepairOrderService) Cancel(ctx context.Context, id, reason string) error { return nil }

func (m *mockRepairOrderService) AddService(ctx context.Context, orderID, serviceID string) (*primary.RepairOrder, error) {
	return nil, errors.New("not implemented in adapter")
}

func (m *mockRepairOrderService) AddPart(ctx context.Context, orderID, partID string, quantity int) (*primary.RepairOrder, error) {
	return nil, errors.New("not implemented in adapter")
}

// mockJobService implements primary.JobService for testing
type mockJobService struct {
	jobs    []*primary.Job
	history map[string][]string
}

func (m *mockJobService) CreateJob(ctx context.Context, req primary.CreateJobRequest) (*primary.Job, error) {
	return nil, errors.New("not implemented in adapter")
}

func (m *mockJobService) GetJob(ctx context.Context, id string) (*primary.Job, error) {
	for _, j := range m.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, errors.New("job not found")
}

func (m *mockJobService) ListJobs(ctx context.Context, orderID string) ([]*primary.Job, error) {
	return m.jobs, nil
}

func (m *mockJobService) ChangeStatus(ctx context.Context, id, status string) error { return nil }

func (m *mockJobService) Revise(ctx context.Context, id, reason string) (*primary.Job, error) {
	return nil, errors.New("not implemented in adapter")
}

func (m *mockJobService) RevisionHistory(ctx context.Context, id string) ([]string, error) {
	return m.history[id], nil
}

func (m *mockJobService) AssignTechnician(ctx context.Context, jobID, technicianID string) error {
	return nil
}

func (m *mockJobService) AddPart(ctx context.Context, jobID, partID string, quantity int) (*primary.Job, error) {
	return nil, errors.New("not implemented in adapter")
}

func (m *mockJobService) RecordRepair(ctx context.Context, req primary.RecordRepairRequest) error {
	return nil
}

func (m *mockJobService) DeleteJob(ctx context.Context, id string) error { return nil }

func newOrderFixture() (*mockRepairOrderService, *mockJobService) {
	orders := &mockRepairOrderService{orders: map[string]*primary.RepairOrder{
		"RO-1": {
			ID: "RO-1", BranchID: "BR-1", VehicleID: "VEH-1", CustomerID: "USR-1",
			OrderStatusID: 2, Lifecycle: "active", PaidStatus: "partial",
			CostCents: 125050, PaidAmountCents: 50000,
			Services: []primary.OrderService{{ServiceID: "SVC-OIL", PriceCents: 25000}},
			Parts:    []primary.OrderPart{{PartID: "PART-FILTER", Quantity: 2, UnitPriceCents: 8000}},
		},
	}}
	jobs := &mockJobService{
		jobs: []*primary.Job{
			{ID: "JOB-1", Name: "Oil change", Status: "cancelled", CreatedAt: time.Now()},
			{ID: "JOB-2", Name: "Oil change", Status: "pending", OriginalJobID: "JOB-1", RevisionCount: 1},
		},
		history: map[string][]string{"JOB-2": {"JOB-1"}},
	}
	return orders, jobs
}

func TestOrderAdapter_Show(t *testing.T) {
	orders, jobs := newOrderFixture()
	out := &bytes.Buffer{}

	if _, err := NewOrderAdapter(orders, jobs, out).Show(context.Background(), "RO-1"); err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	output := out.String()
	for _, want := range []string{
		"Repair order: RO-1",
		"in progress (active)",
		"1250.50",
		"500.00 (partial)",
		"SVC-OIL  250.00",
		"PART-FILTER  2 x 80.00",
		"JOB-2 [pending] Oil change (rev 1 of JOB-1)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestOrderAdapter_ShowUnknown(t *testing.T) {
	orders, jobs := newOrderFixture()

	if _, err := NewOrderAdapter(orders, jobs, &bytes.Buffer{}).Show(context.Background(), "RO-404"); err == nil {
		t.Fatal("expected error for unknown order")
	}
}

func TestOrderAdapter_ListEmpty(t *testing.T) {
	orders, jobs := newOrderFixture()
	out := &bytes.Buffer{}

	got, err := NewOrderAdapter(orders, jobs, out).List(context.Background(), primary.RepairOrderFilters{Lifecycle: "archived"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 0 || !strings.Contains(out.String(), "No repair orders found.") {
		t.Errorf("expected empty listing, got %d orders and:\n%s", len(got), out.String())
	}
}

func TestOrderAdapter_JobHistory(t *testing.T) {
	orders, jobs := newOrderFixture()
	out := &bytes.Buffer{}

	chain, err := NewOrderAdapter(orders, jobs, out).JobHistory(context.Background(), "JOB-2")
	if err != nil {
		t.Fatalf("JobHistory failed: %v", err)
	}
	if len(chain) != 1 || !strings.Contains(out.String(), "↳ JOB-1") {
		t.Errorf("unexpected history %v:\n%s", chain, out.String())
	}
}
