package primary

import (
	"context"
	"time"
)

// RepairOrderService defines the primary port for repair orders.
type RepairOrderService interface {
	// CreateWalkIn opens an order without a prior request.
	CreateWalkIn(ctx context.Context, req CreateOrderRequest) (*RepairOrder, error)

	// CreateFromRequest opens the order for an active repair request and
	// moves the request to in progress. A request becomes at most one order.
	CreateFromRequest(ctx context.Context, requestID string, req CreateOrderRequest) (*RepairOrder, error)

	// GetOrder retrieves an order with its lines.
	GetOrder(ctx context.Context, id string) (*RepairOrder, error)

	// ListOrders retrieves orders matching the given filters.
	ListOrders(ctx context.Context, filters RepairOrderFilters) ([]*RepairOrder, error)

	// ChangeStatus sets the order status. Completing requires every job closed.
	ChangeStatus(ctx context.Context, id string, statusID int) error

	// Archive archives a completed order.
	Archive(ctx context.Context, id string) error

	// Cancel cancels an order that is not completed.
	Cancel(ctx context.Context, id, reason string) error

	// AddService adds a catalog service to the order at its catalog price.
	AddService(ctx context.Context, orderID, serviceID string) (*RepairOrder, error)

	// AddPart adds parts to the order at catalog price and takes them from
	// the branch stock when the branch keeps one.
	AddPart(ctx context.Context, orderID, partID string, quantity int) (*RepairOrder, error)
}

// CreateOrderRequest contains parameters for opening an order.
// Branch, vehicle and customer default to the request's when converting.
type CreateOrderRequest struct {
	BranchID                string
	VehicleID               string
	CustomerID              string
	Odometer                int
	Note                    string
	EstimatedCompletionDate *time.Time
}

// RepairOrderFilters contains filter options for listing orders.
type RepairOrderFilters struct {
	BranchID   string
	CustomerID string
	VehicleID  string
	Lifecycle  string
}

// RepairOrder represents a repair order at the port boundary.
type RepairOrder struct {
	ID              string
	BranchID        string
	VehicleID       string
	CustomerID      string
	RepairRequestID string
	OrderStatusID   int
	Lifecycle       string
	PaidStatus      string
	CostCents       int64
	PaidAmountCents int64
	Odometer        int
	Note            string
	ReceiveDate     time.Time
	CompletionDate  *time.Time
	ArchivedAt      *time.Time
	CancelledAt     *time.Time
	CancelReason    string
	Services        []OrderService
	Parts           []OrderPart
}

// OrderService is a service line of an order.
type OrderService struct {
	ServiceID  string
	PriceCents int64
}

// OrderPart is a part line of an order.
type OrderPart struct {
	PartID         string
	Quantity       int
	UnitPriceCents int64
}

// JobService defines the primary port for jobs and their revisions.
type JobService interface {
	// CreateJob creates a job for a service on an active order.
	CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error)

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, id string) (*Job, error)

	// ListJobs retrieves the jobs of an order.
	ListJobs(ctx context.Context, orderID string) ([]*Job, error)

	// ChangeStatus moves a job to a new status.
	ChangeStatus(ctx context.Context, id, status string) error

	// Revise creates the next version of a job. Only the latest version of a
	// chain can be revised.
	Revise(ctx context.Context, id, reason string) (*Job, error)

	// RevisionHistory returns the ids of every earlier version of a job, newest first.
	RevisionHistory(ctx context.Context, id string) ([]string, error)

	// AssignTechnician assigns an available technician to an open job.
	AssignTechnician(ctx context.Context, jobID, technicianID string) error

	// AddPart adds parts to a job at catalog price.
	AddPart(ctx context.Context, jobID, partID string, quantity int) (*Job, error)

	// RecordRepair records work an assigned technician performed.
	RecordRepair(ctx context.Context, req RecordRepairRequest) error

	// DeleteJob deletes a job no revision refers to.
	DeleteJob(ctx context.Context, id string) error
}

// CreateJobRequest contains parameters for creating a job.
type CreateJobRequest struct {
	RepairOrderID string
	ServiceID     string
	Name          string
	Note          string
	Deadline      *time.Time
}

// RecordRepairRequest contains parameters for recording repair work.
type RecordRepairRequest struct {
	JobID            string
	TechnicianID     string
	Description      string
	Notes            string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	EstimatedMinutes int
}

// Job represents a job at the port boundary.
type Job struct {
	ID               string
	RepairOrderID    string
	ServiceID        string
	OriginalJobID    string
	Name             string
	Note             string
	Status           string
	TotalAmountCents int64
	RevisionCount    int
	RevisionReason   string
	TechnicianIDs    []string
	CreatedAt        time.Time
}

// InspectionService defines the primary port for vehicle inspections.
type InspectionService interface {
	// CreateInspection opens an inspection on an active order.
	CreateInspection(ctx context.Context, orderID, customerConcern string) (*Inspection, error)

	// GetInspection retrieves an inspection by ID.
	GetInspection(ctx context.Context, id string) (*Inspection, error)

	// ListInspections retrieves the inspections of an order.
	ListInspections(ctx context.Context, orderID string) ([]*Inspection, error)

	// AssignTechnician starts the inspection with a technician.
	AssignTechnician(ctx context.Context, id, technicianID string) error

	// RecordPartFinding records the condition of a part: good, repair or replace.
	RecordPartFinding(ctx context.Context, id, partID, condition, description string) error

	// RecommendService records a service the inspection recommends.
	RecommendService(ctx context.Context, id, serviceID, note string) error

	// Complete stores the finding and completes the inspection.
	Complete(ctx context.Context, id, finding string) error
}

// Inspection represents an inspection at the port boundary.
type Inspection struct {
	ID              string
	RepairOrderID   string
	TechnicianID    string
	Status          string
	CustomerConcern string
	Finding         string
	StartedAt       *time.Time
	CompletedAt     *time.Time
}
