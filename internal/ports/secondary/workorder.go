package secondary

import (
	"context"
	"time"
)

// RepairOrderRepository defines the secondary port for repair orders.
type RepairOrderRepository interface {
	// Create persists a new order.
	Create(ctx context.Context, order *RepairOrderRecord) error

	// CreateFromRequest persists a new order and moves its repair request to
	// requestStatus in one transaction. The request update is conditioned on
	// expectedVersion; a mismatch returns ErrConcurrencyConflict and no order.
	CreateFromRequest(ctx context.Context, order *RepairOrderRecord, requestStatus int, expectedVersion int64) error

	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id string) (*RepairOrderRecord, error)

	// GetByRequestID retrieves the order created from a request.
	GetByRequestID(ctx context.Context, requestID string) (*RepairOrderRecord, error)

	// List retrieves orders matching the given filters.
	List(ctx context.Context, filters RepairOrderFilters) ([]*RepairOrderRecord, error)

	// UpdateStatus sets the order status; completedAt is stored when non-nil.
	UpdateStatus(ctx context.Context, id string, statusID int, completedAt *time.Time) error

	// Archive moves an active order to archived.
	Archive(ctx context.Context, id, archivedBy string, at time.Time) error

	// Cancel moves an active order to cancelled.
	Cancel(ctx context.Context, id, reason string, at time.Time) error

	// UpdatePayment stores the paid amount and paid status.
	UpdatePayment(ctx context.Context, id string, paidCents int64, paidStatus string) error

	// AddService adds a service line and adds its price to the order cost.
	AddService(ctx context.Context, line *RepairOrderServiceRecord) error

	// AddPart adds a part line and adds its amount to the order cost. When
	// stockBranchID is set the quantity is taken from that branch's stock in
	// the same transaction.
	AddPart(ctx context.Context, line *RepairOrderPartRecord, stockBranchID string) error

	// ListServices retrieves the service lines of an order.
	ListServices(ctx context.Context, orderID string) ([]*RepairOrderServiceRecord, error)

	// ListParts retrieves the part lines of an order.
	ListParts(ctx context.Context, orderID string) ([]*RepairOrderPartRecord, error)

	// OrderStatusIDs returns the ids of every known order status.
	OrderStatusIDs(ctx context.Context) ([]int, error)

	// CountOpenJobs returns the jobs of an order neither completed nor cancelled.
	CountOpenJobs(ctx context.Context, orderID string) (int, error)

	// Delete removes an order and everything it owns.
	Delete(ctx context.Context, id string) error
}

// RepairOrderRecord represents a repair order as stored in persistence.
type RepairOrderRecord struct {
	ID                      string
	BranchID                string
	VehicleID               string
	CustomerID              string
	OrderStatusID           int
	LabelID                 int64 // 0 means none
	RepairRequestID         string
	ReceiveDate             time.Time
	EstimatedCompletionDate *time.Time
	CompletionDate          *time.Time
	EstimatedAmountCents    int64
	CostCents               int64
	PaidAmountCents         int64
	PaidStatus              string
	Odometer                int
	Note                    string
	Lifecycle               string
	ArchivedAt              *time.Time
	ArchivedBy              string
	CancelledAt             *time.Time
	CancelReason            string
	CreatedAt               time.Time
}

// RepairOrderFilters contains filter options for querying repair orders.
type RepairOrderFilters struct {
	BranchID   string
	CustomerID string
	VehicleID  string
	Lifecycle  string
}

// RepairOrderServiceRecord is a service line of an order.
type RepairOrderServiceRecord struct {
	ID            string
	RepairOrderID string
	ServiceID     string
	PriceCents    int64
}

// RepairOrderPartRecord is a part line of an order.
type RepairOrderPartRecord struct {
	ID             string
	RepairOrderID  string
	PartID         string
	Quantity       int
	UnitPriceCents int64
}

// JobRepository defines the secondary port for jobs.
type JobRepository interface {
	// Create persists a new job or job revision.
	Create(ctx context.Context, job *JobRecord) error

	// GetByID retrieves a job by ID.
	GetByID(ctx context.Context, id string) (*JobRecord, error)

	// ListByOrder retrieves the jobs of an order.
	ListByOrder(ctx context.Context, orderID string) ([]*JobRecord, error)

	// UpdateStatus sets the status of a job.
	UpdateStatus(ctx context.Context, id, status string) error

	// GetRevisionOf returns the ID of the job that revises jobID, or "" if none.
	GetRevisionOf(ctx context.Context, jobID string) (string, error)

	// OriginalLinks returns original_job_id for every revised job of an order.
	OriginalLinks(ctx context.Context, orderID string) (map[string]string, error)

	// AssignTechnician links a technician to a job.
	AssignTechnician(ctx context.Context, jobID, technicianID string) error

	// IsAssigned reports whether a technician is linked to a job.
	IsAssigned(ctx context.Context, jobID, technicianID string) (bool, error)

	// ListTechnicianIDs retrieves the technicians of a job.
	ListTechnicianIDs(ctx context.Context, jobID string) ([]string, error)

	// AddPart adds a part line and adds its amount to the job total.
	AddPart(ctx context.Context, part *JobPartRecord) error

	// RecordRepair persists a repair record for a job.
	RecordRepair(ctx context.Context, repair *RepairRecord) error

	// Delete removes a job. A revision referencing it blocks the delete.
	Delete(ctx context.Context, id string) error
}

// JobRecord represents a job as stored in persistence.
type JobRecord struct {
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
	Deadline         *time.Time
	CreatedAt        time.Time
}

// JobPartRecord is a part used by a job.
type JobPartRecord struct {
	ID             string
	JobID          string
	PartID         string
	Quantity       int
	UnitPriceCents int64
}

// RepairRecord records work a technician performed on a job.
type RepairRecord struct {
	ID               string
	JobID            string
	TechnicianID     string
	Description      string
	Notes            string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	ActualMinutes    int
	EstimatedMinutes int
}

// InspectionRepository defines the secondary port for vehicle inspections.
type InspectionRepository interface {
	// Create persists a new inspection.
	Create(ctx context.Context, inspection *InspectionRecord) error

	// GetByID retrieves an inspection by ID.
	GetByID(ctx context.Context, id string) (*InspectionRecord, error)

	// ListByOrder retrieves the inspections of an order.
	ListByOrder(ctx context.Context, orderID string) ([]*InspectionRecord, error)

	// AssignTechnician sets the inspecting technician and starts the inspection.
	AssignTechnician(ctx context.Context, id, technicianID string, at time.Time) error

	// AddPartFinding records the condition of a part.
	AddPartFinding(ctx context.Context, finding *PartInspectionRecord) error

	// AddServiceFinding records a recommended service.
	AddServiceFinding(ctx context.Context, finding *ServiceInspectionRecord) error

	// Complete stores the finding and completes the inspection.
	Complete(ctx context.Context, id, finding string, at time.Time) error
}

// InspectionRecord represents an inspection as stored in persistence.
type InspectionRecord struct {
	ID              string
	RepairOrderID   string
	TechnicianID    string
	Status          string
	CustomerConcern string
	Finding         string
	Note            string
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

// PartInspectionRecord is the inspected condition of a part.
type PartInspectionRecord struct {
	ID           string
	InspectionID string
	PartID       string
	Condition    string
	Description  string
}

// ServiceInspectionRecord is a service recommended by an inspection.
type ServiceInspectionRecord struct {
	ID           string
	InspectionID string
	ServiceID    string
	Note         string
}
