package secondary

import (
	"context"
	"time"
)

// RepairRequestRepository defines the secondary port for repair requests.
type RepairRequestRepository interface {
	// Create persists a request with its service and part lines in one transaction.
	Create(ctx context.Context, req *RepairRequestRecord, services []*RequestServiceRecord, parts []*RequestPartRecord) error

	// GetByID retrieves a request by ID.
	GetByID(ctx context.Context, id string) (*RepairRequestRecord, error)

	// List retrieves requests matching the given filters.
	List(ctx context.Context, filters RepairRequestFilters) ([]*RepairRequestRecord, error)

	// ListServices retrieves the service lines of a request.
	ListServices(ctx context.Context, requestID string) ([]*RequestServiceRecord, error)

	// ListParts retrieves the part lines of a request.
	ListParts(ctx context.Context, requestID string) ([]*RequestPartRecord, error)

	// UpdateStatus changes the status when the stored row version equals
	// expectedVersion and returns the new version. A stale version yields
	// ErrConcurrencyConflict.
	UpdateStatus(ctx context.Context, id string, status int, expectedVersion int64) (int64, error)

	// Delete removes a request and its lines.
	Delete(ctx context.Context, id string) error
}

// RepairRequestRecord represents a repair request as stored in persistence.
type RepairRequestRecord struct {
	ID                 string
	VehicleID          string
	CustomerID         string
	BranchID           string
	Description        string
	RequestDate        time.Time // date only
	ArrivalWindowStart *time.Time
	Status             int
	EstimatedCostCents int64
	RowVersion         int64
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// RepairRequestFilters contains filter options for querying repair requests.
type RepairRequestFilters struct {
	CustomerID string
	VehicleID  string
	BranchID   string
	Status     *int
}

// RequestServiceRecord is a service line of a repair request.
type RequestServiceRecord struct {
	ID              string
	RepairRequestID string
	ServiceID       string
	ServiceFeeCents int64
}

// RequestPartRecord is a part line of a repair request.
type RequestPartRecord struct {
	ID              string
	RepairRequestID string
	PartID          string
	Quantity        int
	UnitPriceCents  int64
}

// EmergencyRepository defines the secondary port for roadside emergency requests.
type EmergencyRepository interface {
	// Create persists a new emergency.
	Create(ctx context.Context, e *EmergencyRecord) error

	// GetByID retrieves an emergency by ID.
	GetByID(ctx context.Context, id string) (*EmergencyRecord, error)

	// List retrieves emergencies matching the given filters.
	List(ctx context.Context, filters EmergencyFilters) ([]*EmergencyRecord, error)

	// Respond assigns a technician and moves a pending emergency to accepted.
	Respond(ctx context.Context, id, technicianID string, respondedAt time.Time) error

	// LinkRequest sets the repair request raised for the emergency.
	LinkRequest(ctx context.Context, id, requestID string) error

	// UpdateStatus sets the status of an emergency.
	UpdateStatus(ctx context.Context, id, status string) error

	// Cancel cancels an emergency. auto marks a sweep cancellation.
	Cancel(ctx context.Context, id, reason string, at time.Time, auto bool) error
}

// EmergencyRecord represents an emergency as stored in persistence.
type EmergencyRecord struct {
	ID                string
	CustomerID        string
	BranchID          string
	VehicleID         string
	TechnicianID      string
	RepairRequestID   string
	IssueDescription  string
	Latitude          float64
	Longitude         float64
	Address           string
	Status            string
	RequestedAt       time.Time
	ResponseDeadline  *time.Time
	RespondedAt       *time.Time
	AutoCanceledAt    *time.Time
	CancelReason      string
	DistanceKm        float64
	EmergencyFeeCents int64
}

// EmergencyFilters contains filter options for querying emergencies.
type EmergencyFilters struct {
	Status     string
	BranchID   string
	CustomerID string
}
