package primary

import (
	"context"
	"time"
)

// RepairRequestService defines the primary port for customer repair requests.
type RepairRequestService interface {
	// SubmitRequest creates a pending request with its service and part lines.
	// Line prices come from the catalog.
	SubmitRequest(ctx context.Context, req SubmitRequestRequest) (*RepairRequest, error)

	// GetRequest retrieves a request with its lines.
	GetRequest(ctx context.Context, id string) (*RepairRequest, error)

	// ListRequests retrieves requests matching the given filters.
	ListRequests(ctx context.Context, filters RepairRequestFilters) ([]*RepairRequest, error)

	// ChangeStatus moves a request to a new status. expectedVersion is the
	// row version the caller read; a stale version is a concurrency conflict.
	ChangeStatus(ctx context.Context, id string, status int, expectedVersion int64) (*RepairRequest, error)
}

// SubmitRequestRequest contains parameters for submitting a repair request.
type SubmitRequestRequest struct {
	VehicleID          string
	CustomerID         string
	BranchID           string
	Description        string
	RequestDate        time.Time
	ArrivalWindowStart *time.Time
	ServiceIDs         []string
	Parts              []PartQuantity
}

// PartQuantity is a part and how many of it.
type PartQuantity struct {
	PartID   string
	Quantity int
}

// RepairRequestFilters contains filter options for listing requests.
type RepairRequestFilters struct {
	CustomerID string
	VehicleID  string
	BranchID   string
	Status     *int
}

// RepairRequest represents a repair request at the port boundary.
type RepairRequest struct {
	ID                 string
	VehicleID          string
	CustomerID         string
	BranchID           string
	Description        string
	RequestDate        time.Time
	Status             int
	StatusName         string
	EstimatedCostCents int64
	RowVersion         int64
	ServiceIDs         []string
	Parts              []PartQuantity
	CreatedAt          time.Time
}

// EmergencyService defines the primary port for roadside emergencies.
type EmergencyService interface {
	// RaiseEmergency records a pending emergency with its response deadline.
	RaiseEmergency(ctx context.Context, req RaiseEmergencyRequest) (*Emergency, error)

	// GetEmergency retrieves an emergency by ID.
	GetEmergency(ctx context.Context, id string) (*Emergency, error)

	// ListEmergencies retrieves emergencies matching the given filters.
	ListEmergencies(ctx context.Context, status, branchID string) ([]*Emergency, error)

	// Respond accepts a pending emergency with an available technician.
	Respond(ctx context.Context, id, technicianID string) (*Emergency, error)

	// Start moves an accepted emergency to in progress.
	Start(ctx context.Context, id string) error

	// Complete completes an accepted or in-progress emergency.
	Complete(ctx context.Context, id string) error

	// Cancel cancels a live emergency.
	Cancel(ctx context.Context, id, reason string) error

	// LinkRequest links the repair request raised for an emergency.
	LinkRequest(ctx context.Context, id, requestID string) error

	// SweepExpired auto-cancels pending emergencies past their deadline and
	// returns the cancelled ids.
	SweepExpired(ctx context.Context) ([]string, error)
}

// RaiseEmergencyRequest contains parameters for raising an emergency.
type RaiseEmergencyRequest struct {
	CustomerID       string
	BranchID         string
	VehicleID        string
	IssueDescription string
	Latitude         float64
	Longitude        float64
	Address          string
}

// Emergency represents an emergency at the port boundary.
type Emergency struct {
	ID               string
	CustomerID       string
	BranchID         string
	VehicleID        string
	TechnicianID     string
	RepairRequestID  string
	IssueDescription string
	Latitude         float64
	Longitude        float64
	Status           string
	RequestedAt      time.Time
	ResponseDeadline *time.Time
	RespondedAt      *time.Time
	AutoCanceledAt   *time.Time
	CancelReason     string
}
