package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/garage/internal/core/money"
	"github.com/example/garage/internal/core/repairrequest"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// RepairRequestServiceImpl implements the RepairRequestService interface.
type RepairRequestServiceImpl struct {
	requestRepo        secondary.RepairRequestRepository
	serviceCatalogRepo secondary.ServiceCatalogRepository
	partRepo           secondary.PartRepository
	newID              func() string
}

// NewRepairRequestService creates a new RepairRequestService with injected dependencies.
func NewRepairRequestService(
	requestRepo secondary.RepairRequestRepository,
	serviceCatalogRepo secondary.ServiceCatalogRepository,
	partRepo secondary.PartRepository,
) *RepairRequestServiceImpl {
	return &RepairRequestServiceImpl{
		requestRepo:        requestRepo,
		serviceCatalogRepo: serviceCatalogRepo,
		partRepo:           partRepo,
		newID:              newID,
	}
}

// SubmitRequest creates a pending request with its service and part lines.
func (s *RepairRequestServiceImpl) SubmitRequest(ctx context.Context, req primary.SubmitRequestRequest) (*primary.RepairRequest, error) {
	if req.VehicleID == "" || req.CustomerID == "" || req.BranchID == "" {
		return nil, fmt.Errorf("vehicle, customer and branch are required")
	}
	if req.RequestDate.IsZero() {
		return nil, fmt.Errorf("request date is required")
	}

	id := s.newID()
	var estimate int64

	services := make([]*secondary.RequestServiceRecord, 0, len(req.ServiceIDs))
	for _, serviceID := range req.ServiceIDs {
		svc, err := s.serviceCatalogRepo.GetService(ctx, serviceID)
		if err != nil {
			return nil, fmt.Errorf("failed to price service %s: %w", serviceID, err)
		}
		services = append(services, &secondary.RequestServiceRecord{
			ID:              s.newID(),
			RepairRequestID: id,
			ServiceID:       serviceID,
			ServiceFeeCents: svc.PriceCents,
		})
		if estimate, err = money.Add(estimate, svc.PriceCents); err != nil {
			return nil, fmt.Errorf("failed to estimate request: %w", err)
		}
	}

	parts := make([]*secondary.RequestPartRecord, 0, len(req.Parts))
	for _, pq := range req.Parts {
		if pq.Quantity <= 0 {
			return nil, fmt.Errorf("quantity of part %s must be positive", pq.PartID)
		}
		part, err := s.partRepo.GetPart(ctx, pq.PartID)
		if err != nil {
			return nil, fmt.Errorf("failed to price part %s: %w", pq.PartID, err)
		}
		parts = append(parts, &secondary.RequestPartRecord{
			ID:              s.newID(),
			RepairRequestID: id,
			PartID:          pq.PartID,
			Quantity:        pq.Quantity,
			UnitPriceCents:  part.PriceCents,
		})
		amount, err := money.Multiply(part.PriceCents, pq.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to price part %s: %w", pq.PartID, err)
		}
		if estimate, err = money.Add(estimate, amount); err != nil {
			return nil, fmt.Errorf("failed to estimate request: %w", err)
		}
	}

	y, m, d := req.RequestDate.Date()
	record := &secondary.RepairRequestRecord{
		ID:                 id,
		VehicleID:          req.VehicleID,
		CustomerID:         req.CustomerID,
		BranchID:           req.BranchID,
		Description:        req.Description,
		RequestDate:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		ArrivalWindowStart: req.ArrivalWindowStart,
		Status:             int(repairrequest.InitialStatus()),
		EstimatedCostCents: estimate,
	}
	if err := s.requestRepo.Create(ctx, record, services, parts); err != nil {
		return nil, fmt.Errorf("failed to submit repair request: %w", err)
	}
	return s.GetRequest(ctx, id)
}

// GetRequest retrieves a request with its lines.
func (s *RepairRequestServiceImpl) GetRequest(ctx context.Context, id string) (*primary.RepairRequest, error) {
	record, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := recordToRepairRequest(record)

	services, err := s.requestRepo.ListServices(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load request services: %w", err)
	}
	for _, l := range services {
		out.ServiceIDs = append(out.ServiceIDs, l.ServiceID)
	}

	parts, err := s.requestRepo.ListParts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load request parts: %w", err)
	}
	for _, l := range parts {
		out.Parts = append(out.Parts, primary.PartQuantity{PartID: l.PartID, Quantity: l.Quantity})
	}
	return out, nil
}

// ListRequests retrieves requests matching the given filters.
func (s *RepairRequestServiceImpl) ListRequests(ctx context.Context, filters primary.RepairRequestFilters) ([]*primary.RepairRequest, error) {
	records, err := s.requestRepo.List(ctx, secondary.RepairRequestFilters{
		CustomerID: filters.CustomerID,
		VehicleID:  filters.VehicleID,
		BranchID:   filters.BranchID,
		Status:     filters.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list repair requests: %w", err)
	}
	requests := make([]*primary.RepairRequest, len(records))
	for i, r := range records {
		requests[i] = recordToRepairRequest(r)
	}
	return requests, nil
}

// ChangeStatus moves a request to a new status when expectedVersion is current.
func (s *RepairRequestServiceImpl) ChangeStatus(ctx context.Context, id string, status int, expectedVersion int64) (*primary.RepairRequest, error) {
	record, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.RowVersion != expectedVersion {
		return nil, fmt.Errorf("repair request %s is at version %d, not %d: %w",
			id, record.RowVersion, expectedVersion, secondary.ErrConcurrencyConflict)
	}

	// Guard: allowed transitions only
	guardCtx := repairrequest.TransitionContext{
		RequestID: id,
		From:      repairrequest.Status(record.Status),
		To:        repairrequest.Status(status),
	}
	if result := repairrequest.CanTransition(guardCtx); !result.Allowed {
		return nil, result.Error()
	}

	if _, err := s.requestRepo.UpdateStatus(ctx, id, status, expectedVersion); err != nil {
		return nil, fmt.Errorf("failed to change repair request status: %w", err)
	}
	return s.GetRequest(ctx, id)
}

func recordToRepairRequest(r *secondary.RepairRequestRecord) *primary.RepairRequest {
	return &primary.RepairRequest{
		ID:                 r.ID,
		VehicleID:          r.VehicleID,
		CustomerID:         r.CustomerID,
		BranchID:           r.BranchID,
		Description:        r.Description,
		RequestDate:        r.RequestDate,
		Status:             r.Status,
		StatusName:         repairrequest.Status(r.Status).String(),
		EstimatedCostCents: r.EstimatedCostCents,
		RowVersion:         r.RowVersion,
		CreatedAt:          r.CreatedAt,
	}
}

// Ensure RepairRequestServiceImpl implements the interface.
var _ primary.RepairRequestService = (*RepairRequestServiceImpl)(nil)
