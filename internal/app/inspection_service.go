package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/garage/internal/core/repairorder"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// Inspection states and part conditions.
const (
	inspectionNew       = "new"
	inspectionCompleted = "completed"
)

var partConditions = map[string]bool{"good": true, "repair": true, "replace": true}

// InspectionServiceImpl implements the InspectionService interface.
type InspectionServiceImpl struct {
	inspectionRepo secondary.InspectionRepository
	orderRepo      secondary.RepairOrderRepository
	newID          func() string
	now            func() time.Time
}

// NewInspectionService creates a new InspectionService with injected dependencies.
func NewInspectionService(inspectionRepo secondary.InspectionRepository, orderRepo secondary.RepairOrderRepository) *InspectionServiceImpl {
	return &InspectionServiceImpl{
		inspectionRepo: inspectionRepo,
		orderRepo:      orderRepo,
		newID:          newID,
		now:            utcNow,
	}
}

// CreateInspection opens an inspection on an active order.
func (s *InspectionServiceImpl) CreateInspection(ctx context.Context, orderID, customerConcern string) (*primary.Inspection, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if result := repairorder.CanModify(stateOf(order)); !result.Allowed {
		return nil, result.Error()
	}

	record := &secondary.InspectionRecord{
		ID:              s.newID(),
		RepairOrderID:   orderID,
		Status:          inspectionNew,
		CustomerConcern: customerConcern,
	}
	if err := s.inspectionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create inspection: %w", err)
	}
	return s.GetInspection(ctx, record.ID)
}

// GetInspection retrieves an inspection by ID.
func (s *InspectionServiceImpl) GetInspection(ctx context.Context, id string) (*primary.Inspection, error) {
	record, err := s.inspectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return recordToInspection(record), nil
}

// ListInspections retrieves the inspections of an order.
func (s *InspectionServiceImpl) ListInspections(ctx context.Context, orderID string) ([]*primary.Inspection, error) {
	records, err := s.inspectionRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", err)
	}
	out := make([]*primary.Inspection, len(records))
	for i, r := range records {
		out[i] = recordToInspection(r)
	}
	return out, nil
}

// AssignTechnician starts the inspection with a technician.
func (s *InspectionServiceImpl) AssignTechnician(ctx context.Context, id, technicianID string) error {
	if technicianID == "" {
		return fmt.Errorf("technician is required")
	}
	return s.inspectionRepo.AssignTechnician(ctx, id, technicianID, s.now())
}

// RecordPartFinding records the condition of a part.
func (s *InspectionServiceImpl) RecordPartFinding(ctx context.Context, id, partID, condition, description string) error {
	if !partConditions[condition] {
		return fmt.Errorf("unknown part condition %q: use good, repair or replace", condition)
	}
	if err := s.requireOpen(ctx, id); err != nil {
		return err
	}
	return s.inspectionRepo.AddPartFinding(ctx, &secondary.PartInspectionRecord{
		ID:           s.newID(),
		InspectionID: id,
		PartID:       partID,
		Condition:    condition,
		Description:  description,
	})
}

// RecommendService records a service the inspection recommends.
func (s *InspectionServiceImpl) RecommendService(ctx context.Context, id, serviceID, note string) error {
	if err := s.requireOpen(ctx, id); err != nil {
		return err
	}
	return s.inspectionRepo.AddServiceFinding(ctx, &secondary.ServiceInspectionRecord{
		ID:           s.newID(),
		InspectionID: id,
		ServiceID:    serviceID,
		Note:         note,
	})
}

// Complete stores the finding and completes the inspection.
func (s *InspectionServiceImpl) Complete(ctx context.Context, id, finding string) error {
	return s.inspectionRepo.Complete(ctx, id, finding, s.now())
}

func (s *InspectionServiceImpl) requireOpen(ctx context.Context, id string) error {
	record, err := s.inspectionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record.Status == inspectionCompleted {
		return fmt.Errorf("inspection %s is completed", id)
	}
	return nil
}

func recordToInspection(r *secondary.InspectionRecord) *primary.Inspection {
	return &primary.Inspection{
		ID:              r.ID,
		RepairOrderID:   r.RepairOrderID,
		TechnicianID:    r.TechnicianID,
		Status:          r.Status,
		CustomerConcern: r.CustomerConcern,
		Finding:         r.Finding,
		StartedAt:       r.StartedAt,
		CompletedAt:     r.CompletedAt,
	}
}

// Ensure InspectionServiceImpl implements the interface.
var _ primary.InspectionService = (*InspectionServiceImpl)(nil)
