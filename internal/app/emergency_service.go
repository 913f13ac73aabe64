package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/garage/internal/core/emergency"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// autoCancelReason is stored on emergencies the sweeper cancels.
const autoCancelReason = "no technician responded before the deadline"

// EmergencyServiceImpl implements the EmergencyService interface.
type EmergencyServiceImpl struct {
	emergencyRepo  secondary.EmergencyRepository
	technicianRepo secondary.TechnicianRepository
	responseSLA    time.Duration
	logger         *zap.Logger
	newID          func() string
	now            func() time.Time
}

// NewEmergencyService creates a new EmergencyService with injected dependencies.
// A zero responseSLA uses the default.
func NewEmergencyService(
	emergencyRepo secondary.EmergencyRepository,
	technicianRepo secondary.TechnicianRepository,
	responseSLA time.Duration,
	logger *zap.Logger,
) *EmergencyServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmergencyServiceImpl{
		emergencyRepo:  emergencyRepo,
		technicianRepo: technicianRepo,
		responseSLA:    responseSLA,
		logger:         logger,
		newID:          newID,
		now:            utcNow,
	}
}

// RaiseEmergency records a pending emergency with its response deadline.
func (s *EmergencyServiceImpl) RaiseEmergency(ctx context.Context, req primary.RaiseEmergencyRequest) (*primary.Emergency, error) {
	if req.CustomerID == "" || req.BranchID == "" || req.VehicleID == "" {
		return nil, fmt.Errorf("customer, branch and vehicle are required")
	}

	requestedAt := s.now()
	deadline := emergency.ResponseDeadline(requestedAt, s.responseSLA)
	record := &secondary.EmergencyRecord{
		ID:               s.newID(),
		CustomerID:       req.CustomerID,
		BranchID:         req.BranchID,
		VehicleID:        req.VehicleID,
		IssueDescription: req.IssueDescription,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Address:          req.Address,
		Status:           string(emergency.StatusPending),
		RequestedAt:      requestedAt,
		ResponseDeadline: &deadline,
	}
	if err := s.emergencyRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to raise emergency: %w", err)
	}

	s.logger.Info("emergency raised",
		zap.String("emergency_id", record.ID),
		zap.String("branch_id", record.BranchID),
		zap.Time("deadline", deadline),
	)
	return s.GetEmergency(ctx, record.ID)
}

// GetEmergency retrieves an emergency by ID.
func (s *EmergencyServiceImpl) GetEmergency(ctx context.Context, id string) (*primary.Emergency, error) {
	record, err := s.emergencyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return recordToEmergency(record), nil
}

// ListEmergencies retrieves emergencies matching the given filters.
func (s *EmergencyServiceImpl) ListEmergencies(ctx context.Context, status, branchID string) ([]*primary.Emergency, error) {
	records, err := s.emergencyRepo.List(ctx, secondary.EmergencyFilters{Status: status, BranchID: branchID})
	if err != nil {
		return nil, fmt.Errorf("failed to list emergencies: %w", err)
	}
	out := make([]*primary.Emergency, len(records))
	for i, r := range records {
		out[i] = recordToEmergency(r)
	}
	return out, nil
}

// Respond accepts a pending emergency with an available technician.
func (s *EmergencyServiceImpl) Respond(ctx context.Context, id, technicianID string) (*primary.Emergency, error) {
	record, err := s.emergencyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	available := false
	if technicianID != "" {
		tech, err := s.technicianRepo.GetByID(ctx, technicianID)
		if err != nil {
			return nil, fmt.Errorf("failed to load technician: %w", err)
		}
		available = tech.IsAvailable
	}

	now := s.now()
	// Guard: pending, within the deadline, technician available
	guardCtx := emergency.RespondContext{
		Emergency:           snapshotOf(record),
		TechnicianID:        technicianID,
		TechnicianAvailable: available,
		Now:                 now,
	}
	if result := emergency.CanRespond(guardCtx); !result.Allowed {
		return nil, result.Error()
	}

	if err := s.emergencyRepo.Respond(ctx, id, technicianID, now); err != nil {
		return nil, err
	}
	s.logger.Info("emergency accepted", zap.String("emergency_id", id), zap.String("technician_id", technicianID))
	return s.GetEmergency(ctx, id)
}

// Start moves an accepted emergency to in progress.
func (s *EmergencyServiceImpl) Start(ctx context.Context, id string) error {
	record, err := s.emergencyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if result := emergency.CanStart(snapshotOf(record)); !result.Allowed {
		return result.Error()
	}
	return s.emergencyRepo.UpdateStatus(ctx, id, string(emergency.StatusInProgress))
}

// Complete completes an accepted or in-progress emergency.
func (s *EmergencyServiceImpl) Complete(ctx context.Context, id string) error {
	record, err := s.emergencyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if result := emergency.CanComplete(snapshotOf(record)); !result.Allowed {
		return result.Error()
	}
	return s.emergencyRepo.UpdateStatus(ctx, id, string(emergency.StatusCompleted))
}

// Cancel cancels a live emergency.
func (s *EmergencyServiceImpl) Cancel(ctx context.Context, id, reason string) error {
	record, err := s.emergencyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if result := emergency.CanCancel(snapshotOf(record)); !result.Allowed {
		return result.Error()
	}
	return s.emergencyRepo.Cancel(ctx, id, reason, s.now(), false)
}

// LinkRequest links the repair request raised for an emergency.
func (s *EmergencyServiceImpl) LinkRequest(ctx context.Context, id, requestID string) error {
	record, err := s.emergencyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if result := emergency.CanLinkRequest(snapshotOf(record), requestID); !result.Allowed {
		return result.Error()
	}
	return s.emergencyRepo.LinkRequest(ctx, id, requestID)
}

// SweepExpired auto-cancels pending emergencies past their deadline.
// Every expired emergency is attempted; failures are joined into the error.
func (s *EmergencyServiceImpl) SweepExpired(ctx context.Context) ([]string, error) {
	pending, err := s.emergencyRepo.List(ctx, secondary.EmergencyFilters{Status: string(emergency.StatusPending)})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending emergencies: %w", err)
	}

	snapshots := make([]emergency.Snapshot, len(pending))
	for i, r := range pending {
		snapshots[i] = snapshotOf(r)
	}

	now := s.now()
	var cancelled []string
	var errs []error
	for _, id := range emergency.SelectExpired(snapshots, now) {
		if err := s.emergencyRepo.Cancel(ctx, id, autoCancelReason, now, true); err != nil {
			// Answered between the list and the cancel.
			if errors.Is(err, secondary.ErrNotFound) {
				continue
			}
			s.logger.Error("failed to auto-cancel emergency", zap.String("emergency_id", id), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		s.logger.Info("emergency auto-cancelled", zap.String("emergency_id", id))
		cancelled = append(cancelled, id)
	}
	return cancelled, errors.Join(errs...)
}

func snapshotOf(r *secondary.EmergencyRecord) emergency.Snapshot {
	return emergency.Snapshot{
		ID:               r.ID,
		Status:           emergency.Status(r.Status),
		ResponseDeadline: r.ResponseDeadline,
		RepairRequestID:  r.RepairRequestID,
		TechnicianID:     r.TechnicianID,
	}
}

func recordToEmergency(r *secondary.EmergencyRecord) *primary.Emergency {
	return &primary.Emergency{
		ID:               r.ID,
		CustomerID:       r.CustomerID,
		BranchID:         r.BranchID,
		VehicleID:        r.VehicleID,
		TechnicianID:     r.TechnicianID,
		RepairRequestID:  r.RepairRequestID,
		IssueDescription: r.IssueDescription,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		Status:           r.Status,
		RequestedAt:      r.RequestedAt,
		ResponseDeadline: r.ResponseDeadline,
		RespondedAt:      r.RespondedAt,
		AutoCanceledAt:   r.AutoCanceledAt,
		CancelReason:     r.CancelReason,
	}
}

// Ensure EmergencyServiceImpl implements the interface.
var _ primary.EmergencyService = (*EmergencyServiceImpl)(nil)
