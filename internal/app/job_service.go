package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/garage/internal/core/hierarchy"
	"github.com/example/garage/internal/core/job"
	"github.com/example/garage/internal/core/money"
	"github.com/example/garage/internal/core/repairorder"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// JobServiceImpl implements the JobService interface.
type JobServiceImpl struct {
	jobRepo            secondary.JobRepository
	orderRepo          secondary.RepairOrderRepository
	technicianRepo     secondary.TechnicianRepository
	serviceCatalogRepo secondary.ServiceCatalogRepository
	partRepo           secondary.PartRepository
	logger             *zap.Logger
	newID              func() string
}

// NewJobService creates a new JobService with injected dependencies.
func NewJobService(
	jobRepo secondary.JobRepository,
	orderRepo secondary.RepairOrderRepository,
	technicianRepo secondary.TechnicianRepository,
	serviceCatalogRepo secondary.ServiceCatalogRepository,
	partRepo secondary.PartRepository,
	logger *zap.Logger,
) *JobServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobServiceImpl{
		jobRepo:            jobRepo,
		orderRepo:          orderRepo,
		technicianRepo:     technicianRepo,
		serviceCatalogRepo: serviceCatalogRepo,
		partRepo:           partRepo,
		logger:             logger,
		newID:              newID,
	}
}

// CreateJob creates a job for a service on an active order.
func (s *JobServiceImpl) CreateJob(ctx context.Context, req primary.CreateJobRequest) (*primary.Job, error) {
	order, err := s.orderRepo.GetByID(ctx, req.RepairOrderID)
	if err != nil {
		return nil, err
	}

	// Guard: archived and cancelled orders take no new work
	if result := repairorder.CanModify(stateOf(order)); !result.Allowed {
		return nil, result.Error()
	}

	svc, err := s.serviceCatalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service %s: %w", req.ServiceID, err)
	}
	name := req.Name
	if name == "" {
		name = svc.Name
	}

	record := &secondary.JobRecord{
		ID:               s.newID(),
		RepairOrderID:    req.RepairOrderID,
		ServiceID:        req.ServiceID,
		Name:             name,
		Note:             req.Note,
		Status:           string(job.StatusPending),
		TotalAmountCents: svc.PriceCents,
		Deadline:         req.Deadline,
	}
	if err := s.jobRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return s.GetJob(ctx, record.ID)
}

// GetJob retrieves a job by ID.
func (s *JobServiceImpl) GetJob(ctx context.Context, id string) (*primary.Job, error) {
	record, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := recordToJob(record)
	out.TechnicianIDs, err = s.jobRepo.ListTechnicianIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListJobs retrieves the jobs of an order.
func (s *JobServiceImpl) ListJobs(ctx context.Context, orderID string) ([]*primary.Job, error) {
	records, err := s.jobRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	jobs := make([]*primary.Job, len(records))
	for i, r := range records {
		jobs[i] = recordToJob(r)
	}
	return jobs, nil
}

// ChangeStatus moves a job to a new status.
func (s *JobServiceImpl) ChangeStatus(ctx context.Context, id, status string) error {
	record, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if result := job.CanTransition(id, job.Status(record.Status), job.Status(status)); !result.Allowed {
		return result.Error()
	}
	return s.jobRepo.UpdateStatus(ctx, id, status)
}

// Revise creates the next version of a job.
func (s *JobServiceImpl) Revise(ctx context.Context, id, reason string) (*primary.Job, error) {
	record, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	supersededBy, err := s.jobRepo.GetRevisionOf(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(ctx, record.RepairOrderID)
	if err != nil {
		return nil, err
	}

	// Guard: latest version only, order still active
	guardCtx := job.ReviseContext{
		JobID:         id,
		Status:        job.Status(record.Status),
		RevisionCount: record.RevisionCount,
		SupersededBy:  supersededBy,
		OrderActive:   repairorder.Lifecycle(order.Lifecycle) == repairorder.LifecycleActive,
	}
	if result := job.CanRevise(guardCtx); !result.Allowed {
		return nil, result.Error()
	}

	rev := job.NextRevision(guardCtx)
	revision := &secondary.JobRecord{
		ID:               s.newID(),
		RepairOrderID:    record.RepairOrderID,
		ServiceID:        record.ServiceID,
		OriginalJobID:    rev.OriginalJobID,
		Name:             record.Name,
		Note:             record.Note,
		Status:           string(rev.Status),
		TotalAmountCents: record.TotalAmountCents,
		RevisionCount:    rev.RevisionCount,
		RevisionReason:   reason,
		Deadline:         record.Deadline,
	}
	if err := s.jobRepo.Create(ctx, revision); err != nil {
		return nil, fmt.Errorf("failed to create job revision: %w", err)
	}

	s.logger.Info("job revised",
		zap.String("job_id", id),
		zap.String("revision_id", revision.ID),
		zap.Int("revision", rev.RevisionCount),
	)
	return s.GetJob(ctx, revision.ID)
}

// RevisionHistory returns the ids of every earlier version of a job, newest first.
func (s *JobServiceImpl) RevisionHistory(ctx context.Context, id string) ([]string, error) {
	record, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	links, err := s.jobRepo.OriginalLinks(ctx, record.RepairOrderID)
	if err != nil {
		return nil, err
	}
	chain, cyclic := hierarchy.Ancestors(id, links)
	if cyclic {
		s.logger.Warn("job revision chain loops", zap.String("job_id", id))
	}
	return chain, nil
}

// AssignTechnician assigns an available technician to an open job.
func (s *JobServiceImpl) AssignTechnician(ctx context.Context, jobID, technicianID string) error {
	record, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	tech, err := s.technicianRepo.GetByID(ctx, technicianID)
	if err != nil {
		return fmt.Errorf("failed to load technician: %w", err)
	}
	assigned, err := s.jobRepo.IsAssigned(ctx, jobID, technicianID)
	if err != nil {
		return err
	}

	// Guard: open job, available technician, not assigned twice
	guardCtx := job.AssignContext{
		JobID:               jobID,
		Status:              job.Status(record.Status),
		TechnicianID:        technicianID,
		TechnicianAvailable: tech.IsAvailable,
		AlreadyAssigned:     assigned,
	}
	if result := job.CanAssignTechnician(guardCtx); !result.Allowed {
		return result.Error()
	}
	return s.jobRepo.AssignTechnician(ctx, jobID, technicianID)
}

// AddPart adds parts to a job at catalog price.
func (s *JobServiceImpl) AddPart(ctx context.Context, jobID, partID string, quantity int) (*primary.Job, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	record, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.Status(record.Status).IsOpen() {
		return nil, fmt.Errorf("job %s is %s", jobID, record.Status)
	}
	part, err := s.partRepo.GetPart(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("failed to price part %s: %w", partID, err)
	}
	amount, err := money.Multiply(part.PriceCents, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to price part %s: %w", partID, err)
	}
	if _, err := money.Add(record.TotalAmountCents, amount); err != nil {
		return nil, fmt.Errorf("job %s total: %w", jobID, err)
	}

	line := &secondary.JobPartRecord{
		ID:             s.newID(),
		JobID:          jobID,
		PartID:         partID,
		Quantity:       quantity,
		UnitPriceCents: part.PriceCents,
	}
	if err := s.jobRepo.AddPart(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to add part to job: %w", err)
	}
	return s.GetJob(ctx, jobID)
}

// RecordRepair records work an assigned technician performed.
func (s *JobServiceImpl) RecordRepair(ctx context.Context, req primary.RecordRepairRequest) error {
	assigned, err := s.jobRepo.IsAssigned(ctx, req.JobID, req.TechnicianID)
	if err != nil {
		return err
	}
	if !assigned {
		return fmt.Errorf("technician %s is not assigned to job %s", req.TechnicianID, req.JobID)
	}
	if req.StartedAt != nil && req.CompletedAt != nil && req.CompletedAt.Before(*req.StartedAt) {
		return fmt.Errorf("repair cannot complete before it starts")
	}

	record := &secondary.RepairRecord{
		ID:               s.newID(),
		JobID:            req.JobID,
		TechnicianID:     req.TechnicianID,
		Description:      req.Description,
		Notes:            req.Notes,
		StartedAt:        req.StartedAt,
		CompletedAt:      req.CompletedAt,
		ActualMinutes:    elapsedMinutes(req.StartedAt, req.CompletedAt),
		EstimatedMinutes: req.EstimatedMinutes,
	}
	if err := s.jobRepo.RecordRepair(ctx, record); err != nil {
		return fmt.Errorf("failed to record repair: %w", err)
	}
	return nil
}

// DeleteJob deletes a job no revision refers to.
func (s *JobServiceImpl) DeleteJob(ctx context.Context, id string) error {
	return s.jobRepo.Delete(ctx, id)
}

func elapsedMinutes(start, end *time.Time) int {
	if start == nil || end == nil {
		return 0
	}
	return int(end.Sub(*start) / time.Minute)
}

func recordToJob(r *secondary.JobRecord) *primary.Job {
	return &primary.Job{
		ID:               r.ID,
		RepairOrderID:    r.RepairOrderID,
		ServiceID:        r.ServiceID,
		OriginalJobID:    r.OriginalJobID,
		Name:             r.Name,
		Note:             r.Note,
		Status:           r.Status,
		TotalAmountCents: r.TotalAmountCents,
		RevisionCount:    r.RevisionCount,
		RevisionReason:   r.RevisionReason,
		CreatedAt:        r.CreatedAt,
	}
}

// Ensure JobServiceImpl implements the interface.
var _ primary.JobService = (*JobServiceImpl)(nil)
