package app

import (
	"context"
	"fmt"

	corebranch "github.com/example/garage/internal/core/branch"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// BranchServiceImpl implements the BranchService interface.
type BranchServiceImpl struct {
	branchRepo secondary.BranchRepository
	newID      func() string
}

// NewBranchService creates a new BranchService with injected dependencies.
func NewBranchService(branchRepo secondary.BranchRepository) *BranchServiceImpl {
	return &BranchServiceImpl{
		branchRepo: branchRepo,
		newID:      newID,
	}
}

// CreateBranch creates a new active branch.
func (s *BranchServiceImpl) CreateBranch(ctx context.Context, req primary.CreateBranchRequest) (*primary.Branch, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("branch name is required")
	}

	record := &secondary.BranchRecord{
		ID:          s.newID(),
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Street:      req.Street,
		District:    req.District,
		City:        req.City,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.branchRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}
	return s.GetBranch(ctx, record.ID)
}

// GetBranch retrieves a branch by ID.
func (s *BranchServiceImpl) GetBranch(ctx context.Context, id string) (*primary.Branch, error) {
	record, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return recordToBranch(record), nil
}

// ListBranches retrieves branches matching the given filters.
func (s *BranchServiceImpl) ListBranches(ctx context.Context, filters primary.BranchFilters) ([]*primary.Branch, error) {
	records, err := s.branchRepo.List(ctx, secondary.BranchFilters{ActiveOnly: filters.ActiveOnly, City: filters.City})
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	branches := make([]*primary.Branch, len(records))
	for i, r := range records {
		branches[i] = recordToBranch(r)
	}
	return branches, nil
}

// UpdateBranch updates the descriptive fields of a branch.
func (s *BranchServiceImpl) UpdateBranch(ctx context.Context, req primary.UpdateBranchRequest) (*primary.Branch, error) {
	record, err := s.branchRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		record.Name = req.Name
	}
	record.PhoneNumber = req.PhoneNumber
	record.Email = req.Email
	record.Street = req.Street
	record.District = req.District
	record.City = req.City
	record.Description = req.Description

	if err := s.branchRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update branch: %w", err)
	}
	return s.GetBranch(ctx, req.ID)
}

// SetBranchActive activates or deactivates a branch.
func (s *BranchServiceImpl) SetBranchActive(ctx context.Context, id string, active bool) error {
	return s.branchRepo.SetActive(ctx, id, active)
}

// SetOperatingHours replaces the weekly schedule of a branch.
func (s *BranchServiceImpl) SetOperatingHours(ctx context.Context, branchID string, hours []primary.OperatingHours) error {
	days := make([]corebranch.Day, len(hours))
	for i, h := range hours {
		days[i] = corebranch.Day{DayOfWeek: h.DayOfWeek, IsOpen: h.IsOpen, OpenTime: h.OpenTime, CloseTime: h.CloseTime}
	}
	// Guard: one entry per weekday, open before close
	if result := corebranch.CanSetSchedule(days); !result.Allowed {
		return result.Error()
	}

	records := make([]*secondary.OperatingHoursRecord, len(hours))
	for i, h := range hours {
		records[i] = &secondary.OperatingHoursRecord{
			ID:        s.newID(),
			BranchID:  branchID,
			DayOfWeek: h.DayOfWeek,
			IsOpen:    h.IsOpen,
			OpenTime:  h.OpenTime,
			CloseTime: h.CloseTime,
		}
	}
	if err := s.branchRepo.ReplaceOperatingHours(ctx, branchID, records); err != nil {
		return fmt.Errorf("failed to set operating hours: %w", err)
	}
	return nil
}

// GetOperatingHours retrieves the weekly schedule of a branch.
func (s *BranchServiceImpl) GetOperatingHours(ctx context.Context, branchID string) ([]primary.OperatingHours, error) {
	records, err := s.branchRepo.GetOperatingHours(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get operating hours: %w", err)
	}
	hours := make([]primary.OperatingHours, len(records))
	for i, r := range records {
		hours[i] = primary.OperatingHours{DayOfWeek: r.DayOfWeek, IsOpen: r.IsOpen, OpenTime: r.OpenTime, CloseTime: r.CloseTime}
	}
	return hours, nil
}

// DeleteBranch deletes a branch nothing references any more.
func (s *BranchServiceImpl) DeleteBranch(ctx context.Context, id string) error {
	return s.branchRepo.Delete(ctx, id)
}

func recordToBranch(r *secondary.BranchRecord) *primary.Branch {
	return &primary.Branch{
		ID:          r.ID,
		Name:        r.Name,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		Street:      r.Street,
		District:    r.District,
		City:        r.City,
		Description: r.Description,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
	}
}

// Ensure BranchServiceImpl implements the interface.
var _ primary.BranchService = (*BranchServiceImpl)(nil)
