package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// VehicleServiceImpl implements the VehicleService interface.
type VehicleServiceImpl struct {
	vehicleRepo secondary.VehicleRepository
	newID       func() string
}

// NewVehicleService creates a new VehicleService with injected dependencies.
func NewVehicleService(vehicleRepo secondary.VehicleRepository) *VehicleServiceImpl {
	return &VehicleServiceImpl{
		vehicleRepo: vehicleRepo,
		newID:       newID,
	}
}

// RegisterVehicle creates a vehicle. A brand, model and color that do not
// belong together are rejected by the store's composite keys.
func (s *VehicleServiceImpl) RegisterVehicle(ctx context.Context, req primary.RegisterVehicleRequest) (*primary.Vehicle, error) {
	plate := strings.ToUpper(strings.TrimSpace(req.LicensePlate))
	if plate == "" {
		return nil, fmt.Errorf("license plate is required")
	}

	record := &secondary.VehicleRecord{
		ID:           s.newID(),
		OwnerID:      req.OwnerID,
		BrandID:      req.BrandID,
		ModelID:      req.ModelID,
		ColorID:      req.ColorID,
		LicensePlate: plate,
		VIN:          strings.ToUpper(strings.TrimSpace(req.VIN)),
		Year:         req.Year,
		Odometer:     req.Odometer,
	}
	if err := s.vehicleRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to register vehicle: %w", err)
	}
	return s.GetVehicle(ctx, record.ID)
}

// GetVehicle retrieves a vehicle by ID.
func (s *VehicleServiceImpl) GetVehicle(ctx context.Context, id string) (*primary.Vehicle, error) {
	record, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return recordToVehicle(record), nil
}

// ListVehicles retrieves the vehicles of a customer.
func (s *VehicleServiceImpl) ListVehicles(ctx context.Context, ownerID string) ([]*primary.Vehicle, error) {
	records, err := s.vehicleRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	vehicles := make([]*primary.Vehicle, len(records))
	for i, r := range records {
		vehicles[i] = recordToVehicle(r)
	}
	return vehicles, nil
}

// UpdateVehicle updates plate, VIN, year, odometer and color.
func (s *VehicleServiceImpl) UpdateVehicle(ctx context.Context, req primary.UpdateVehicleRequest) (*primary.Vehicle, error) {
	record, err := s.vehicleRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.Odometer < record.Odometer {
		return nil, fmt.Errorf("odometer cannot go back from %d to %d", record.Odometer, req.Odometer)
	}

	if req.ColorID != "" {
		record.ColorID = req.ColorID
	}
	if plate := strings.ToUpper(strings.TrimSpace(req.LicensePlate)); plate != "" {
		record.LicensePlate = plate
	}
	if req.VIN != "" {
		record.VIN = strings.ToUpper(strings.TrimSpace(req.VIN))
	}
	if req.Year != 0 {
		record.Year = req.Year
	}
	record.Odometer = req.Odometer

	if err := s.vehicleRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}
	return s.GetVehicle(ctx, req.ID)
}

// DeleteVehicle deletes a vehicle with no requests or orders.
func (s *VehicleServiceImpl) DeleteVehicle(ctx context.Context, id string) error {
	return s.vehicleRepo.Delete(ctx, id)
}

func recordToVehicle(r *secondary.VehicleRecord) *primary.Vehicle {
	return &primary.Vehicle{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		BrandID:      r.BrandID,
		ModelID:      r.ModelID,
		ColorID:      r.ColorID,
		LicensePlate: r.LicensePlate,
		VIN:          r.VIN,
		Year:         r.Year,
		Odometer:     r.Odometer,
		CreatedAt:    r.CreatedAt,
	}
}

// Ensure VehicleServiceImpl implements the interface.
var _ primary.VehicleService = (*VehicleServiceImpl)(nil)
