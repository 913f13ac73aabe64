package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/garage/internal/ports/secondary"
)

// VehicleRepository implements secondary.VehicleRepository with SQLite.
type VehicleRepository struct {
	db *sql.DB
}

// NewVehicleRepository creates a new SQLite vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

const vehicleColumns = "id, owner_id, brand_id, model_id, color_id, license_plate, vin, year, odometer, created_at, updated_at"

// Create persists a new vehicle. The composite foreign keys reject a model
// of another brand and a color the model does not come in.
func (r *VehicleRepository) Create(ctx context.Context, v *secondary.VehicleRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicles (id, owner_id, brand_id, model_id, color_id, license_plate, vin, year, odometer)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.OwnerID, v.BrandID, v.ModelID, v.ColorID, v.LicensePlate, nullString(v.VIN),
		nullInt64(int64(v.Year)), nullInt64(int64(v.Odometer)),
	)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", translate(err, "vehicles"))
	}
	return nil
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*secondary.VehicleRecord, error) {
	v, err := scanVehicle(r.db.QueryRowContext(ctx, "SELECT "+vehicleColumns+" FROM vehicles WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, notFound("vehicle", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return v, nil
}

// ListByOwner retrieves the vehicles of a customer.
func (r *VehicleRepository) ListByOwner(ctx context.Context, ownerID string) ([]*secondary.VehicleRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+vehicleColumns+" FROM vehicles WHERE owner_id = ? ORDER BY license_plate", ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*secondary.VehicleRecord
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Update updates plate, VIN, year, odometer and color.
func (r *VehicleRepository) Update(ctx context.Context, v *secondary.VehicleRecord) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE vehicles SET license_plate = ?, vin = ?, year = ?, odometer = ?, color_id = ?, updated_at = ? WHERE id = ?",
		v.LicensePlate, nullString(v.VIN), nullInt64(int64(v.Year)), nullInt64(int64(v.Odometer)), v.ColorID, now(), v.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vehicle: %w", translate(err, "vehicles"))
	}
	return requireAffected(res, "vehicle", v.ID)
}

// Delete removes a vehicle.
func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "vehicles", "vehicle", id)
}

func scanVehicle(s rowScanner) (*secondary.VehicleRecord, error) {
	var (
		v                    secondary.VehicleRecord
		vin                  sql.NullString
		year, odometer       sql.NullInt64
		createdAt, updatedAt sql.NullTime
	)
	err := s.Scan(&v.ID, &v.OwnerID, &v.BrandID, &v.ModelID, &v.ColorID, &v.LicensePlate, &vin, &year, &odometer,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	v.VIN = vin.String
	v.Year = int(year.Int64)
	v.Odometer = int(odometer.Int64)
	v.CreatedAt = createdAt.Time
	v.UpdatedAt = timePtr(updatedAt)
	return &v, nil
}

var _ secondary.VehicleRepository = (*VehicleRepository)(nil)
