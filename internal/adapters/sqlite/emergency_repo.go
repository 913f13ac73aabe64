package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/garage/internal/ports/secondary"
)

// EmergencyRepository implements secondary.EmergencyRepository with SQLite.
type EmergencyRepository struct {
	db *sql.DB
}

// NewEmergencyRepository creates a new SQLite emergency repository.
func NewEmergencyRepository(db *sql.DB) *EmergencyRepository {
	return &EmergencyRepository{db: db}
}

const emergencyColumns = `id, customer_id, branch_id, vehicle_id, technician_id, repair_request_id, issue_description,
	latitude, longitude, address, status, requested_at, response_deadline, responded_at, auto_canceled_at,
	cancel_reason, distance_km, emergency_fee_cents`

// Create persists a new emergency.
func (r *EmergencyRepository) Create(ctx context.Context, e *secondary.EmergencyRecord) error {
	status := e.Status
	if status == "" {
		status = "pending"
	}
	var distance sql.NullFloat64
	if e.DistanceKm > 0 {
		distance = sql.NullFloat64{Float64: e.DistanceKm, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO request_emergencies (id, customer_id, branch_id, vehicle_id, technician_id, repair_request_id,
		 issue_description, latitude, longitude, address, status, requested_at, response_deadline, distance_km,
		 emergency_fee_cents) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CustomerID, e.BranchID, e.VehicleID, nullString(e.TechnicianID), nullString(e.RepairRequestID),
		e.IssueDescription, e.Latitude, e.Longitude, nullString(e.Address), status, e.RequestedAt.UTC(),
		nullTime(e.ResponseDeadline), distance, e.EmergencyFeeCents,
	)
	if err != nil {
		return fmt.Errorf("failed to create emergency: %w", translate(err, "request_emergencies"))
	}
	return nil
}

// GetByID retrieves an emergency by ID.
func (r *EmergencyRepository) GetByID(ctx context.Context, id string) (*secondary.EmergencyRecord, error) {
	e, err := scanEmergency(r.db.QueryRowContext(ctx, "SELECT "+emergencyColumns+" FROM request_emergencies WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, notFound("emergency", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get emergency: %w", err)
	}
	return e, nil
}

// List retrieves emergencies matching the given filters, oldest first.
func (r *EmergencyRepository) List(ctx context.Context, filters secondary.EmergencyFilters) ([]*secondary.EmergencyRecord, error) {
	query := "SELECT " + emergencyColumns + " FROM request_emergencies WHERE 1=1"
	args := []any{}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.BranchID != "" {
		query += " AND branch_id = ?"
		args = append(args, filters.BranchID)
	}
	if filters.CustomerID != "" {
		query += " AND customer_id = ?"
		args = append(args, filters.CustomerID)
	}
	query += " ORDER BY requested_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list emergencies: %w", err)
	}
	defer rows.Close()

	var out []*secondary.EmergencyRecord
	for rows.Next() {
		e, err := scanEmergency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan emergency: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Respond assigns a technician and moves a pending emergency to accepted.
func (r *EmergencyRepository) Respond(ctx context.Context, id, technicianID string, respondedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE request_emergencies SET technician_id = ?, status = 'accepted', responded_at = ?, updated_at = ?
		 WHERE id = ? AND status = 'pending'`,
		technicianID, respondedAt.UTC(), now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to respond to emergency: %w", translate(err, "request_emergencies"))
	}
	return requireAffected(res, "pending emergency", id)
}

// LinkRequest sets the repair request raised for the emergency.
func (r *EmergencyRepository) LinkRequest(ctx context.Context, id, requestID string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE request_emergencies SET repair_request_id = ?, updated_at = ? WHERE id = ?",
		requestID, now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to link repair request: %w", translate(err, "request_emergencies"))
	}
	return requireAffected(res, "emergency", id)
}

// UpdateStatus sets the status of an emergency.
func (r *EmergencyRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE request_emergencies SET status = ?, updated_at = ? WHERE id = ?", status, now(), id)
	if err != nil {
		return fmt.Errorf("failed to update emergency: %w", translate(err, "request_emergencies"))
	}
	return requireAffected(res, "emergency", id)
}

// Cancel cancels an emergency that is not already completed or canceled.
func (r *EmergencyRepository) Cancel(ctx context.Context, id, reason string, at time.Time, auto bool) error {
	var autoAt sql.NullTime
	if auto {
		autoAt = sql.NullTime{Time: at.UTC(), Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE request_emergencies SET status = 'canceled', cancel_reason = ?, auto_canceled_at = ?, updated_at = ?
		 WHERE id = ? AND status NOT IN ('completed', 'canceled')`,
		nullString(reason), autoAt, at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel emergency: %w", err)
	}
	return requireAffected(res, "open emergency", id)
}

func scanEmergency(s rowScanner) (*secondary.EmergencyRecord, error) {
	var (
		e                                    secondary.EmergencyRecord
		tech, request, address, cancelReason sql.NullString
		deadline, responded, autoCanceled    sql.NullTime
		requestedAt                          time.Time
		distance                             sql.NullFloat64
	)
	err := s.Scan(&e.ID, &e.CustomerID, &e.BranchID, &e.VehicleID, &tech, &request, &e.IssueDescription,
		&e.Latitude, &e.Longitude, &address, &e.Status, &requestedAt, &deadline, &responded, &autoCanceled,
		&cancelReason, &distance, &e.EmergencyFeeCents)
	if err != nil {
		return nil, err
	}
	e.TechnicianID = tech.String
	e.RepairRequestID = request.String
	e.Address = address.String
	e.RequestedAt = requestedAt
	e.ResponseDeadline = timePtr(deadline)
	e.RespondedAt = timePtr(responded)
	e.AutoCanceledAt = timePtr(autoCanceled)
	e.CancelReason = cancelReason.String
	e.DistanceKm = distance.Float64
	return &e, nil
}

var _ secondary.EmergencyRepository = (*EmergencyRepository)(nil)
