package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/garage/internal/ports/secondary"
)

// RepairRequestRepository implements secondary.RepairRequestRepository with SQLite.
type RepairRequestRepository struct {
	db *sql.DB
}

// NewRepairRequestRepository creates a new SQLite repair request repository.
func NewRepairRequestRepository(db *sql.DB) *RepairRequestRepository {
	return &RepairRequestRepository{db: db}
}

const repairRequestColumns = `id, vehicle_id, customer_id, branch_id, description, request_date, arrival_window_start,
	status, estimated_cost_cents, row_version, created_at, updated_at`

// Create persists a request with its service and part lines in one transaction.
func (r *RepairRequestRepository) Create(ctx context.Context, req *secondary.RepairRequestRecord, services []*secondary.RequestServiceRecord, parts []*secondary.RequestPartRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO repair_requests (id, vehicle_id, customer_id, branch_id, description, request_date,
		 arrival_window_start, status, estimated_cost_cents) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.VehicleID, req.CustomerID, req.BranchID, nullString(req.Description),
		req.RequestDate.Format(dateLayout), nullTime(req.ArrivalWindowStart), req.Status, req.EstimatedCostCents,
	)
	if err != nil {
		return fmt.Errorf("failed to create repair request: %w", translate(err, "repair_requests"))
	}

	for _, s := range services {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO request_services (id, repair_request_id, service_id, service_fee_cents) VALUES (?, ?, ?, ?)",
			s.ID, req.ID, s.ServiceID, s.ServiceFeeCents,
		)
		if err != nil {
			return fmt.Errorf("failed to add request service: %w", translate(err, "request_services"))
		}
	}
	for _, p := range parts {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO request_parts (id, repair_request_id, part_id, quantity, unit_price_cents) VALUES (?, ?, ?, ?, ?)",
			p.ID, req.ID, p.PartID, p.Quantity, p.UnitPriceCents,
		)
		if err != nil {
			return fmt.Errorf("failed to add request part: %w", translate(err, "request_parts"))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit repair request: %w", err)
	}
	return nil
}

// GetByID retrieves a request by ID.
func (r *RepairRequestRepository) GetByID(ctx context.Context, id string) (*secondary.RepairRequestRecord, error) {
	req, err := scanRepairRequest(r.db.QueryRowContext(ctx, "SELECT "+repairRequestColumns+" FROM repair_requests WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, notFound("repair request", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repair request: %w", err)
	}
	return req, nil
}

// List retrieves requests matching the given filters.
func (r *RepairRequestRepository) List(ctx context.Context, filters secondary.RepairRequestFilters) ([]*secondary.RepairRequestRecord, error) {
	query := "SELECT " + repairRequestColumns + " FROM repair_requests WHERE 1=1"
	args := []any{}
	if filters.CustomerID != "" {
		query += " AND customer_id = ?"
		args = append(args, filters.CustomerID)
	}
	if filters.VehicleID != "" {
		query += " AND vehicle_id = ?"
		args = append(args, filters.VehicleID)
	}
	if filters.BranchID != "" {
		query += " AND branch_id = ?"
		args = append(args, filters.BranchID)
	}
	if filters.Status != nil {
		query += " AND status = ?"
		args = append(args, *filters.Status)
	}
	query += " ORDER BY request_date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list repair requests: %w", err)
	}
	defer rows.Close()

	var out []*secondary.RepairRequestRecord
	for rows.Next() {
		req, err := scanRepairRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repair request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// ListServices retrieves the service lines of a request.
func (r *RepairRequestRepository) ListServices(ctx context.Context, requestID string) ([]*secondary.RequestServiceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, repair_request_id, service_id, service_fee_cents FROM request_services WHERE repair_request_id = ? ORDER BY rowid",
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list request services: %w", err)
	}
	defer rows.Close()

	var out []*secondary.RequestServiceRecord
	for rows.Next() {
		var s secondary.RequestServiceRecord
		if err := rows.Scan(&s.ID, &s.RepairRequestID, &s.ServiceID, &s.ServiceFeeCents); err != nil {
			return nil, fmt.Errorf("failed to scan request service: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// ListParts retrieves the part lines of a request.
func (r *RepairRequestRepository) ListParts(ctx context.Context, requestID string) ([]*secondary.RequestPartRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, repair_request_id, part_id, quantity, unit_price_cents FROM request_parts WHERE repair_request_id = ? ORDER BY rowid",
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list request parts: %w", err)
	}
	defer rows.Close()

	var out []*secondary.RequestPartRecord
	for rows.Next() {
		var p secondary.RequestPartRecord
		if err := rows.Scan(&p.ID, &p.RepairRequestID, &p.PartID, &p.Quantity, &p.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("failed to scan request part: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// UpdateStatus changes the status when the stored row version equals expectedVersion.
func (r *RepairRequestRepository) UpdateStatus(ctx context.Context, id string, status int, expectedVersion int64) (int64, error) {
	return updateRequestStatus(ctx, r.db, id, status, expectedVersion)
}

// queryExecer is satisfied by *sql.DB and *sql.Tx.
type queryExecer interface {
	execer
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// updateRequestStatus is the row-versioned request update, shared with
// writes that move a request as part of a larger transaction.
func updateRequestStatus(ctx context.Context, q queryExecer, id string, status int, expectedVersion int64) (int64, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE repair_requests SET status = ?, row_version = row_version + 1, updated_at = ?
		 WHERE id = ? AND row_version = ?`,
		status, now(), id, expectedVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update repair request: %w", translate(err, "repair_requests"))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 1 {
		return expectedVersion + 1, nil
	}

	var current int64
	err = q.QueryRowContext(ctx, "SELECT row_version FROM repair_requests WHERE id = ?", id).Scan(&current)
	if err == sql.ErrNoRows {
		return 0, notFound("repair request", id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read row version: %w", err)
	}
	return 0, fmt.Errorf("repair request %s is at version %d, expected %d: %w",
		id, current, expectedVersion, secondary.ErrConcurrencyConflict)
}

// Delete removes a request and its lines.
func (r *RepairRequestRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "repair_requests", "repair request", id)
}

func scanRepairRequest(s rowScanner) (*secondary.RepairRequestRecord, error) {
	var (
		req                secondary.RepairRequestRecord
		descr              sql.NullString
		arrival, updatedAt sql.NullTime
		createdAt          sql.NullTime
	)
	err := s.Scan(&req.ID, &req.VehicleID, &req.CustomerID, &req.BranchID, &descr, &req.RequestDate, &arrival,
		&req.Status, &req.EstimatedCostCents, &req.RowVersion, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	req.Description = descr.String
	req.ArrivalWindowStart = timePtr(arrival)
	req.CreatedAt = createdAt.Time
	req.UpdatedAt = timePtr(updatedAt)
	return &req, nil
}

var _ secondary.RepairRequestRepository = (*RepairRequestRepository)(nil)
