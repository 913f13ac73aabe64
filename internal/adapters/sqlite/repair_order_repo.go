package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/garage/internal/ports/secondary"
)

// RepairOrderRepository implements secondary.RepairOrderRepository with SQLite.
type RepairOrderRepository struct {
	db *sql.DB
}

// NewRepairOrderRepository creates a new SQLite repair order repository.
func NewRepairOrderRepository(db *sql.DB) *RepairOrderRepository {
	return &RepairOrderRepository{db: db}
}

const repairOrderColumns = `id, branch_id, vehicle_id, customer_id, order_status_id, label_id, repair_request_id,
	receive_date, estimated_completion_date, completion_date, estimated_amount_cents, cost_cents, paid_amount_cents,
	paid_status, odometer, note, lifecycle, archived_at, archived_by, cancelled_at, cancel_reason, created_at`

// Create persists a new order.
func (r *RepairOrderRepository) Create(ctx context.Context, o *secondary.RepairOrderRecord) error {
	return insertRepairOrder(ctx, r.db, o)
}

// CreateFromRequest persists the order and moves its repair request in one
// transaction. A stale expectedVersion rolls the order back.
func (r *RepairOrderRepository) CreateFromRequest(ctx context.Context, o *secondary.RepairOrderRecord, requestStatus int, expectedVersion int64) error {
	if o.RepairRequestID == "" {
		return fmt.Errorf("order %s has no repair request", o.ID)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRepairOrder(ctx, tx, o); err != nil {
		return err
	}
	if _, err := updateRequestStatus(ctx, tx, o.RepairRequestID, requestStatus, expectedVersion); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit repair order: %w", err)
	}
	return nil
}

func insertRepairOrder(ctx context.Context, ex execer, o *secondary.RepairOrderRecord) error {
	paidStatus := o.PaidStatus
	if paidStatus == "" {
		paidStatus = "unpaid"
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO repair_orders (id, branch_id, vehicle_id, customer_id, order_status_id, label_id, repair_request_id,
		 receive_date, estimated_completion_date, estimated_amount_cents, cost_cents, paid_status, odometer, note, lifecycle)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'active')`,
		o.ID, o.BranchID, o.VehicleID, o.CustomerID, o.OrderStatusID, nullInt64(o.LabelID), nullString(o.RepairRequestID),
		o.ReceiveDate.UTC(), nullTime(o.EstimatedCompletionDate), o.EstimatedAmountCents, o.CostCents, paidStatus,
		nullInt64(int64(o.Odometer)), nullString(o.Note),
	)
	if err != nil {
		return fmt.Errorf("failed to create repair order: %w", translate(err, "repair_orders"))
	}
	return nil
}

// GetByID retrieves an order by ID.
func (r *RepairOrderRepository) GetByID(ctx context.Context, id string) (*secondary.RepairOrderRecord, error) {
	o, err := scanRepairOrder(r.db.QueryRowContext(ctx, "SELECT "+repairOrderColumns+" FROM repair_orders WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, notFound("repair order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repair order: %w", err)
	}
	return o, nil
}

// GetByRequestID retrieves the order created from a request.
func (r *RepairOrderRepository) GetByRequestID(ctx context.Context, requestID string) (*secondary.RepairOrderRecord, error) {
	o, err := scanRepairOrder(r.db.QueryRowContext(ctx, "SELECT "+repairOrderColumns+" FROM repair_orders WHERE repair_request_id = ?", requestID))
	if err == sql.ErrNoRows {
		return nil, notFound("repair order for request", requestID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get repair order: %w", err)
	}
	return o, nil
}

// List retrieves orders matching the given filters, newest first.
func (r *RepairOrderRepository) List(ctx context.Context, filters secondary.RepairOrderFilters) ([]*secondary.RepairOrderRecord, error) {
	query := "SELECT " + repairOrderColumns + " FROM repair_orders WHERE 1=1"
	args := []any{}
	if filters.BranchID != "" {
		query += " AND branch_id = ?"
		args = append(args, filters.BranchID)
	}
	if filters.CustomerID != "" {
		query += " AND customer_id = ?"
		args = append(args, filters.CustomerID)
	}
	if filters.VehicleID != "" {
		query += " AND vehicle_id = ?"
		args = append(args, filters.VehicleID)
	}
	if filters.Lifecycle != "" {
		query += " AND lifecycle = ?"
		args = append(args, filters.Lifecycle)
	}
	query += " ORDER BY receive_date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list repair orders: %w", err)
	}
	defer rows.Close()

	var out []*secondary.RepairOrderRecord
	for rows.Next() {
		o, err := scanRepairOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repair order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatus sets the order status.
func (r *RepairOrderRepository) UpdateStatus(ctx context.Context, id string, statusID int, completedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE repair_orders SET order_status_id = ?, completion_date = COALESCE(?, completion_date), updated_at = ? WHERE id = ?",
		statusID, nullTime(completedAt), now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update repair order status: %w", translate(err, "repair_orders"))
	}
	return requireAffected(res, "repair order", id)
}

// Archive moves an active order to archived.
func (r *RepairOrderRepository) Archive(ctx context.Context, id, archivedBy string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE repair_orders SET lifecycle = 'archived', archived_at = ?, archived_by = ?, updated_at = ?
		 WHERE id = ? AND lifecycle = 'active'`,
		at.UTC(), nullString(archivedBy), now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to archive repair order: %w", translate(err, "repair_orders"))
	}
	return requireAffected(res, "active repair order", id)
}

// Cancel moves an active order to cancelled.
func (r *RepairOrderRepository) Cancel(ctx context.Context, id, reason string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE repair_orders SET lifecycle = 'cancelled', cancelled_at = ?, cancel_reason = ?, updated_at = ?
		 WHERE id = ? AND lifecycle = 'active'`,
		at.UTC(), nullString(reason), now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel repair order: %w", translate(err, "repair_orders"))
	}
	return requireAffected(res, "active repair order", id)
}

// UpdatePayment stores the paid amount and paid status.
func (r *RepairOrderRepository) UpdatePayment(ctx context.Context, id string, paidCents int64, paidStatus string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE repair_orders SET paid_amount_cents = ?, paid_status = ?, updated_at = ? WHERE id = ?",
		paidCents, paidStatus, now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update repair order payment: %w", translate(err, "repair_orders"))
	}
	return requireAffected(res, "repair order", id)
}

// AddService adds a service line and adds its price to the order cost.
func (r *RepairOrderRepository) AddService(ctx context.Context, line *secondary.RepairOrderServiceRecord) error {
	return r.addLine(ctx, line.RepairOrderID, line.PriceCents, nil,
		"INSERT INTO repair_order_services (id, repair_order_id, service_id, price_cents) VALUES (?, ?, ?, ?)",
		"repair_order_services", line.ID, line.RepairOrderID, line.ServiceID, line.PriceCents)
}

// AddPart adds a part line and adds its amount to the order cost. When
// stockBranchID is set the quantity leaves that branch's stock in the same
// transaction; the stock >= 0 check rolls the whole line back.
func (r *RepairOrderRepository) AddPart(ctx context.Context, line *secondary.RepairOrderPartRecord, stockBranchID string) error {
	return r.addLine(ctx, line.RepairOrderID, line.UnitPriceCents*int64(line.Quantity),
		func(tx *sql.Tx) error {
			if stockBranchID == "" {
				return nil
			}
			res, err := tx.ExecContext(ctx,
				"UPDATE part_inventories SET stock = stock - ?, updated_at = ? WHERE part_id = ? AND branch_id = ?",
				line.Quantity, now(), line.PartID, stockBranchID,
			)
			if err != nil {
				return fmt.Errorf("failed to take stock: %w", translate(err, "part_inventories"))
			}
			return requireAffected(res, "inventory", line.PartID+"@"+stockBranchID)
		},
		"INSERT INTO repair_order_parts (id, repair_order_id, part_id, quantity, unit_price_cents) VALUES (?, ?, ?, ?, ?)",
		"repair_order_parts", line.ID, line.RepairOrderID, line.PartID, line.Quantity, line.UnitPriceCents)
}

func (r *RepairOrderRepository) addLine(ctx context.Context, orderID string, amount int64, before func(*sql.Tx) error, insert, table string, args ...any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if before != nil {
		if err := before(tx); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
		return fmt.Errorf("failed to add order line: %w", translate(err, table))
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE repair_orders SET cost_cents = cost_cents + ?, updated_at = ? WHERE id = ?", amount, now(), orderID)
	if err != nil {
		return fmt.Errorf("failed to update order cost: %w", err)
	}
	if err := requireAffected(res, "repair order", orderID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListServices retrieves the service lines of an order.
func (r *RepairOrderRepository) ListServices(ctx context.Context, orderID string) ([]*secondary.RepairOrderServiceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, repair_order_id, service_id, price_cents FROM repair_order_services WHERE repair_order_id = ? ORDER BY rowid", orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order services: %w", err)
	}
	defer rows.Close()

	var out []*secondary.RepairOrderServiceRecord
	for rows.Next() {
		var l secondary.RepairOrderServiceRecord
		if err := rows.Scan(&l.ID, &l.RepairOrderID, &l.ServiceID, &l.PriceCents); err != nil {
			return nil, fmt.Errorf("failed to scan order service: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// ListParts retrieves the part lines of an order.
func (r *RepairOrderRepository) ListParts(ctx context.Context, orderID string) ([]*secondary.RepairOrderPartRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, repair_order_id, part_id, quantity, unit_price_cents FROM repair_order_parts WHERE repair_order_id = ? ORDER BY rowid", orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order parts: %w", err)
	}
	defer rows.Close()

	var out []*secondary.RepairOrderPartRecord
	for rows.Next() {
		var l secondary.RepairOrderPartRecord
		if err := rows.Scan(&l.ID, &l.RepairOrderID, &l.PartID, &l.Quantity, &l.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("failed to scan order part: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// OrderStatusIDs returns the ids of every known order status.
func (r *RepairOrderRepository) OrderStatusIDs(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM order_statuses ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list order statuses: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order status: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountOpenJobs returns the jobs of an order neither completed nor cancelled.
func (r *RepairOrderRepository) CountOpenJobs(ctx context.Context, orderID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM jobs WHERE repair_order_id = ? AND status NOT IN ('completed', 'cancelled')", orderID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count open jobs: %w", err)
	}
	return n, nil
}

// Delete removes an order and everything it owns.
func (r *RepairOrderRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "repair_orders", "repair order", id)
}

func scanRepairOrder(s rowScanner) (*secondary.RepairOrderRecord, error) {
	var (
		o                                       secondary.RepairOrderRecord
		label, odometer                         sql.NullInt64
		request, note, archivedBy, cancelReason sql.NullString
		estCompletion, completion               sql.NullTime
		archivedAt, cancelledAt, createdAt      sql.NullTime
	)
	err := s.Scan(&o.ID, &o.BranchID, &o.VehicleID, &o.CustomerID, &o.OrderStatusID, &label, &request,
		&o.ReceiveDate, &estCompletion, &completion, &o.EstimatedAmountCents, &o.CostCents, &o.PaidAmountCents,
		&o.PaidStatus, &odometer, &note, &o.Lifecycle, &archivedAt, &archivedBy, &cancelledAt, &cancelReason, &createdAt)
	if err != nil {
		return nil, err
	}
	o.LabelID = label.Int64
	o.RepairRequestID = request.String
	o.EstimatedCompletionDate = timePtr(estCompletion)
	o.CompletionDate = timePtr(completion)
	o.Odometer = int(odometer.Int64)
	o.Note = note.String
	o.ArchivedAt = timePtr(archivedAt)
	o.ArchivedBy = archivedBy.String
	o.CancelledAt = timePtr(cancelledAt)
	o.CancelReason = cancelReason.String
	o.CreatedAt = createdAt.Time
	return &o, nil
}

var _ secondary.RepairOrderRepository = (*RepairOrderRepository)(nil)
