package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/garage/internal/ports/secondary"
)

// QuotationRepository implements secondary.QuotationRepository with SQLite.
type QuotationRepository struct {
	db *sql.DB
}

// NewQuotationRepository creates a new SQLite quotation repository.
func NewQuotationRepository(db *sql.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

const quotationColumns = `id, inspection_id, repair_order_id, repair_request_id, customer_id, applied_promotion_id, status,
	subtotal_cents, discount_cents, total_cents, note, customer_note, valid_until, sent_to_customer_at,
	customer_response_at, created_at`

// Create persists a quotation with its service lines and their parts in one
// transaction. A non-nil usage is recorded against the applied promotion in
// the same transaction, so an exhausted promotion leaves no quotation behind.
func (r *QuotationRepository) Create(ctx context.Context, q *secondary.QuotationRecord, lines []*secondary.QuotationServiceRecord, usage *secondary.VoucherUsageRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status := q.Status
	if status == "" {
		status = "pending"
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO quotations (id, inspection_id, repair_order_id, repair_request_id, customer_id, applied_promotion_id,
		 status, subtotal_cents, discount_cents, total_cents, note, valid_until)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, nullString(q.InspectionID), nullString(q.RepairOrderID), nullString(q.RepairRequestID), q.CustomerID,
		nullString(q.AppliedPromotionID), status, q.SubtotalCents, q.DiscountCents, q.TotalCents, nullString(q.Note),
		nullTime(q.ValidUntil),
	)
	if err != nil {
		return fmt.Errorf("failed to create quotation: %w", translate(err, "quotations"))
	}

	for _, line := range lines {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO quotation_services (id, quotation_id, service_id, price_cents, is_selected, is_required)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			line.ID, q.ID, line.ServiceID, line.PriceCents, line.IsSelected, line.IsRequired,
		)
		if err != nil {
			return fmt.Errorf("failed to add quotation line: %w", translate(err, "quotation_services"))
		}
		for _, p := range line.Parts {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO quotation_service_parts (id, quotation_service_id, part_id, quantity, unit_price_cents,
				 is_selected, recommended_by_technician) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				p.ID, line.ID, p.PartID, p.Quantity, p.UnitPriceCents, p.IsSelected, p.RecommendedByTechnician,
			)
			if err != nil {
				return fmt.Errorf("failed to add quotation part: %w", translate(err, "quotation_service_parts"))
			}
		}
	}

	if usage != nil {
		usage.QuotationID = q.ID
		if err := recordUsage(ctx, tx, usage); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a quotation by ID.
func (r *QuotationRepository) GetByID(ctx context.Context, id string) (*secondary.QuotationRecord, error) {
	q, err := scanQuotation(r.db.QueryRowContext(ctx, "SELECT "+quotationColumns+" FROM quotations WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, notFound("quotation", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	return q, nil
}

// List retrieves quotations matching the given filters.
func (r *QuotationRepository) List(ctx context.Context, filters secondary.QuotationFilters) ([]*secondary.QuotationRecord, error) {
	query := "SELECT " + quotationColumns + " FROM quotations WHERE 1=1"
	args := []any{}

	if filters.CustomerID != "" {
		query += " AND customer_id = ?"
		args = append(args, filters.CustomerID)
	}
	if filters.RepairOrderID != "" {
		query += " AND repair_order_id = ?"
		args = append(args, filters.RepairOrderID)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	defer rows.Close()

	var out []*secondary.QuotationRecord
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quotation: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ListLines retrieves the service lines of a quotation with their parts.
func (r *QuotationRepository) ListLines(ctx context.Context, quotationID string) ([]*secondary.QuotationServiceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, quotation_id, service_id, price_cents, is_selected, is_required
		 FROM quotation_services WHERE quotation_id = ? ORDER BY rowid`, quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotation lines: %w", err)
	}

	var lines []*secondary.QuotationServiceRecord
	byID := map[string]*secondary.QuotationServiceRecord{}
	for rows.Next() {
		var l secondary.QuotationServiceRecord
		if err := rows.Scan(&l.ID, &l.QuotationID, &l.ServiceID, &l.PriceCents, &l.IsSelected, &l.IsRequired); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan quotation line: %w", err)
		}
		lines = append(lines, &l)
		byID[l.ID] = &l
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	parts, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.quotation_service_id, p.part_id, p.quantity, p.unit_price_cents, p.is_selected, p.recommended_by_technician
		 FROM quotation_service_parts p JOIN quotation_services s ON s.id = p.quotation_service_id
		 WHERE s.quotation_id = ? ORDER BY p.rowid`, quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotation parts: %w", err)
	}
	defer parts.Close()

	for parts.Next() {
		var p secondary.QuotationServicePartRecord
		if err := parts.Scan(&p.ID, &p.QuotationServiceID, &p.PartID, &p.Quantity, &p.UnitPriceCents,
			&p.IsSelected, &p.RecommendedByTechnician); err != nil {
			return nil, fmt.Errorf("failed to scan quotation part: %w", err)
		}
		if line, ok := byID[p.QuotationServiceID]; ok {
			line.Parts = append(line.Parts, &p)
		}
	}
	return lines, parts.Err()
}

// MarkSent moves a quotation to sent.
func (r *QuotationRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE quotations SET status = 'sent', sent_to_customer_at = ?, updated_at = ? WHERE id = ?",
		at.UTC(), now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark quotation sent: %w", translate(err, "quotations"))
	}
	return requireAffected(res, "quotation", id)
}

// RecordResponse stores the customer's answer.
func (r *QuotationRepository) RecordResponse(ctx context.Context, id, status, customerNote string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE quotations SET status = ?, customer_note = ?, customer_response_at = ?, updated_at = ?
		 WHERE id = ?`,
		status, nullString(customerNote), at.UTC(), now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to record quotation response: %w", translate(err, "quotations"))
	}
	return requireAffected(res, "quotation", id)
}

// UpdateStatus sets the status without touching timestamps.
func (r *QuotationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE quotations SET status = ?, updated_at = ? WHERE id = ?", status, now(), id)
	if err != nil {
		return fmt.Errorf("failed to update quotation: %w", translate(err, "quotations"))
	}
	return requireAffected(res, "quotation", id)
}

func scanQuotation(s rowScanner) (*secondary.QuotationRecord, error) {
	var (
		q                                        secondary.QuotationRecord
		inspection, order, request, promo        sql.NullString
		note, customerNote                       sql.NullString
		validUntil, sentAt, respondedAt, created sql.NullTime
	)
	err := s.Scan(&q.ID, &inspection, &order, &request, &q.CustomerID, &promo, &q.Status,
		&q.SubtotalCents, &q.DiscountCents, &q.TotalCents, &note, &customerNote,
		&validUntil, &sentAt, &respondedAt, &created)
	if err != nil {
		return nil, err
	}
	q.InspectionID = inspection.String
	q.RepairOrderID = order.String
	q.RepairRequestID = request.String
	q.AppliedPromotionID = promo.String
	q.Note = note.String
	q.CustomerNote = customerNote.String
	q.ValidUntil = timePtr(validUntil)
	q.SentToCustomerAt = timePtr(sentAt)
	q.CustomerResponseAt = timePtr(respondedAt)
	q.CreatedAt = created.Time
	return &q, nil
}

var _ secondary.QuotationRepository = (*QuotationRepository)(nil)
