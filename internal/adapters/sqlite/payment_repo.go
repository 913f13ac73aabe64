package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/example/garage/internal/ports/secondary"
)

// PromotionRepository implements secondary.PromotionRepository with SQLite.
type PromotionRepository struct {
	db *sql.DB
}

// NewPromotionRepository creates a new SQLite promotion repository.
func NewPromotionRepository(db *sql.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

const promotionColumns = `id, code, name, description, discount_type, discount_percent, discount_amount_cents,
	max_discount_cents, min_order_cents, starts_at, ends_at, usage_limit, used_count, is_active`

// Create persists a new promotion.
func (r *PromotionRepository) Create(ctx context.Context, p *secondary.PromotionRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO promotions (id, code, name, description, discount_type, discount_percent, discount_amount_cents,
		 max_discount_cents, min_order_cents, starts_at, ends_at, usage_limit, used_count, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Code, p.Name, nullString(p.Description), p.DiscountType, nullInt64(int64(p.DiscountPercent)),
		nullInt64(p.DiscountAmountCents), nullInt64(p.MaxDiscountCents), p.MinOrderCents, p.StartsAt.UTC(),
		nullTime(p.EndsAt), nullIntPtr(p.UsageLimit), p.UsedCount, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create promotion: %w", translate(err, "promotions"))
	}
	return nil
}

// GetByID retrieves a promotion by ID.
func (r *PromotionRepository) GetByID(ctx context.Context, id string) (*secondary.PromotionRecord, error) {
	return r.getBy(ctx, "id", id)
}

// GetByCode retrieves a promotion by its code.
func (r *PromotionRepository) GetByCode(ctx context.Context, code string) (*secondary.PromotionRecord, error) {
	return r.getBy(ctx, "code", code)
}

func (r *PromotionRepository) getBy(ctx context.Context, column, value string) (*secondary.PromotionRecord, error) {
	var (
		p                          secondary.PromotionRecord
		description                sql.NullString
		percent, amount, maxAmount sql.NullInt64
		limit                      sql.NullInt64
		endsAt                     sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, "SELECT "+promotionColumns+" FROM promotions WHERE "+column+" = ?", value).Scan(
		&p.ID, &p.Code, &p.Name, &description, &p.DiscountType, &percent, &amount, &maxAmount,
		&p.MinOrderCents, &p.StartsAt, &endsAt, &limit, &p.UsedCount, &p.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, notFound("promotion", value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promotion: %w", err)
	}
	p.Description = description.String
	p.DiscountPercent = int(percent.Int64)
	p.DiscountAmountCents = amount.Int64
	p.MaxDiscountCents = maxAmount.Int64
	p.EndsAt = timePtr(endsAt)
	p.UsageLimit = intPtr(limit)
	return &p, nil
}

// RecordUsage stores a voucher usage and increments the promotion's used count
// in one transaction. The usage-limit CHECK rejects the increment once exhausted.
func (r *PromotionRepository) RecordUsage(ctx context.Context, usage *secondary.VoucherUsageRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := recordUsage(ctx, tx, usage); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit voucher usage: %w", err)
	}
	return nil
}

// recordUsage inserts the usage row and bumps used_count inside tx. usage
// receives its id and timestamp; callers must not rely on them unless tx commits.
func recordUsage(ctx context.Context, tx *sql.Tx, usage *secondary.VoucherUsageRecord) error {
	usedAt := usage.UsedAt
	if usedAt.IsZero() {
		usedAt = now()
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO voucher_usages (promotion_id, customer_id, quotation_id, discount_cents, used_at) VALUES (?, ?, ?, ?, ?)",
		usage.PromotionID, usage.CustomerID, nullString(usage.QuotationID), usage.DiscountCents, usedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record voucher usage: %w", translate(err, "voucher_usages"))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read voucher usage id: %w", err)
	}

	res, err = tx.ExecContext(ctx, "UPDATE promotions SET used_count = used_count + 1 WHERE id = ?", usage.PromotionID)
	if err != nil {
		return fmt.Errorf("failed to increment promotion usage: %w", translate(err, "promotions"))
	}
	if err := requireAffected(res, "promotion", usage.PromotionID); err != nil {
		return err
	}
	usage.ID = id
	usage.UsedAt = usedAt
	return nil
}

// ListUsages retrieves the usages of a promotion.
func (r *PromotionRepository) ListUsages(ctx context.Context, promotionID string) ([]*secondary.VoucherUsageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, promotion_id, customer_id, quotation_id, discount_cents, used_at
		 FROM voucher_usages WHERE promotion_id = ? ORDER BY id`, promotionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list voucher usages: %w", err)
	}
	defer rows.Close()

	var out []*secondary.VoucherUsageRecord
	for rows.Next() {
		var (
			u         secondary.VoucherUsageRecord
			quotation sql.NullString
			usedAt    sql.NullTime
		)
		if err := rows.Scan(&u.ID, &u.PromotionID, &u.CustomerID, &quotation, &u.DiscountCents, &usedAt); err != nil {
			return nil, fmt.Errorf("failed to scan voucher usage: %w", err)
		}
		u.QuotationID = quotation.String
		u.UsedAt = usedAt.Time
		out = append(out, &u)
	}
	return out, rows.Err()
}

var _ secondary.PromotionRepository = (*PromotionRepository)(nil)

// PaymentRepository implements secondary.PaymentRepository with SQLite.
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new SQLite payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = "id, repair_order_id, user_id, amount_cents, method, status, order_code, provider_reference, paid_at, created_at"

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p *secondary.PaymentRecord) error {
	status := p.Status
	if status == "" {
		status = "pending"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (id, repair_order_id, user_id, amount_cents, method, status, order_code, provider_reference, paid_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.RepairOrderID, p.UserID, p.AmountCents, p.Method, status, nullInt64(p.OrderCode),
		nullString(p.ProviderReference), nullTime(p.PaidAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", translate(err, "payments"))
	}
	return nil
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*secondary.PaymentRecord, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, notFound("payment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// GetByOrderCode retrieves a payment by its gateway order code.
func (r *PaymentRepository) GetByOrderCode(ctx context.Context, orderCode int64) (*secondary.PaymentRecord, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE order_code = ?", orderCode))
	if err == sql.ErrNoRows {
		return nil, notFound("payment", strconv.FormatInt(orderCode, 10))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// ListByOrder retrieves the payments of a repair order.
func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID string) ([]*secondary.PaymentRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE repair_order_id = ? ORDER BY created_at, rowid", orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var out []*secondary.PaymentRecord
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateStatus sets the status; paidAt is stored when non-nil.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id, status string, paidAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE payments SET status = ?, paid_at = COALESCE(?, paid_at), updated_at = ? WHERE id = ?",
		status, nullTime(paidAt), now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", translate(err, "payments"))
	}
	return requireAffected(res, "payment", id)
}

// SumPaid returns the total of paid payments for an order.
func (r *PaymentRepository) SumPaid(ctx context.Context, orderID string) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE repair_order_id = ? AND status = 'paid'", orderID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}

func scanPayment(s rowScanner) (*secondary.PaymentRecord, error) {
	var (
		p               secondary.PaymentRecord
		orderCode       sql.NullInt64
		reference       sql.NullString
		paidAt, created sql.NullTime
	)
	err := s.Scan(&p.ID, &p.RepairOrderID, &p.UserID, &p.AmountCents, &p.Method, &p.Status,
		&orderCode, &reference, &paidAt, &created)
	if err != nil {
		return nil, err
	}
	p.OrderCode = orderCode.Int64
	p.ProviderReference = reference.String
	p.PaidAt = timePtr(paidAt)
	p.CreatedAt = created.Time
	return &p, nil
}

var _ secondary.PaymentRepository = (*PaymentRepository)(nil)
