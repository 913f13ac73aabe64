package secondary

import (
	"context"
	"time"
)

// QuotationRepository defines the secondary port for quotations.
type QuotationRepository interface {
	// Create persists a quotation with its service lines and their parts in one
	// transaction. A non-nil usage is recorded, and the promotion's used count
	// incremented, inside the same transaction.
	Create(ctx context.Context, q *QuotationRecord, lines []*QuotationServiceRecord, usage *VoucherUsageRecord) error

	// GetByID retrieves a quotation by ID.
	GetByID(ctx context.Context, id string) (*QuotationRecord, error)

	// List retrieves quotations matching the given filters.
	List(ctx context.Context, filters QuotationFilters) ([]*QuotationRecord, error)

	// ListLines retrieves the service lines of a quotation with their parts.
	ListLines(ctx context.Context, quotationID string) ([]*QuotationServiceRecord, error)

	// MarkSent moves a quotation to sent.
	MarkSent(ctx context.Context, id string, at time.Time) error

	// RecordResponse stores the customer's answer.
	RecordResponse(ctx context.Context, id, status, customerNote string, at time.Time) error

	// UpdateStatus sets the status without touching timestamps.
	UpdateStatus(ctx context.Context, id, status string) error
}

// QuotationRecord represents a quotation as stored in persistence.
type QuotationRecord struct {
	ID                 string
	InspectionID       string
	RepairOrderID      string
	RepairRequestID    string
	CustomerID         string
	AppliedPromotionID string
	Status             string
	SubtotalCents      int64
	DiscountCents      int64
	TotalCents         int64
	Note               string
	CustomerNote       string
	ValidUntil         *time.Time
	SentToCustomerAt   *time.Time
	CustomerResponseAt *time.Time
	CreatedAt          time.Time
}

// QuotationFilters contains filter options for querying quotations.
type QuotationFilters struct {
	CustomerID    string
	RepairOrderID string
	Status        string
}

// QuotationServiceRecord is a service line of a quotation.
type QuotationServiceRecord struct {
	ID          string
	QuotationID string
	ServiceID   string
	PriceCents  int64
	IsSelected  bool
	IsRequired  bool
	Parts       []*QuotationServicePartRecord
}

// QuotationServicePartRecord is a part proposed under a service line.
type QuotationServicePartRecord struct {
	ID                      string
	QuotationServiceID      string
	PartID                  string
	Quantity                int
	UnitPriceCents          int64
	IsSelected              bool
	RecommendedByTechnician bool
}

// PromotionRepository defines the secondary port for promotions and voucher usage.
type PromotionRepository interface {
	// Create persists a new promotion.
	Create(ctx context.Context, p *PromotionRecord) error

	// GetByID retrieves a promotion by ID.
	GetByID(ctx context.Context, id string) (*PromotionRecord, error)

	// GetByCode retrieves a promotion by its code.
	GetByCode(ctx context.Context, code string) (*PromotionRecord, error)

	// RecordUsage stores a voucher usage and increments the promotion's used count
	// in one transaction.
	RecordUsage(ctx context.Context, usage *VoucherUsageRecord) error

	// ListUsages retrieves the usages of a promotion.
	ListUsages(ctx context.Context, promotionID string) ([]*VoucherUsageRecord, error)
}

// PromotionRecord represents a promotion as stored in persistence.
type PromotionRecord struct {
	ID                  string
	Code                string
	Name                string
	Description         string
	DiscountType        string
	DiscountPercent     int
	DiscountAmountCents int64
	MaxDiscountCents    int64
	MinOrderCents       int64
	StartsAt            time.Time
	EndsAt              *time.Time
	UsageLimit          *int
	UsedCount           int
	IsActive            bool
}

// VoucherUsageRecord records one application of a promotion.
type VoucherUsageRecord struct {
	ID            int64
	PromotionID   string
	CustomerID    string
	QuotationID   string
	DiscountCents int64
	UsedAt        time.Time
}

// PaymentRepository defines the secondary port for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, p *PaymentRecord) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*PaymentRecord, error)

	// GetByOrderCode retrieves a payment by its gateway order code.
	GetByOrderCode(ctx context.Context, orderCode int64) (*PaymentRecord, error)

	// ListByOrder retrieves the payments of a repair order.
	ListByOrder(ctx context.Context, orderID string) ([]*PaymentRecord, error)

	// UpdateStatus sets the status; paidAt is stored when non-nil.
	UpdateStatus(ctx context.Context, id, status string, paidAt *time.Time) error

	// SumPaid returns the total of paid payments for an order.
	SumPaid(ctx context.Context, orderID string) (int64, error)
}

// PaymentRecord represents a payment as stored in persistence.
type PaymentRecord struct {
	ID                string
	RepairOrderID     string
	UserID            string
	AmountCents       int64
	Method            string
	Status            string
	OrderCode         int64 // 0 means none
	ProviderReference string
	PaidAt            *time.Time
	CreatedAt         time.Time
}
