package primary

import (
	"context"
	"time"
)

// QuotationService defines the primary port for quotations.
type QuotationService interface {
	// CreateQuotation prices the lines from the catalog, applies the promotion
	// when eligible and stores the quotation. At least one origin is required.
	CreateQuotation(ctx context.Context, req CreateQuotationRequest) (*Quotation, error)

	// GetQuotation retrieves a quotation with its lines.
	GetQuotation(ctx context.Context, id string) (*Quotation, error)

	// ListQuotations retrieves quotations of a customer or an order.
	ListQuotations(ctx context.Context, customerID, orderID, status string) ([]*Quotation, error)

	// Send sends a pending quotation to the customer.
	Send(ctx context.Context, id string) error

	// Respond records the customer's approval or rejection.
	Respond(ctx context.Context, id string, approve bool, note string) error

	// Expire expires a quotation the customer never answered.
	Expire(ctx context.Context, id string) error
}

// CreateQuotationRequest contains parameters for creating a quotation.
type CreateQuotationRequest struct {
	InspectionID    string
	RepairOrderID   string
	RepairRequestID string
	CustomerID      string
	PromotionCode   string
	Note            string
	ValidUntil      *time.Time
	Lines           []QuotationLine
}

// QuotationLine is a proposed service with its parts.
type QuotationLine struct {
	ServiceID  string
	IsSelected bool
	IsRequired bool
	Parts      []QuotationPart
}

// QuotationPart is a proposed part under a service line.
type QuotationPart struct {
	PartID      string
	Quantity    int
	IsSelected  bool
	Recommended bool
}

// Quotation represents a quotation at the port boundary.
type Quotation struct {
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
	PromotionNote      string // why a requested promotion was not applied
	ValidUntil         *time.Time
	SentToCustomerAt   *time.Time
	CustomerResponseAt *time.Time
	Lines              []QuotationLine
}

// PromotionService defines the primary port for promotions.
type PromotionService interface {
	// CreatePromotion creates a promotion.
	CreatePromotion(ctx context.Context, req CreatePromotionRequest) (*Promotion, error)

	// GetPromotion retrieves a promotion by code.
	GetPromotion(ctx context.Context, code string) (*Promotion, error)
}

// CreatePromotionRequest contains parameters for creating a promotion.
// Exactly one of DiscountPercent and DiscountAmount applies, per DiscountType.
type CreatePromotionRequest struct {
	Code            string
	Name            string
	DiscountType    string // "percentage" or "fixed"
	DiscountPercent int
	DiscountAmount  string
	MaxDiscount     string
	MinOrder        string
	StartsAt        time.Time
	EndsAt          *time.Time
	UsageLimit      *int
}

// Promotion represents a promotion at the port boundary.
type Promotion struct {
	ID                  string
	Code                string
	Name                string
	DiscountType        string
	DiscountPercent     int
	DiscountAmountCents int64
	UsageLimit          *int
	UsedCount           int
	IsActive            bool
}

// PaymentService defines the primary port for order payments.
type PaymentService interface {
	// RecordPayment records a pending payment against an active order.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*Payment, error)

	// MarkPaid settles a payment and refreshes the order's paid status.
	MarkPaid(ctx context.Context, paymentID string) (*Payment, error)

	// MarkFailed marks a payment failed.
	MarkFailed(ctx context.Context, paymentID string) error

	// ListPayments retrieves the payments of an order.
	ListPayments(ctx context.Context, orderID string) ([]*Payment, error)
}

// RecordPaymentRequest contains parameters for recording a payment.
type RecordPaymentRequest struct {
	RepairOrderID string
	UserID        string
	Amount        string
	Method        string
	OrderCode     int64
}

// Payment represents a payment at the port boundary.
type Payment struct {
	ID            string
	RepairOrderID string
	AmountCents   int64
	Method        string
	Status        string
	OrderCode     int64
	PaidAt        *time.Time
}

// FeedbackService defines the primary port for order feedback.
type FeedbackService interface {
	// LeaveFeedback records the customer's rating of a completed order.
	LeaveFeedback(ctx context.Context, orderID, userID string, rating int, comment string) (*Feedback, error)

	// GetFeedback retrieves the feedback of an order.
	GetFeedback(ctx context.Context, orderID string) (*Feedback, error)
}

// Feedback represents order feedback at the port boundary.
type Feedback struct {
	ID            string
	RepairOrderID string
	UserID        string
	Rating        int
	Comment       string
	CreatedAt     time.Time
}
