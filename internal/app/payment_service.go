package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/garage/internal/core/money"
	"github.com/example/garage/internal/core/repairorder"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// Payment states written by the service.
const (
	paymentPending = "pending"
	paymentPaid    = "paid"
	paymentFailed  = "failed"
)

// PaymentServiceImpl implements the PaymentService interface.
type PaymentServiceImpl struct {
	paymentRepo secondary.PaymentRepository
	orderRepo   secondary.RepairOrderRepository
	logger      *zap.Logger
	newID       func() string
	now         func() time.Time
}

// NewPaymentService creates a new PaymentService with injected dependencies.
func NewPaymentService(paymentRepo secondary.PaymentRepository, orderRepo secondary.RepairOrderRepository, logger *zap.Logger) *PaymentServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentServiceImpl{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		logger:      logger,
		newID:       newID,
		now:         utcNow,
	}
}

// RecordPayment records a pending payment against an active order.
func (s *PaymentServiceImpl) RecordPayment(ctx context.Context, req primary.RecordPaymentRequest) (*primary.Payment, error) {
	order, err := s.orderRepo.GetByID(ctx, req.RepairOrderID)
	if err != nil {
		return nil, err
	}

	// Guard: payments only against active orders
	if result := repairorder.CanModify(stateOf(order)); !result.Allowed {
		return nil, result.Error()
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}

	record := &secondary.PaymentRecord{
		ID:            s.newID(),
		RepairOrderID: req.RepairOrderID,
		UserID:        req.UserID,
		AmountCents:   amount,
		Method:        req.Method,
		Status:        paymentPending,
		OrderCode:     req.OrderCode,
	}
	if err := s.paymentRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	return recordToPayment(record), nil
}

// MarkPaid settles a payment and refreshes the order's paid status.
func (s *PaymentServiceImpl) MarkPaid(ctx context.Context, paymentID string) (*primary.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != paymentPending {
		return nil, fmt.Errorf("payment %s is %s", paymentID, payment.Status)
	}

	paidAt := s.now()
	if err := s.paymentRepo.UpdateStatus(ctx, paymentID, paymentPaid, &paidAt); err != nil {
		return nil, fmt.Errorf("failed to settle payment: %w", err)
	}

	order, err := s.orderRepo.GetByID(ctx, payment.RepairOrderID)
	if err != nil {
		return nil, err
	}
	paid, err := s.paymentRepo.SumPaid(ctx, payment.RepairOrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to total payments: %w", err)
	}
	status := repairorder.ComputePaidStatus(paid, order.CostCents)
	if err := s.orderRepo.UpdatePayment(ctx, order.ID, paid, string(status)); err != nil {
		return nil, fmt.Errorf("failed to update order payment: %w", err)
	}

	s.logger.Info("payment settled",
		zap.String("payment_id", paymentID),
		zap.String("order_id", order.ID),
		zap.String("paid", money.Format(paid)),
		zap.String("paid_status", string(status)),
	)

	payment.Status = paymentPaid
	payment.PaidAt = &paidAt
	return recordToPayment(payment), nil
}

// MarkFailed marks a payment failed.
func (s *PaymentServiceImpl) MarkFailed(ctx context.Context, paymentID string) error {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.Status != paymentPending {
		return fmt.Errorf("payment %s is %s", paymentID, payment.Status)
	}
	return s.paymentRepo.UpdateStatus(ctx, paymentID, paymentFailed, nil)
}

// ListPayments retrieves the payments of an order.
func (s *PaymentServiceImpl) ListPayments(ctx context.Context, orderID string) ([]*primary.Payment, error) {
	records, err := s.paymentRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	out := make([]*primary.Payment, len(records))
	for i, r := range records {
		out[i] = recordToPayment(r)
	}
	return out, nil
}

func recordToPayment(r *secondary.PaymentRecord) *primary.Payment {
	return &primary.Payment{
		ID:            r.ID,
		RepairOrderID: r.RepairOrderID,
		AmountCents:   r.AmountCents,
		Method:        r.Method,
		Status:        r.Status,
		OrderCode:     r.OrderCode,
		PaidAt:        r.PaidAt,
	}
}

// Ensure PaymentServiceImpl implements the interface.
var _ primary.PaymentService = (*PaymentServiceImpl)(nil)
