package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/garage/internal/core/feedback"
	"github.com/example/garage/internal/core/repairorder"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// FeedbackServiceImpl implements the FeedbackService interface.
type FeedbackServiceImpl struct {
	feedbackRepo secondary.FeedbackRepository
	orderRepo    secondary.RepairOrderRepository
	newID        func() string
}

// NewFeedbackService creates a new FeedbackService with injected dependencies.
func NewFeedbackService(feedbackRepo secondary.FeedbackRepository, orderRepo secondary.RepairOrderRepository) *FeedbackServiceImpl {
	return &FeedbackServiceImpl{feedbackRepo: feedbackRepo, orderRepo: orderRepo, newID: newID}
}

// LeaveFeedback records the customer's rating of a completed order.
func (s *FeedbackServiceImpl) LeaveFeedback(ctx context.Context, orderID, userID string, rating int, comment string) (*primary.Feedback, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	_, err = s.feedbackRepo.GetByOrder(ctx, orderID)
	alreadyRated := err == nil
	if err != nil && !errors.Is(err, secondary.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing feedback: %w", err)
	}

	// Guard: valid rating, completed order, one feedback per order
	guardCtx := feedback.CreateContext{
		RepairOrderID: orderID,
		Rating:        rating,
		OrderStatusID: order.OrderStatusID,
		CompletedID:   repairorder.OrderStatusCompleted,
		AlreadyRated:  alreadyRated,
	}
	if result := feedback.CanCreate(guardCtx); !result.Allowed {
		return nil, result.Error()
	}

	record := &secondary.FeedbackRecord{
		ID:            s.newID(),
		RepairOrderID: orderID,
		UserID:        userID,
		Rating:        rating,
		Comment:       comment,
	}
	if err := s.feedbackRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to leave feedback: %w", err)
	}
	return s.GetFeedback(ctx, orderID)
}

// GetFeedback retrieves the feedback of an order.
func (s *FeedbackServiceImpl) GetFeedback(ctx context.Context, orderID string) (*primary.Feedback, error) {
	record, err := s.feedbackRepo.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &primary.Feedback{
		ID:            record.ID,
		RepairOrderID: record.RepairOrderID,
		UserID:        record.UserID,
		Rating:        record.Rating,
		Comment:       record.Comment,
		CreatedAt:     record.CreatedAt,
	}, nil
}

// Ensure FeedbackServiceImpl implements the interface.
var _ primary.FeedbackService = (*FeedbackServiceImpl)(nil)
