// Package feedback contains the rules for customer feedback on repair orders.
package feedback

import "fmt"

const (
	MinRating = 1
	MaxRating = 5
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CreateContext provides context for leaving feedback.
type CreateContext struct {
	RepairOrderID string
	Rating        int
	OrderStatusID int
	CompletedID   int // status id that counts as completed
	AlreadyRated  bool
}

// CanCreate evaluates new feedback.
// Rules: the rating is 1-5, the order is completed, and it has no feedback yet.
func CanCreate(ctx CreateContext) GuardResult {
	if ctx.Rating < MinRating || ctx.Rating > MaxRating {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("rating %d is outside %d-%d", ctx.Rating, MinRating, MaxRating)}
	}
	if ctx.AlreadyRated {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("repair order %s already has feedback", ctx.RepairOrderID)}
	}
	if ctx.OrderStatusID != ctx.CompletedID {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("repair order %s is not completed", ctx.RepairOrderID)}
	}
	return GuardResult{Allowed: true}
}
