// Package repairorder contains the pure business logic for repair orders.
// This is part of the Functional Core - no I/O, only pure functions.
package repairorder

import (
	"fmt"
	"time"
)

// Lifecycle replaces independent archived/cancelled flags with one value,
// so an order can never be archived and cancelled at once.
type Lifecycle string

const (
	LifecycleActive    Lifecycle = "active"
	LifecycleArchived  Lifecycle = "archived"
	LifecycleCancelled Lifecycle = "cancelled"
)

// Order status ids seeded into order_statuses.
const (
	OrderStatusPending    = 1
	OrderStatusInProgress = 2
	OrderStatusCompleted  = 3
)

// PaidStatus summarises payments against the order cost.
type PaidStatus string

const (
	PaidStatusUnpaid  PaidStatus = "unpaid"
	PaidStatusPartial PaidStatus = "partial"
	PaidStatusPaid    PaidStatus = "paid"
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

// StateContext provides the order state guards need.
type StateContext struct {
	OrderID       string
	Lifecycle     Lifecycle
	OrderStatusID int
}

// CanModify evaluates whether the order accepts new work, status changes or payments.
// Rule: archived and cancelled orders are read-only.
func CanModify(ctx StateContext) GuardResult {
	if ctx.Lifecycle != LifecycleActive {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("repair order %s is %s and cannot be modified", ctx.OrderID, ctx.Lifecycle),
		}
	}
	return GuardResult{Allowed: true}
}

// CanArchive evaluates whether the order can be archived.
// Rule: only active, completed orders are archived.
func CanArchive(ctx StateContext) GuardResult {
	if r := CanModify(ctx); !r.Allowed {
		return r
	}
	if ctx.OrderStatusID != OrderStatusCompleted {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("repair order %s is not completed; cancel it instead of archiving", ctx.OrderID),
		}
	}
	return GuardResult{Allowed: true}
}

// CanCancel evaluates whether the order can be cancelled.
// Rule: completed orders are archived, never cancelled.
func CanCancel(ctx StateContext) GuardResult {
	if r := CanModify(ctx); !r.Allowed {
		return r
	}
	if ctx.OrderStatusID == OrderStatusCompleted {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("repair order %s is completed; archive it instead of cancelling", ctx.OrderID),
		}
	}
	return GuardResult{Allowed: true}
}

// StatusChangeContext provides context for changing the order status.
type StatusChangeContext struct {
	StateContext
	NewStatusID   int
	OpenJobCount  int // jobs neither completed nor cancelled
	KnownStatuses []int
}

// CanChangeStatus evaluates an order status change.
// Rules: the order must be active, the status must exist, and an order with
// open jobs cannot be completed.
func CanChangeStatus(ctx StatusChangeContext) GuardResult {
	if r := CanModify(ctx.StateContext); !r.Allowed {
		return r
	}
	known := false
	for _, id := range ctx.KnownStatuses {
		if id == ctx.NewStatusID {
			known = true
			break
		}
	}
	if !known {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("unknown order status %d", ctx.NewStatusID)}
	}
	if ctx.NewStatusID == OrderStatusCompleted && ctx.OpenJobCount > 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("repair order %s still has %d open job(s)", ctx.OrderID, ctx.OpenJobCount),
		}
	}
	return GuardResult{Allowed: true}
}

// LifecycleTransition is the result of archiving or cancelling.
type LifecycleTransition struct {
	Lifecycle   Lifecycle
	ArchivedAt  *time.Time
	CancelledAt *time.Time
}

// Archive returns the archived state stamped at now.
func Archive(now time.Time) LifecycleTransition {
	return LifecycleTransition{Lifecycle: LifecycleArchived, ArchivedAt: &now}
}

// Cancel returns the cancelled state stamped at now.
func Cancel(now time.Time) LifecycleTransition {
	return LifecycleTransition{Lifecycle: LifecycleCancelled, CancelledAt: &now}
}

// ComputePaidStatus derives the paid status from settled payments.
func ComputePaidStatus(paidCents, costCents int64) PaidStatus {
	switch {
	case paidCents <= 0:
		return PaidStatusUnpaid
	case paidCents < costCents:
		return PaidStatusPartial
	default:
		return PaidStatusPaid
	}
}
