// Package inventory contains the pure stock rules for branch part inventories.
package inventory

import "fmt"

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

// AdjustContext describes a stock movement.
type AdjustContext struct {
	PartID   string
	BranchID string
	Stock    int
	Delta    int
}

// CanAdjust evaluates a stock movement.
// Rule: stock never goes negative.
func CanAdjust(ctx AdjustContext) GuardResult {
	if ctx.Stock+ctx.Delta < 0 {
		return GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("insufficient stock of part %s at branch %s: have %d, need %d",
				ctx.PartID, ctx.BranchID, ctx.Stock, -ctx.Delta),
		}
	}
	return GuardResult{Allowed: true}
}

// NeedsRestock reports whether stock is at or below the minimum.
func NeedsRestock(stock, minStock int) bool {
	return stock <= minStock
}
