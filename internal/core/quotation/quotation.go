// Package quotation contains the pure business logic for quotations:
// origin rules, totals with promotion discounts, and status transitions.
// This is part of the Functional Core - no I/O, only pure functions.
package quotation

import (
	"fmt"
	"time"

	"github.com/example/garage/internal/core/money"
)

// Status is the state of a quotation.
type Status string

const (
	StatusPending  Status = "pending"
	StatusSent     Status = "sent"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Discount types of a promotion.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

var transitions = map[Status][]Status{
	StatusPending: {StatusSent, StatusExpired},
	StatusSent:    {StatusApproved, StatusRejected, StatusExpired},
}

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

// OriginContext names what a quotation was raised from.
type OriginContext struct {
	InspectionID    string
	RepairOrderID   string
	RepairRequestID string
}

// HasOrigin evaluates whether a new quotation has at least one origin.
// The store clears origins on delete, so the rule applies to creation only.
func HasOrigin(ctx OriginContext) GuardResult {
	if ctx.InspectionID == "" && ctx.RepairOrderID == "" && ctx.RepairRequestID == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "quotation needs an inspection, repair order or repair request to originate from",
		}
	}
	return GuardResult{Allowed: true}
}

// Part is a part line under a service line.
type Part struct {
	Quantity       int
	UnitPriceCents int64
	IsSelected     bool
}

// Line is a service line of a quotation.
type Line struct {
	PriceCents int64
	IsSelected bool
	IsRequired bool
	Parts      []Part
}

// Included reports whether the line counts toward the subtotal.
func (l Line) Included() bool {
	return l.IsSelected || l.IsRequired
}

// Subtotal sums included service lines and their selected parts. It fails
// when a part line or the running total leaves decimal(18,2).
func Subtotal(lines []Line) (int64, error) {
	var total int64
	for _, l := range lines {
		if !l.Included() {
			continue
		}
		var err error
		if total, err = money.Add(total, l.PriceCents); err != nil {
			return 0, err
		}
		for _, p := range l.Parts {
			if !p.IsSelected {
				continue
			}
			amount, err := money.Multiply(p.UnitPriceCents, p.Quantity)
			if err != nil {
				return 0, err
			}
			if total, err = money.Add(total, amount); err != nil {
				return 0, err
			}
		}
	}
	return total, nil
}

// PromotionTerms is the subset of a promotion the discount depends on.
type PromotionTerms struct {
	Code                string
	DiscountType        string
	DiscountPercent     int
	DiscountAmountCents int64
	MaxDiscountCents    int64 // 0 means uncapped
	MinOrderCents       int64
	StartsAt            time.Time
	EndsAt              *time.Time
	UsageLimit          *int
	UsedCount           int
	IsActive            bool
}

// CanApplyPromotion evaluates whether promo applies to subtotal at now.
func CanApplyPromotion(promo PromotionTerms, subtotal int64, now time.Time) GuardResult {
	switch {
	case !promo.IsActive:
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("promotion %s is not active", promo.Code)}
	case now.Before(promo.StartsAt):
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("promotion %s has not started", promo.Code)}
	case promo.EndsAt != nil && !now.Before(*promo.EndsAt):
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("promotion %s has ended", promo.Code)}
	case promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit:
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("promotion %s has reached its usage limit", promo.Code)}
	case subtotal < promo.MinOrderCents:
		return GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("promotion %s requires a minimum order of %s",
				promo.Code, money.Format(promo.MinOrderCents)),
		}
	}
	return GuardResult{Allowed: true}
}

// Discount returns the discount promo grants on subtotal, never more than subtotal.
func Discount(promo PromotionTerms, subtotal int64) int64 {
	var d int64
	switch promo.DiscountType {
	case DiscountPercentage:
		d = money.Percent(subtotal, promo.DiscountPercent)
		if promo.MaxDiscountCents > 0 && d > promo.MaxDiscountCents {
			d = promo.MaxDiscountCents
		}
	case DiscountFixed:
		d = promo.DiscountAmountCents
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}

// Totals are the stored amounts of a quotation.
type Totals struct {
	SubtotalCents int64
	DiscountCents int64
	TotalCents    int64
}

// ComputeTotals prices lines and applies promo when it is eligible.
// An ineligible promotion is reported through the guard result and ignored.
func ComputeTotals(lines []Line, promo *PromotionTerms, now time.Time) (Totals, GuardResult, error) {
	subtotal, err := Subtotal(lines)
	if err != nil {
		return Totals{}, GuardResult{}, err
	}
	t := Totals{SubtotalCents: subtotal}
	res := GuardResult{Allowed: true}
	if promo != nil {
		res = CanApplyPromotion(*promo, t.SubtotalCents, now)
		if res.Allowed {
			t.DiscountCents = Discount(*promo, t.SubtotalCents)
		}
	}
	t.TotalCents = t.SubtotalCents - t.DiscountCents
	return t, res, nil
}

// CanTransition evaluates a quotation status change.
func CanTransition(quotationID string, from, to Status) GuardResult {
	for _, next := range transitions[from] {
		if next == to {
			return GuardResult{Allowed: true}
		}
	}
	return GuardResult{
		Allowed: false,
		Reason:  fmt.Sprintf("quotation %s cannot move from %s to %s", quotationID, from, to),
	}
}

// SendContext provides context for sending a quotation to the customer.
type SendContext struct {
	QuotationID string
	Status      Status
	LineCount   int
}

// CanSend evaluates whether the quotation can be sent.
// Rule: a pending quotation with at least one service line.
func CanSend(ctx SendContext) GuardResult {
	if r := CanTransition(ctx.QuotationID, ctx.Status, StatusSent); !r.Allowed {
		return r
	}
	if ctx.LineCount == 0 {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("quotation %s has no service lines", ctx.QuotationID)}
	}
	return GuardResult{Allowed: true}
}

// RespondContext provides context for recording the customer's answer.
type RespondContext struct {
	QuotationID string
	Status      Status
	ValidUntil  *time.Time
	Now         time.Time
	Approve     bool
}

// CanRespond evaluates whether the customer's answer can be recorded.
// Rule: the quotation must be sent and still valid.
func CanRespond(ctx RespondContext) GuardResult {
	to := StatusRejected
	if ctx.Approve {
		to = StatusApproved
	}
	if r := CanTransition(ctx.QuotationID, ctx.Status, to); !r.Allowed {
		return r
	}
	if ctx.ValidUntil != nil && ctx.Now.After(*ctx.ValidUntil) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("quotation %s expired on %s", ctx.QuotationID, ctx.ValidUntil.Format("2006-01-02"))}
	}
	return GuardResult{Allowed: true}
}
