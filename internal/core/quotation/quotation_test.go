package quotation

import (
	"testing"
	"time"
)

func TestHasOrigin(t *testing.T) {
	tests := []struct {
		name        string
		ctx         OriginContext
		wantAllowed bool
	}{
		{"from inspection", OriginContext{InspectionID: "I-1"}, true},
		{"from order", OriginContext{RepairOrderID: "RO-1"}, true},
		{"from request", OriginContext{RepairRequestID: "RR-1"}, true},
		{"no origin", OriginContext{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasOrigin(tt.ctx); got.Allowed != tt.wantAllowed {
				t.Errorf("HasOrigin() allowed = %v, want %v", got.Allowed, tt.wantAllowed)
			}
		})
	}
}

func TestSubtotal(t *testing.T) {
	lines := []Line{
		{PriceCents: 50000, IsSelected: true, Parts: []Part{
			{Quantity: 2, UnitPriceCents: 12500, IsSelected: true},
			{Quantity: 1, UnitPriceCents: 99900, IsSelected: false},
		}},
		{PriceCents: 20000, IsRequired: true},
		{PriceCents: 70000},
	}
	if got, err := Subtotal(lines); err != nil || got != 95000 {
		t.Errorf("Subtotal() = %d, %v, want 95000", got, err)
	}
}

func TestSubtotal_OutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
	}{
		{name: "part line overflows int64", lines: []Line{
			{PriceCents: 1, IsSelected: true, Parts: []Part{{Quantity: 1 << 30, UnitPriceCents: 1 << 40, IsSelected: true}}},
		}},
		{name: "part line exceeds decimal(18,2)", lines: []Line{
			{PriceCents: 1, IsSelected: true, Parts: []Part{{Quantity: 10, UnitPriceCents: 100000000000000000, IsSelected: true}}},
		}},
		{name: "sum exceeds decimal(18,2)", lines: []Line{
			{PriceCents: 999999999999999999, IsRequired: true},
			{PriceCents: 1, IsSelected: true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := Subtotal(tt.lines); err == nil {
				t.Errorf("Subtotal() = %d, want error", got)
			}
		})
	}
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name     string
		promo    PromotionTerms
		subtotal int64
		want     int64
	}{
		{"percentage", PromotionTerms{DiscountType: DiscountPercentage, DiscountPercent: 10}, 100000, 10000},
		{"percentage rounds half away from zero", PromotionTerms{DiscountType: DiscountPercentage, DiscountPercent: 10}, 12345, 1235},
		{"percentage capped", PromotionTerms{DiscountType: DiscountPercentage, DiscountPercent: 50, MaxDiscountCents: 20000}, 100000, 20000},
		{"fixed", PromotionTerms{DiscountType: DiscountFixed, DiscountAmountCents: 15000}, 100000, 15000},
		{"fixed capped by subtotal", PromotionTerms{DiscountType: DiscountFixed, DiscountAmountCents: 15000}, 9000, 9000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Discount(tt.promo, tt.subtotal); got != tt.want {
				t.Errorf("Discount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCanApplyPromotion(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	ended := now.Add(-time.Hour)
	limit := 5
	base := PromotionTerms{
		Code:          "SPRING",
		DiscountType:  DiscountFixed,
		StartsAt:      now.Add(-24 * time.Hour),
		IsActive:      true,
		MinOrderCents: 10000,
	}

	tests := []struct {
		name        string
		mutate      func(p *PromotionTerms)
		subtotal    int64
		wantAllowed bool
	}{
		{"eligible", func(p *PromotionTerms) {}, 20000, true},
		{"inactive", func(p *PromotionTerms) { p.IsActive = false }, 20000, false},
		{"not started", func(p *PromotionTerms) { p.StartsAt = now.Add(time.Hour) }, 20000, false},
		{"ended", func(p *PromotionTerms) { p.EndsAt = &ended }, 20000, false},
		{"usage exhausted", func(p *PromotionTerms) { p.UsageLimit = &limit; p.UsedCount = 5 }, 20000, false},
		{"below minimum order", func(p *PromotionTerms) {}, 5000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			if got := CanApplyPromotion(p, tt.subtotal, now); got.Allowed != tt.wantAllowed {
				t.Errorf("CanApplyPromotion() allowed = %v, want %v (reason %q)", got.Allowed, tt.wantAllowed, got.Reason)
			}
		})
	}
}

func TestComputeTotals(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	lines := []Line{{PriceCents: 100000, IsSelected: true}}

	t.Run("without promotion", func(t *testing.T) {
		totals, res, err := ComputeTotals(lines, nil, now)
		if err != nil || !res.Allowed || totals.TotalCents != 100000 || totals.DiscountCents != 0 {
			t.Errorf("ComputeTotals() = %+v, %+v", totals, res)
		}
	})

	t.Run("with eligible promotion", func(t *testing.T) {
		promo := &PromotionTerms{Code: "TEN", DiscountType: DiscountPercentage, DiscountPercent: 10, StartsAt: now.Add(-time.Hour), IsActive: true}
		totals, res, err := ComputeTotals(lines, promo, now)
		if err != nil || !res.Allowed {
			t.Fatalf("unexpected rejection: %s, %v", res.Reason, err)
		}
		if totals.SubtotalCents != 100000 || totals.DiscountCents != 10000 || totals.TotalCents != 90000 {
			t.Errorf("ComputeTotals() = %+v", totals)
		}
	})

	t.Run("ineligible promotion is ignored", func(t *testing.T) {
		promo := &PromotionTerms{Code: "OFF", DiscountType: DiscountFixed, DiscountAmountCents: 5000, StartsAt: now.Add(-time.Hour)}
		totals, res, _ := ComputeTotals(lines, promo, now)
		if res.Allowed {
			t.Error("expected promotion to be rejected")
		}
		if totals.TotalCents != totals.SubtotalCents-totals.DiscountCents || totals.DiscountCents != 0 {
			t.Errorf("ComputeTotals() = %+v", totals)
		}
	})
}

func TestCanSend(t *testing.T) {
	if r := CanSend(SendContext{QuotationID: "Q-1", Status: StatusPending, LineCount: 2}); !r.Allowed {
		t.Errorf("expected send allowed: %s", r.Reason)
	}
	if r := CanSend(SendContext{QuotationID: "Q-1", Status: StatusPending}); r.Allowed {
		t.Error("expected empty quotation to be rejected")
	}
	if r := CanSend(SendContext{QuotationID: "Q-1", Status: StatusApproved, LineCount: 1}); r.Allowed {
		t.Error("expected approved quotation to be rejected")
	}
}

func TestCanRespond(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name        string
		ctx         RespondContext
		wantAllowed bool
	}{
		{"approve sent quotation", RespondContext{QuotationID: "Q-1", Status: StatusSent, ValidUntil: &future, Now: now, Approve: true}, true},
		{"reject sent quotation", RespondContext{QuotationID: "Q-1", Status: StatusSent, Now: now}, true},
		{"respond to pending quotation", RespondContext{QuotationID: "Q-1", Status: StatusPending, Now: now, Approve: true}, false},
		{"respond after validity", RespondContext{QuotationID: "Q-1", Status: StatusSent, ValidUntil: &past, Now: now, Approve: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanRespond(tt.ctx); got.Allowed != tt.wantAllowed {
				t.Errorf("CanRespond() allowed = %v, want %v (reason %q)", got.Allowed, tt.wantAllowed, got.Reason)
			}
		})
	}
}
