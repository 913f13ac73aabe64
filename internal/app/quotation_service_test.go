package app

import (
	"context"
	"testing"
	"time"

	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

var quoteNow = time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)

func newTestQuotationService() (*QuotationServiceImpl, *mockQuotationRepository, *mockPromotionRepository) {
	quotations := newMockQuotationRepository()
	promotions := newMockPromotionRepository()
	quotations.promotions = promotions
	catalog := newMockServiceCatalogRepository()
	catalog.services["SVC-PAINT"] = &secondary.ServiceRecord{ID: "SVC-PAINT", PriceCents: 300000}
	catalog.services["SVC-WASH"] = &secondary.ServiceRecord{ID: "SVC-WASH", PriceCents: 5000}
	parts := newMockPartRepository()
	parts.parts["PART-PRIMER"] = &secondary.PartRecord{ID: "PART-PRIMER", PriceCents: 20000}

	service := NewQuotationService(quotations, promotions, catalog, parts, nil)
	service.newID = sequentialIDs("QT")
	service.now = fixedClock(quoteNow)
	return service, quotations, promotions
}

func quotationRequest(code string) primary.CreateQuotationRequest {
	return primary.CreateQuotationRequest{
		RepairOrderID: "RO-1",
		CustomerID:    "USR-1",
		PromotionCode: code,
		Lines: []primary.QuotationLine{
			{ServiceID: "SVC-PAINT", IsRequired: true, Parts: []primary.QuotationPart{
				{PartID: "PART-PRIMER", Quantity: 2, IsSelected: true},
			}},
			{ServiceID: "SVC-WASH"},
		},
	}
}

// ============================================================================
// CreateQuotation Tests
// ============================================================================

func TestCreateQuotation_RequiresOrigin(t *testing.T) {
	service, _, _ := newTestQuotationService()
	req := quotationRequest("")
	req.RepairOrderID = ""

	if _, err := service.CreateQuotation(context.Background(), req); err == nil {
		t.Fatal("expected error for a quotation without origin")
	}
}

func TestCreateQuotation_Totals(t *testing.T) {
	service, _, _ := newTestQuotationService()

	q, err := service.CreateQuotation(context.Background(), quotationRequest(""))
	if err != nil {
		t.Fatalf("CreateQuotation failed: %v", err)
	}
	// required paint line plus two selected primers; the unselected wash is excluded
	if q.SubtotalCents != 340000 || q.DiscountCents != 0 || q.TotalCents != 340000 {
		t.Errorf("unexpected totals %d/%d/%d", q.SubtotalCents, q.DiscountCents, q.TotalCents)
	}
	if q.Status != "pending" || len(q.Lines) != 2 {
		t.Errorf("expected pending quotation with 2 lines, got %q with %d", q.Status, len(q.Lines))
	}
}

func TestCreateQuotation_AppliesPromotion(t *testing.T) {
	service, _, promotions := newTestQuotationService()
	limit := 10
	promotions.promotions["PROMO-1"] = &secondary.PromotionRecord{
		ID: "PROMO-1", Code: "SPRING10", DiscountType: "percentage", DiscountPercent: 10,
		MaxDiscountCents: 25000, StartsAt: quoteNow.Add(-time.Hour), UsageLimit: &limit, IsActive: true,
	}

	q, err := service.CreateQuotation(context.Background(), quotationRequest("spring10"))
	if err != nil {
		t.Fatalf("CreateQuotation failed: %v", err)
	}
	if q.DiscountCents != 25000 || q.TotalCents != 315000 {
		t.Errorf("expected capped discount 250.00 and total 3150.00, got %d and %d", q.DiscountCents, q.TotalCents)
	}
	if q.AppliedPromotionID != "PROMO-1" {
		t.Errorf("expected PROMO-1 applied, got %q", q.AppliedPromotionID)
	}
	if promotions.promotions["PROMO-1"].UsedCount != 1 || len(promotions.usages) != 1 {
		t.Error("expected one voucher usage recorded")
	}
	if promotions.usages[0].QuotationID != q.ID {
		t.Errorf("expected usage tied to %s, got %s", q.ID, promotions.usages[0].QuotationID)
	}
}

func TestCreateQuotation_IneligiblePromotionIgnored(t *testing.T) {
	service, _, promotions := newTestQuotationService()
	ended := quoteNow.Add(-time.Minute)
	promotions.promotions["PROMO-1"] = &secondary.PromotionRecord{
		ID: "PROMO-1", Code: "OLD", DiscountType: "fixed", DiscountAmountCents: 10000,
		StartsAt: quoteNow.Add(-48 * time.Hour), EndsAt: &ended, IsActive: true,
	}

	q, err := service.CreateQuotation(context.Background(), quotationRequest("OLD"))
	if err != nil {
		t.Fatalf("CreateQuotation failed: %v", err)
	}
	if q.DiscountCents != 0 || q.AppliedPromotionID != "" {
		t.Errorf("expected no discount, got %d via %q", q.DiscountCents, q.AppliedPromotionID)
	}
	if q.PromotionNote == "" {
		t.Error("expected a note explaining why the promotion was not applied")
	}
	if len(promotions.usages) != 0 {
		t.Error("an ignored promotion must not record usage")
	}
}

// stalePromotions serves a promotion with no recorded usage, as if the last
// redemption landed after the terms were read.
type stalePromotions struct {
	*mockPromotionRepository
}

func (s stalePromotions) GetByCode(ctx context.Context, code string) (*secondary.PromotionRecord, error) {
	p, err := s.mockPromotionRepository.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	stale := *p
	stale.UsedCount = 0
	return &stale, nil
}

func TestCreateQuotation_PromotionExhaustedConcurrently(t *testing.T) {
	service, quotations, promotions := newTestQuotationService()
	limit := 1
	promotions.promotions["PROMO-1"] = &secondary.PromotionRecord{
		ID: "PROMO-1", Code: "ONCE", DiscountType: "fixed", DiscountAmountCents: 10000,
		StartsAt: quoteNow.Add(-time.Hour), UsageLimit: &limit, UsedCount: 1, IsActive: true,
	}
	service.promotionRepo = stalePromotions{promotions}

	if _, err := service.CreateQuotation(context.Background(), quotationRequest("ONCE")); err == nil {
		t.Fatal("expected error when the promotion ran out before the quotation was stored")
	}
	if len(quotations.quotations) != 0 {
		t.Errorf("expected no quotation stored, got %d", len(quotations.quotations))
	}
	if promotions.promotions["PROMO-1"].UsedCount != 1 || len(promotions.usages) != 0 {
		t.Error("expected promotion usage unchanged")
	}
}

// ============================================================================
// Send and Respond Tests
// ============================================================================

func TestQuotationFlow_SendThenApprove(t *testing.T) {
	service, quotations, _ := newTestQuotationService()
	ctx := context.Background()
	q, err := service.CreateQuotation(ctx, quotationRequest(""))
	if err != nil {
		t.Fatalf("CreateQuotation failed: %v", err)
	}

	if err := service.Respond(ctx, q.ID, true, "go ahead"); err == nil {
		t.Error("expected error answering an unsent quotation")
	}
	if err := service.Send(ctx, q.ID); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := service.Respond(ctx, q.ID, true, "go ahead"); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if got := quotations.quotations[q.ID]; got.Status != "approved" || got.CustomerNote != "go ahead" {
		t.Errorf("expected approved with note, got %q %q", got.Status, got.CustomerNote)
	}
}

func TestQuotationRespond_AfterValidity(t *testing.T) {
	service, _, _ := newTestQuotationService()
	ctx := context.Background()
	req := quotationRequest("")
	validUntil := quoteNow.Add(24 * time.Hour)
	req.ValidUntil = &validUntil
	q, err := service.CreateQuotation(ctx, req)
	if err != nil {
		t.Fatalf("CreateQuotation failed: %v", err)
	}
	if err := service.Send(ctx, q.ID); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	service.now = fixedClock(validUntil.Add(time.Hour))
	if err := service.Respond(ctx, q.ID, true, ""); err == nil {
		t.Fatal("expected error answering an expired quotation")
	}
	if err := service.Expire(ctx, q.ID); err != nil {
		t.Fatalf("Expire failed: %v", err)
	}
}

func TestCreateQuotation_SubtotalOutOfRange(t *testing.T) {
	service, quotations, _ := newTestQuotationService()
	req := quotationRequest("")
	req.Lines[0].Parts[0].Quantity = 1 << 30

	service.partRepo.(*mockPartRepository).parts["PART-PRIMER"].PriceCents = 1 << 40

	if _, err := service.CreateQuotation(context.Background(), req); err == nil {
		t.Fatal("expected error for a subtotal past decimal(18,2)")
	}
	if len(quotations.quotations) != 0 {
		t.Error("no quotation should be stored")
	}
}
