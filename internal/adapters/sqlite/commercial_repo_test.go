package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/garage/internal/adapters/sqlite"
	"github.com/example/garage/internal/ports/secondary"
)

func seedPromotion(t *testing.T, repo *sqlite.PromotionRepository, id, code string, limit *int) {
	t.Helper()
	err := repo.Create(context.Background(), &secondary.PromotionRecord{
		ID:              id,
		Code:            code,
		Name:            "Promo " + code,
		DiscountType:    "percentage",
		DiscountPercent: 10,
		StartsAt:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UsageLimit:      limit,
		IsActive:        true,
	})
	if err != nil {
		t.Fatalf("failed to seed promotion: %v", err)
	}
}

func TestQuotationRepository_CreateAndLines(t *testing.T) {
	database := setupTestDB(t)
	w := seedWorkshop(t, database)
	seedInspection(t, database, "INS-1", w.OrderID)
	repo := sqlite.NewQuotationRepository(database)
	ctx := context.Background()

	q := &secondary.QuotationRecord{
		ID: "QUO-1", InspectionID: "INS-1", RepairOrderID: w.OrderID, CustomerID: w.CustomerID,
		SubtotalCents: 740000, DiscountCents: 40000, TotalCents: 700000,
	}
	lines := []*secondary.QuotationServiceRecord{{
		ID: "QS-1", ServiceID: w.ServiceID, PriceCents: 500000, IsSelected: true, IsRequired: true,
		Parts: []*secondary.QuotationServicePartRecord{
			{ID: "QSP-1", PartID: w.PartID, Quantity: 2, UnitPriceCents: 120000, IsSelected: true, RecommendedByTechnician: true},
		},
	}}
	if err := repo.Create(ctx, q, lines, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.ListLines(ctx, "QUO-1")
	if err != nil {
		t.Fatalf("ListLines failed: %v", err)
	}
	if len(got) != 1 || len(got[0].Parts) != 1 || !got[0].IsRequired || !got[0].Parts[0].RecommendedByTechnician {
		t.Fatalf("ListLines = %+v", got)
	}

	// Totals that do not add up are rejected by the store.
	bad := &secondary.QuotationRecord{ID: "QUO-2", CustomerID: w.CustomerID, SubtotalCents: 100, DiscountCents: 10, TotalCents: 100}
	if _, ok := secondary.AsConstraintViolation(repo.Create(ctx, bad, nil, nil), secondary.ConstraintCheck); !ok {
		t.Error("expected inconsistent totals to be rejected")
	}

	at := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	if err := repo.MarkSent(ctx, "QUO-1", at); err != nil {
		t.Fatalf("MarkSent failed: %v", err)
	}
	if err := repo.RecordResponse(ctx, "QUO-1", "approved", "go ahead", at.Add(time.Hour)); err != nil {
		t.Fatalf("RecordResponse failed: %v", err)
	}
	sent, _ := repo.GetByID(ctx, "QUO-1")
	if sent.Status != "approved" || sent.SentToCustomerAt == nil || sent.CustomerResponseAt == nil || sent.CustomerNote != "go ahead" {
		t.Errorf("quotation = %+v", sent)
	}

	list, err := repo.List(ctx, secondary.QuotationFilters{RepairOrderID: w.OrderID, Status: "approved"})
	if err != nil || len(list) != 1 {
		t.Errorf("List = %d, %v", len(list), err)
	}
}

func TestQuotationRepository_OriginsAreClearedNotDeleted(t *testing.T) {
	database := setupTestDB(t)
	w := seedWorkshop(t, database)
	seedInspection(t, database, "INS-1", w.OrderID)
	seedRepairRequest(t, database, "RR-1", w.VehicleID, w.CustomerID, w.BranchID, "2026-03-02", 0)
	repo := sqlite.NewQuotationRepository(database)
	ctx := context.Background()

	q := &secondary.QuotationRecord{ID: "QUO-1", InspectionID: "INS-1", RepairRequestID: "RR-1", CustomerID: w.CustomerID}
	if err := repo.Create(ctx, q, nil, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exec(t, database, "DELETE FROM inspections WHERE id = 'INS-1'")
	exec(t, database, "DELETE FROM repair_requests WHERE id = 'RR-1'")

	got, err := repo.GetByID(ctx, "QUO-1")
	if err != nil {
		t.Fatalf("quotation should survive its origins: %v", err)
	}
	if got.InspectionID != "" || got.RepairRequestID != "" {
		t.Errorf("origins not cleared: %+v", got)
	}
}

func TestQuotationRepository_CreateRecordsUsage(t *testing.T) {
	database := setupTestDB(t)
	w := seedWorkshop(t, database)
	promos := sqlite.NewPromotionRepository(database)
	quotes := sqlite.NewQuotationRepository(database)
	ctx := context.Background()

	limit := 1
	seedPromotion(t, promos, "PROMO-1", "ONCE", &limit)
	quote := func(id string) *secondary.QuotationRecord {
		return &secondary.QuotationRecord{
			ID: id, CustomerID: w.CustomerID, AppliedPromotionID: "PROMO-1",
			SubtotalCents: 10000, DiscountCents: 1000, TotalCents: 9000,
		}
	}
	usage := func() *secondary.VoucherUsageRecord {
		return &secondary.VoucherUsageRecord{PromotionID: "PROMO-1", CustomerID: w.CustomerID, DiscountCents: 1000}
	}

	first := usage()
	if err := quotes.Create(ctx, quote("QUO-1"), nil, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if first.QuotationID != "QUO-1" || first.ID == 0 {
		t.Errorf("usage = %+v", first)
	}

	// The limit was reached by the first quotation; the second is not stored at all.
	err := quotes.Create(ctx, quote("QUO-2"), nil, usage())
	if _, ok := secondary.AsConstraintViolation(err, secondary.ConstraintCheck); !ok {
		t.Fatalf("expected exhausted promotion to be rejected, got %v", err)
	}
	if _, err := quotes.GetByID(ctx, "QUO-2"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("quotation stored without its usage: %v", err)
	}
	if n := count(t, database, "voucher_usages", "promotion_id = 'PROMO-1'"); n != 1 {
		t.Errorf("usages = %d, want 1", n)
	}
}

func TestPromotionRepository_RecordUsage(t *testing.T) {
	database := setupTestDB(t)
	w := seedWorkshop(t, database)
	repo := sqlite.NewPromotionRepository(database)
	ctx := context.Background()

	limit := 1
	seedPromotion(t, repo, "PROMO-1", "ONCE", &limit)

	if err := repo.RecordUsage(ctx, &secondary.VoucherUsageRecord{PromotionID: "PROMO-1", CustomerID: w.CustomerID, DiscountCents: 5000}); err != nil {
		t.Fatalf("RecordUsage failed: %v", err)
	}
	err := repo.RecordUsage(ctx, &secondary.VoucherUsageRecord{PromotionID: "PROMO-1", CustomerID: w.CustomerID, DiscountCents: 5000})
	if _, ok := secondary.AsConstraintViolation(err, secondary.ConstraintCheck); !ok {
		t.Fatalf("expected exhausted promotion to be rejected, got %v", err)
	}

	p, err := repo.GetByCode(ctx, "ONCE")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if p.UsedCount != 1 || p.UsageLimit == nil || *p.UsageLimit != 1 {
		t.Errorf("promotion = %+v", p)
	}
	usages, _ := repo.ListUsages(ctx, "PROMO-1")
	if len(usages) != 1 {
		t.Errorf("rejected usage was stored: %d usages", len(usages))
	}

	if _, err := repo.GetByCode(ctx, "NOPE"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("GetByCode(NOPE) = %v", err)
	}
}

func TestPromotionRepository_OneUsagePerQuotation(t *testing.T) {
	database := setupTestDB(t)
	w := seedWorkshop(t, database)
	promos := sqlite.NewPromotionRepository(database)
	quotes := sqlite.NewQuotationRepository(database)
	ctx := context.Background()

	seedPromotion(t, promos, "PROMO-1", "TET", nil)
	if err := quotes.Create(ctx, &secondary.QuotationRecord{ID: "QUO-1", CustomerID: w.CustomerID}, nil, nil); err != nil {
		t.Fatalf("Create quotation failed: %v", err)
	}

	usage := func() *secondary.VoucherUsageRecord {
		return &secondary.VoucherUsageRecord{PromotionID: "PROMO-1", CustomerID: w.CustomerID, QuotationID: "QUO-1"}
	}
	if err := promos.RecordUsage(ctx, usage()); err != nil {
		t.Fatalf("RecordUsage failed: %v", err)
	}
	err := promos.RecordUsage(ctx, usage())
	cv, ok := secondary.AsConstraintViolation(err, secondary.ConstraintUnique)
	if !ok || cv.Constraint != "IX_VoucherUsages_PromotionId_QuotationId" {
		t.Errorf("second usage = %v", err)
	}
	p, _ := promos.GetByID(ctx, "PROMO-1")
	if p.UsedCount != 1 {
		t.Errorf("UsedCount = %d, want 1", p.UsedCount)
	}

	// Usages without a quotation are outside the filtered index.
	for i := 0; i < 2; i++ {
		if err := promos.RecordUsage(ctx, &secondary.VoucherUsageRecord{PromotionID: "PROMO-1", CustomerID: w.CustomerID}); err != nil {
			t.Fatalf("RecordUsage without quotation failed: %v", err)
		}
	}
}

func TestPaymentRepository(t *testing.T) {
	database := setupTestDB(t)
	w := seedWorkshop(t, database)
	repo := sqlite.NewPaymentRepository(database)
	ctx := context.Background()

	payments := []*secondary.PaymentRecord{
		{ID: "PAY-1", RepairOrderID: w.OrderID, UserID: w.CustomerID, AmountCents: 300000, Method: "cash"},
		{ID: "PAY-2", RepairOrderID: w.OrderID, UserID: w.CustomerID, AmountCents: 200000, Method: "payos", OrderCode: 1001},
		{ID: "PAY-3", RepairOrderID: w.OrderID, UserID: w.CustomerID, AmountCents: 100000, Method: "card"},
	}
	for _, p := range payments {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create %s failed: %v", p.ID, err)
		}
	}

	// Order codes are unique when present.
	dup := &secondary.PaymentRecord{ID: "PAY-4", RepairOrderID: w.OrderID, UserID: w.CustomerID, AmountCents: 1, Method: "payos", OrderCode: 1001}
	cv, ok := secondary.AsConstraintViolation(repo.Create(ctx, dup), secondary.ConstraintUnique)
	if !ok || cv.Constraint != "IX_Payments_OrderCode" {
		t.Errorf("duplicate order code = %+v", cv)
	}

	paidAt := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"PAY-1", "PAY-2"} {
		if err := repo.UpdateStatus(ctx, id, "paid", &paidAt); err != nil {
			t.Fatalf("UpdateStatus %s failed: %v", id, err)
		}
	}
	total, err := repo.SumPaid(ctx, w.OrderID)
	if err != nil || total != 500000 {
		t.Errorf("SumPaid = %d, %v", total, err)
	}

	p, err := repo.GetByOrderCode(ctx, 1001)
	if err != nil || p.ID != "PAY-2" || p.PaidAt == nil {
		t.Errorf("GetByOrderCode = %+v, %v", p, err)
	}
	if _, err := repo.GetByOrderCode(ctx, 9999); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("GetByOrderCode(9999) = %v", err)
	}

	zero := &secondary.PaymentRecord{ID: "PAY-5", RepairOrderID: w.OrderID, UserID: w.CustomerID, Method: "cash"}
	if _, ok := secondary.AsConstraintViolation(repo.Create(ctx, zero), secondary.ConstraintCheck); !ok {
		t.Error("expected zero amount to be rejected")
	}
}
