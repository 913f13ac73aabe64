package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/garage/internal/core/quotation"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// QuotationServiceImpl implements the QuotationService interface.
type QuotationServiceImpl struct {
	quotationRepo      secondary.QuotationRepository
	promotionRepo      secondary.PromotionRepository
	serviceCatalogRepo secondary.ServiceCatalogRepository
	partRepo           secondary.PartRepository
	logger             *zap.Logger
	newID              func() string
	now                func() time.Time
}

// NewQuotationService creates a new QuotationService with injected dependencies.
func NewQuotationService(
	quotationRepo secondary.QuotationRepository,
	promotionRepo secondary.PromotionRepository,
	serviceCatalogRepo secondary.ServiceCatalogRepository,
	partRepo secondary.PartRepository,
	logger *zap.Logger,
) *QuotationServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotationServiceImpl{
		quotationRepo:      quotationRepo,
		promotionRepo:      promotionRepo,
		serviceCatalogRepo: serviceCatalogRepo,
		partRepo:           partRepo,
		logger:             logger,
		newID:              newID,
		now:                utcNow,
	}
}

// CreateQuotation prices the lines, applies an eligible promotion and stores the quotation.
func (s *QuotationServiceImpl) CreateQuotation(ctx context.Context, req primary.CreateQuotationRequest) (*primary.Quotation, error) {
	// Guard: at least one origin
	origin := quotation.OriginContext{
		InspectionID:    req.InspectionID,
		RepairOrderID:   req.RepairOrderID,
		RepairRequestID: req.RepairRequestID,
	}
	if result := quotation.HasOrigin(origin); !result.Allowed {
		return nil, result.Error()
	}
	if req.CustomerID == "" {
		return nil, fmt.Errorf("customer is required")
	}

	id := s.newID()
	records, lines, err := s.priceLines(ctx, id, req.Lines)
	if err != nil {
		return nil, err
	}

	var promo *secondary.PromotionRecord
	if code := strings.ToUpper(strings.TrimSpace(req.PromotionCode)); code != "" {
		promo, err = s.promotionRepo.GetByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to load promotion %s: %w", code, err)
		}
	}

	now := s.now()
	var terms *quotation.PromotionTerms
	if promo != nil {
		t := promotionTerms(promo)
		terms = &t
	}
	totals, promoResult, err := quotation.ComputeTotals(lines, terms, now)
	if err != nil {
		return nil, fmt.Errorf("failed to price quotation: %w", err)
	}

	record := &secondary.QuotationRecord{
		ID:              id,
		InspectionID:    req.InspectionID,
		RepairOrderID:   req.RepairOrderID,
		RepairRequestID: req.RepairRequestID,
		CustomerID:      req.CustomerID,
		Status:          string(quotation.StatusPending),
		SubtotalCents:   totals.SubtotalCents,
		DiscountCents:   totals.DiscountCents,
		TotalCents:      totals.TotalCents,
		Note:            req.Note,
		ValidUntil:      req.ValidUntil,
	}
	var usage *secondary.VoucherUsageRecord
	if promo != nil && promoResult.Allowed && totals.DiscountCents > 0 {
		record.AppliedPromotionID = promo.ID
		usage = &secondary.VoucherUsageRecord{
			PromotionID:   promo.ID,
			CustomerID:    req.CustomerID,
			DiscountCents: totals.DiscountCents,
			UsedAt:        now,
		}
	}
	// Usage is recorded with the quotation; a promotion that ran out since
	// the terms were read fails the whole create.
	if err := s.quotationRepo.Create(ctx, record, records, usage); err != nil {
		return nil, fmt.Errorf("failed to create quotation: %w", err)
	}

	out, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	if promo != nil && !promoResult.Allowed {
		out.PromotionNote = promoResult.Reason
		s.logger.Info("promotion not applied", zap.String("quotation_id", id), zap.String("reason", promoResult.Reason))
	}
	return out, nil
}

// priceLines builds line records at catalog price and the matching core lines.
func (s *QuotationServiceImpl) priceLines(ctx context.Context, quotationID string, in []primary.QuotationLine) ([]*secondary.QuotationServiceRecord, []quotation.Line, error) {
	records := make([]*secondary.QuotationServiceRecord, 0, len(in))
	lines := make([]quotation.Line, 0, len(in))
	for _, l := range in {
		svc, err := s.serviceCatalogRepo.GetService(ctx, l.ServiceID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to price service %s: %w", l.ServiceID, err)
		}
		rec := &secondary.QuotationServiceRecord{
			ID:          s.newID(),
			QuotationID: quotationID,
			ServiceID:   l.ServiceID,
			PriceCents:  svc.PriceCents,
			IsSelected:  l.IsSelected,
			IsRequired:  l.IsRequired,
		}
		line := quotation.Line{PriceCents: svc.PriceCents, IsSelected: l.IsSelected, IsRequired: l.IsRequired}

		for _, p := range l.Parts {
			if p.Quantity <= 0 {
				return nil, nil, fmt.Errorf("quantity of part %s must be positive", p.PartID)
			}
			part, err := s.partRepo.GetPart(ctx, p.PartID)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to price part %s: %w", p.PartID, err)
			}
			rec.Parts = append(rec.Parts, &secondary.QuotationServicePartRecord{
				ID:                      s.newID(),
				QuotationServiceID:      rec.ID,
				PartID:                  p.PartID,
				Quantity:                p.Quantity,
				UnitPriceCents:          part.PriceCents,
				IsSelected:              p.IsSelected,
				RecommendedByTechnician: p.Recommended,
			})
			line.Parts = append(line.Parts, quotation.Part{Quantity: p.Quantity, UnitPriceCents: part.PriceCents, IsSelected: p.IsSelected})
		}
		records = append(records, rec)
		lines = append(lines, line)
	}
	return records, lines, nil
}

// GetQuotation retrieves a quotation with its lines.
func (s *QuotationServiceImpl) GetQuotation(ctx context.Context, id string) (*primary.Quotation, error) {
	record, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := recordToQuotation(record)

	lines, err := s.quotationRepo.ListLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotation lines: %w", err)
	}
	for _, l := range lines {
		line := primary.QuotationLine{ServiceID: l.ServiceID, IsSelected: l.IsSelected, IsRequired: l.IsRequired}
		for _, p := range l.Parts {
			line.Parts = append(line.Parts, primary.QuotationPart{
				PartID:      p.PartID,
				Quantity:    p.Quantity,
				IsSelected:  p.IsSelected,
				Recommended: p.RecommendedByTechnician,
			})
		}
		out.Lines = append(out.Lines, line)
	}
	return out, nil
}

// ListQuotations retrieves quotations of a customer or an order.
func (s *QuotationServiceImpl) ListQuotations(ctx context.Context, customerID, orderID, status string) ([]*primary.Quotation, error) {
	records, err := s.quotationRepo.List(ctx, secondary.QuotationFilters{
		CustomerID:    customerID,
		RepairOrderID: orderID,
		Status:        status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	out := make([]*primary.Quotation, len(records))
	for i, r := range records {
		out[i] = recordToQuotation(r)
	}
	return out, nil
}

// Send sends a pending quotation to the customer.
func (s *QuotationServiceImpl) Send(ctx context.Context, id string) error {
	record, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	lines, err := s.quotationRepo.ListLines(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load quotation lines: %w", err)
	}

	// Guard: pending with at least one line
	guardCtx := quotation.SendContext{QuotationID: id, Status: quotation.Status(record.Status), LineCount: len(lines)}
	if result := quotation.CanSend(guardCtx); !result.Allowed {
		return result.Error()
	}
	return s.quotationRepo.MarkSent(ctx, id, s.now())
}

// Respond records the customer's approval or rejection.
func (s *QuotationServiceImpl) Respond(ctx context.Context, id string, approve bool, note string) error {
	record, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	// Guard: sent and still valid
	guardCtx := quotation.RespondContext{
		QuotationID: id,
		Status:      quotation.Status(record.Status),
		ValidUntil:  record.ValidUntil,
		Now:         now,
		Approve:     approve,
	}
	if result := quotation.CanRespond(guardCtx); !result.Allowed {
		return result.Error()
	}

	status := quotation.StatusRejected
	if approve {
		status = quotation.StatusApproved
	}
	return s.quotationRepo.RecordResponse(ctx, id, string(status), note, now)
}

// Expire expires a quotation the customer never answered.
func (s *QuotationServiceImpl) Expire(ctx context.Context, id string) error {
	record, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if result := quotation.CanTransition(id, quotation.Status(record.Status), quotation.StatusExpired); !result.Allowed {
		return result.Error()
	}
	return s.quotationRepo.UpdateStatus(ctx, id, string(quotation.StatusExpired))
}

func promotionTerms(p *secondary.PromotionRecord) quotation.PromotionTerms {
	return quotation.PromotionTerms{
		Code:                p.Code,
		DiscountType:        p.DiscountType,
		DiscountPercent:     p.DiscountPercent,
		DiscountAmountCents: p.DiscountAmountCents,
		MaxDiscountCents:    p.MaxDiscountCents,
		MinOrderCents:       p.MinOrderCents,
		StartsAt:            p.StartsAt,
		EndsAt:              p.EndsAt,
		UsageLimit:          p.UsageLimit,
		UsedCount:           p.UsedCount,
		IsActive:            p.IsActive,
	}
}

func recordToQuotation(r *secondary.QuotationRecord) *primary.Quotation {
	return &primary.Quotation{
		ID:                 r.ID,
		InspectionID:       r.InspectionID,
		RepairOrderID:      r.RepairOrderID,
		RepairRequestID:    r.RepairRequestID,
		CustomerID:         r.CustomerID,
		AppliedPromotionID: r.AppliedPromotionID,
		Status:             r.Status,
		SubtotalCents:      r.SubtotalCents,
		DiscountCents:      r.DiscountCents,
		TotalCents:         r.TotalCents,
		ValidUntil:         r.ValidUntil,
		SentToCustomerAt:   r.SentToCustomerAt,
		CustomerResponseAt: r.CustomerResponseAt,
	}
}

// Ensure QuotationServiceImpl implements the interface.
var _ primary.QuotationService = (*QuotationServiceImpl)(nil)
