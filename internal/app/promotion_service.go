package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/garage/internal/core/quotation"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// PromotionServiceImpl implements the PromotionService interface.
type PromotionServiceImpl struct {
	promotionRepo secondary.PromotionRepository
	newID         func() string
}

// NewPromotionService creates a new PromotionService with injected dependencies.
func NewPromotionService(promotionRepo secondary.PromotionRepository) *PromotionServiceImpl {
	return &PromotionServiceImpl{promotionRepo: promotionRepo, newID: newID}
}

// CreatePromotion creates a promotion.
func (s *PromotionServiceImpl) CreatePromotion(ctx context.Context, req primary.CreatePromotionRequest) (*primary.Promotion, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" || req.Name == "" {
		return nil, fmt.Errorf("code and name are required")
	}
	if req.StartsAt.IsZero() {
		return nil, fmt.Errorf("start time is required")
	}
	if req.EndsAt != nil && !req.EndsAt.After(req.StartsAt) {
		return nil, fmt.Errorf("promotion must end after it starts")
	}

	record := &secondary.PromotionRecord{
		ID:           s.newID(),
		Code:         code,
		Name:         req.Name,
		DiscountType: req.DiscountType,
		StartsAt:     req.StartsAt.UTC(),
		EndsAt:       req.EndsAt,
		UsageLimit:   req.UsageLimit,
		IsActive:     true,
	}
	switch req.DiscountType {
	case quotation.DiscountPercentage:
		record.DiscountPercent = req.DiscountPercent
	case quotation.DiscountFixed:
		amount, err := parseAmount(req.DiscountAmount)
		if err != nil {
			return nil, err
		}
		record.DiscountAmountCents = amount
	default:
		return nil, fmt.Errorf("unknown discount type %q: use %s or %s",
			req.DiscountType, quotation.DiscountPercentage, quotation.DiscountFixed)
	}

	var err error
	if record.MaxDiscountCents, err = parseAmount(req.MaxDiscount); err != nil {
		return nil, err
	}
	if record.MinOrderCents, err = parseAmount(req.MinOrder); err != nil {
		return nil, err
	}

	if err := s.promotionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}
	return recordToPromotion(record), nil
}

// GetPromotion retrieves a promotion by code.
func (s *PromotionServiceImpl) GetPromotion(ctx context.Context, code string) (*primary.Promotion, error) {
	record, err := s.promotionRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	return recordToPromotion(record), nil
}

func recordToPromotion(r *secondary.PromotionRecord) *primary.Promotion {
	return &primary.Promotion{
		ID:                  r.ID,
		Code:                r.Code,
		Name:                r.Name,
		DiscountType:        r.DiscountType,
		DiscountPercent:     r.DiscountPercent,
		DiscountAmountCents: r.DiscountAmountCents,
		UsageLimit:          r.UsageLimit,
		UsedCount:           r.UsedCount,
		IsActive:            r.IsActive,
	}
}

// Ensure PromotionServiceImpl implements the interface.
var _ primary.PromotionService = (*PromotionServiceImpl)(nil)
