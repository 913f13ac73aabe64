package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/garage/internal/core/inventory"
	"github.com/example/garage/internal/core/money"
	"github.com/example/garage/internal/core/repairorder"
	"github.com/example/garage/internal/core/repairrequest"
	"github.com/example/garage/internal/ctxutil"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// RepairOrderServiceImpl implements the RepairOrderService interface.
type RepairOrderServiceImpl struct {
	orderRepo          secondary.RepairOrderRepository
	requestRepo        secondary.RepairRequestRepository
	serviceCatalogRepo secondary.ServiceCatalogRepository
	partRepo           secondary.PartRepository
	logger             *zap.Logger
	newID              func() string
	now                func() time.Time
}

// NewRepairOrderService creates a new RepairOrderService with injected dependencies.
func NewRepairOrderService(
	orderRepo secondary.RepairOrderRepository,
	requestRepo secondary.RepairRequestRepository,
	serviceCatalogRepo secondary.ServiceCatalogRepository,
	partRepo secondary.PartRepository,
	logger *zap.Logger,
) *RepairOrderServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepairOrderServiceImpl{
		orderRepo:          orderRepo,
		requestRepo:        requestRepo,
		serviceCatalogRepo: serviceCatalogRepo,
		partRepo:           partRepo,
		logger:             logger,
		newID:              newID,
		now:                utcNow,
	}
}

// CreateWalkIn opens an order without a prior request.
func (s *RepairOrderServiceImpl) CreateWalkIn(ctx context.Context, req primary.CreateOrderRequest) (*primary.RepairOrder, error) {
	if req.BranchID == "" || req.VehicleID == "" || req.CustomerID == "" {
		return nil, fmt.Errorf("branch, vehicle and customer are required")
	}
	record := s.newOrderRecord(req, "", 0)
	if err := s.orderRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create repair order: %w", err)
	}
	s.logger.Info("repair order opened", zap.String("order_id", record.ID), zap.String("branch_id", record.BranchID))
	return s.GetOrder(ctx, record.ID)
}

// CreateFromRequest opens the order for an active repair request and moves
// the request to in progress.
func (s *RepairOrderServiceImpl) CreateFromRequest(ctx context.Context, requestID string, req primary.CreateOrderRequest) (*primary.RepairOrder, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	existingID := ""
	existing, err := s.orderRepo.GetByRequestID(ctx, requestID)
	switch {
	case err == nil:
		existingID = existing.ID
	case !errors.Is(err, secondary.ErrNotFound):
		return nil, fmt.Errorf("failed to look up order for request: %w", err)
	}

	// Guard: active request, not converted yet
	guardCtx := repairrequest.ConvertContext{
		RequestID:       requestID,
		Status:          repairrequest.Status(request.Status),
		ExistingOrderID: existingID,
	}
	if result := repairrequest.CanConvertToOrder(guardCtx); !result.Allowed {
		return nil, result.Error()
	}

	if req.BranchID == "" {
		req.BranchID = request.BranchID
	}
	if req.VehicleID == "" {
		req.VehicleID = request.VehicleID
	}
	if req.CustomerID == "" {
		req.CustomerID = request.CustomerID
	}
	if req.Note == "" {
		req.Note = request.Description
	}

	// The request update carries the version read above, so a request that
	// changed since then rolls the order back.
	record := s.newOrderRecord(req, requestID, request.EstimatedCostCents)
	next := repairrequest.StatusAfterConversion()
	if err := s.orderRepo.CreateFromRequest(ctx, record, int(next), request.RowVersion); err != nil {
		return nil, fmt.Errorf("failed to create repair order from request: %w", err)
	}

	s.logger.Info("repair order opened from request",
		zap.String("order_id", record.ID),
		zap.String("request_id", requestID),
	)
	return s.GetOrder(ctx, record.ID)
}

func (s *RepairOrderServiceImpl) newOrderRecord(req primary.CreateOrderRequest, requestID string, estimate int64) *secondary.RepairOrderRecord {
	return &secondary.RepairOrderRecord{
		ID:                      s.newID(),
		BranchID:                req.BranchID,
		VehicleID:               req.VehicleID,
		CustomerID:              req.CustomerID,
		OrderStatusID:           repairorder.OrderStatusPending,
		RepairRequestID:         requestID,
		ReceiveDate:             s.now(),
		EstimatedCompletionDate: req.EstimatedCompletionDate,
		EstimatedAmountCents:    estimate,
		PaidStatus:              string(repairorder.PaidStatusUnpaid),
		Odometer:                req.Odometer,
		Note:                    req.Note,
	}
}

// GetOrder retrieves an order with its lines.
func (s *RepairOrderServiceImpl) GetOrder(ctx context.Context, id string) (*primary.RepairOrder, error) {
	record, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := recordToRepairOrder(record)

	services, err := s.orderRepo.ListServices(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order services: %w", err)
	}
	for _, l := range services {
		out.Services = append(out.Services, primary.OrderService{ServiceID: l.ServiceID, PriceCents: l.PriceCents})
	}

	parts, err := s.orderRepo.ListParts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order parts: %w", err)
	}
	for _, l := range parts {
		out.Parts = append(out.Parts, primary.OrderPart{PartID: l.PartID, Quantity: l.Quantity, UnitPriceCents: l.UnitPriceCents})
	}
	return out, nil
}

// ListOrders retrieves orders matching the given filters.
func (s *RepairOrderServiceImpl) ListOrders(ctx context.Context, filters primary.RepairOrderFilters) ([]*primary.RepairOrder, error) {
	records, err := s.orderRepo.List(ctx, secondary.RepairOrderFilters{
		BranchID:   filters.BranchID,
		CustomerID: filters.CustomerID,
		VehicleID:  filters.VehicleID,
		Lifecycle:  filters.Lifecycle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list repair orders: %w", err)
	}
	orders := make([]*primary.RepairOrder, len(records))
	for i, r := range records {
		orders[i] = recordToRepairOrder(r)
	}
	return orders, nil
}

// ChangeStatus sets the order status.
func (s *RepairOrderServiceImpl) ChangeStatus(ctx context.Context, id string, statusID int) error {
	record, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	known, err := s.orderRepo.OrderStatusIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load order statuses: %w", err)
	}
	openJobs, err := s.orderRepo.CountOpenJobs(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count open jobs: %w", err)
	}

	// Guard: active order, known status, no open jobs when completing
	guardCtx := repairorder.StatusChangeContext{
		StateContext:  stateOf(record),
		NewStatusID:   statusID,
		OpenJobCount:  openJobs,
		KnownStatuses: known,
	}
	if result := repairorder.CanChangeStatus(guardCtx); !result.Allowed {
		return result.Error()
	}

	var completedAt *time.Time
	if statusID == repairorder.OrderStatusCompleted {
		now := s.now()
		completedAt = &now
	}
	return s.orderRepo.UpdateStatus(ctx, id, statusID, completedAt)
}

// Archive archives a completed order.
func (s *RepairOrderServiceImpl) Archive(ctx context.Context, id string) error {
	record, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Guard: only completed active orders are archived
	if result := repairorder.CanArchive(stateOf(record)); !result.Allowed {
		return result.Error()
	}

	transition := repairorder.Archive(s.now())
	if err := s.orderRepo.Archive(ctx, id, ctxutil.ActorFromContext(ctx), *transition.ArchivedAt); err != nil {
		return fmt.Errorf("failed to archive repair order: %w", err)
	}
	s.logger.Info("repair order archived", zap.String("order_id", id))
	return nil
}

// Cancel cancels an order that is not completed.
func (s *RepairOrderServiceImpl) Cancel(ctx context.Context, id, reason string) error {
	record, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Guard: completed orders are archived, not cancelled
	if result := repairorder.CanCancel(stateOf(record)); !result.Allowed {
		return result.Error()
	}

	transition := repairorder.Cancel(s.now())
	if err := s.orderRepo.Cancel(ctx, id, reason, *transition.CancelledAt); err != nil {
		return fmt.Errorf("failed to cancel repair order: %w", err)
	}
	s.logger.Info("repair order cancelled", zap.String("order_id", id), zap.String("reason", reason))
	return nil
}

// AddService adds a catalog service to the order at its catalog price.
func (s *RepairOrderServiceImpl) AddService(ctx context.Context, orderID, serviceID string) (*primary.RepairOrder, error) {
	record, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if result := repairorder.CanModify(stateOf(record)); !result.Allowed {
		return nil, result.Error()
	}

	svc, err := s.serviceCatalogRepo.GetService(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to price service %s: %w", serviceID, err)
	}
	line := &secondary.RepairOrderServiceRecord{
		ID:            s.newID(),
		RepairOrderID: orderID,
		ServiceID:     serviceID,
		PriceCents:    svc.PriceCents,
	}
	if err := s.orderRepo.AddService(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to add service to order: %w", err)
	}
	return s.GetOrder(ctx, orderID)
}

// AddPart adds parts to the order at catalog price. When the order's branch
// stocks the part, the quantity is taken from that stock first.
func (s *RepairOrderServiceImpl) AddPart(ctx context.Context, orderID, partID string, quantity int) (*primary.RepairOrder, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	record, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if result := repairorder.CanModify(stateOf(record)); !result.Allowed {
		return nil, result.Error()
	}

	part, err := s.partRepo.GetPart(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("failed to price part %s: %w", partID, err)
	}
	amount, err := money.Multiply(part.PriceCents, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to price part %s: %w", partID, err)
	}
	if _, err := money.Add(record.CostCents, amount); err != nil {
		return nil, fmt.Errorf("order %s cost: %w", orderID, err)
	}

	stockBranchID := record.BranchID
	inv, err := s.partRepo.GetInventory(ctx, partID, record.BranchID)
	switch {
	case errors.Is(err, secondary.ErrNotFound):
		// Branch keeps no stock row for this part.
		stockBranchID = ""
	case err != nil:
		return nil, fmt.Errorf("failed to read stock: %w", err)
	default:
		guardCtx := inventory.AdjustContext{PartID: partID, BranchID: record.BranchID, Stock: inv.Stock, Delta: -quantity}
		if result := inventory.CanAdjust(guardCtx); !result.Allowed {
			return nil, result.Error()
		}
	}

	line := &secondary.RepairOrderPartRecord{
		ID:             s.newID(),
		RepairOrderID:  orderID,
		PartID:         partID,
		Quantity:       quantity,
		UnitPriceCents: part.PriceCents,
	}
	if err := s.orderRepo.AddPart(ctx, line, stockBranchID); err != nil {
		return nil, fmt.Errorf("failed to add part to order: %w", err)
	}
	s.logger.Debug("part added to order",
		zap.String("order_id", orderID),
		zap.String("part_id", partID),
		zap.String("amount", money.Format(amount)),
	)
	return s.GetOrder(ctx, orderID)
}

func stateOf(r *secondary.RepairOrderRecord) repairorder.StateContext {
	return repairorder.StateContext{
		OrderID:       r.ID,
		Lifecycle:     repairorder.Lifecycle(r.Lifecycle),
		OrderStatusID: r.OrderStatusID,
	}
}

func recordToRepairOrder(r *secondary.RepairOrderRecord) *primary.RepairOrder {
	return &primary.RepairOrder{
		ID:              r.ID,
		BranchID:        r.BranchID,
		VehicleID:       r.VehicleID,
		CustomerID:      r.CustomerID,
		RepairRequestID: r.RepairRequestID,
		OrderStatusID:   r.OrderStatusID,
		Lifecycle:       r.Lifecycle,
		PaidStatus:      r.PaidStatus,
		CostCents:       r.CostCents,
		PaidAmountCents: r.PaidAmountCents,
		Odometer:        r.Odometer,
		Note:            r.Note,
		ReceiveDate:     r.ReceiveDate,
		CompletionDate:  r.CompletionDate,
		ArchivedAt:      r.ArchivedAt,
		CancelledAt:     r.CancelledAt,
		CancelReason:    r.CancelReason,
	}
}

// Ensure RepairOrderServiceImpl implements the interface.
var _ primary.RepairOrderService = (*RepairOrderServiceImpl)(nil)
