package app

import (
	"context"
	"fmt"

	"github.com/example/garage/internal/core/hierarchy"
	"github.com/example/garage/internal/core/inventory"
	"github.com/example/garage/internal/core/money"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// CatalogServiceImpl implements the CatalogService interface.
type CatalogServiceImpl struct {
	vehicleCatalogRepo secondary.VehicleCatalogRepository
	serviceCatalogRepo secondary.ServiceCatalogRepository
	partRepo           secondary.PartRepository
	newID              func() string
}

// NewCatalogService creates a new CatalogService with injected dependencies.
func NewCatalogService(
	vehicleCatalogRepo secondary.VehicleCatalogRepository,
	serviceCatalogRepo secondary.ServiceCatalogRepository,
	partRepo secondary.PartRepository,
) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		vehicleCatalogRepo: vehicleCatalogRepo,
		serviceCatalogRepo: serviceCatalogRepo,
		partRepo:           partRepo,
		newID:              newID,
	}
}

// parseAmount reads an optional decimal amount; empty means zero.
func parseAmount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return money.Parse(s)
}

// CreateBrand creates a vehicle brand.
func (s *CatalogServiceImpl) CreateBrand(ctx context.Context, name, country string) (*primary.CatalogEntry, error) {
	record := &secondary.VehicleBrandRecord{ID: s.newID(), Name: name, Country: country, IsActive: true}
	if err := s.vehicleCatalogRepo.CreateBrand(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}
	return &primary.CatalogEntry{ID: record.ID, Name: record.Name}, nil
}

// ListBrands retrieves all vehicle brands.
func (s *CatalogServiceImpl) ListBrands(ctx context.Context) ([]*primary.CatalogEntry, error) {
	records, err := s.vehicleCatalogRepo.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	entries := make([]*primary.CatalogEntry, len(records))
	for i, r := range records {
		entries[i] = &primary.CatalogEntry{ID: r.ID, Name: r.Name}
	}
	return entries, nil
}

// CreateModel creates a model under a brand.
func (s *CatalogServiceImpl) CreateModel(ctx context.Context, brandID, name string) (*primary.CatalogEntry, error) {
	record := &secondary.VehicleModelRecord{ID: s.newID(), BrandID: brandID, Name: name}
	if err := s.vehicleCatalogRepo.CreateModel(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}
	return &primary.CatalogEntry{ID: record.ID, Name: record.Name, ParentID: brandID}, nil
}

// ListModels retrieves the models of a brand.
func (s *CatalogServiceImpl) ListModels(ctx context.Context, brandID string) ([]*primary.CatalogEntry, error) {
	records, err := s.vehicleCatalogRepo.ListModels(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	entries := make([]*primary.CatalogEntry, len(records))
	for i, r := range records {
		entries[i] = &primary.CatalogEntry{ID: r.ID, Name: r.Name, ParentID: r.BrandID}
	}
	return entries, nil
}

// CreateColor creates a vehicle color.
func (s *CatalogServiceImpl) CreateColor(ctx context.Context, name, hexCode string) (*primary.CatalogEntry, error) {
	record := &secondary.VehicleColorRecord{ID: s.newID(), Name: name, HexCode: hexCode}
	if err := s.vehicleCatalogRepo.CreateColor(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create color: %w", err)
	}
	return &primary.CatalogEntry{ID: record.ID, Name: record.Name}, nil
}

// LinkModelColor makes a color available for a model.
func (s *CatalogServiceImpl) LinkModelColor(ctx context.Context, modelID, colorID string) error {
	return s.vehicleCatalogRepo.LinkModelColor(ctx, modelID, colorID)
}

// ListModelColors retrieves the colors available for a model.
func (s *CatalogServiceImpl) ListModelColors(ctx context.Context, modelID string) ([]*primary.CatalogEntry, error) {
	records, err := s.vehicleCatalogRepo.ListModelColors(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list model colors: %w", err)
	}
	entries := make([]*primary.CatalogEntry, len(records))
	for i, r := range records {
		entries[i] = &primary.CatalogEntry{ID: r.ID, Name: r.Name, ParentID: modelID}
	}
	return entries, nil
}

// CreateServiceCategory creates a service category, optionally under a parent.
func (s *CatalogServiceImpl) CreateServiceCategory(ctx context.Context, name, parentID string) (*primary.CatalogEntry, error) {
	record := &secondary.ServiceCategoryRecord{ID: s.newID(), Name: name, ParentID: parentID, IsActive: true}
	if err := s.serviceCatalogRepo.CreateCategory(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create service category: %w", err)
	}
	return &primary.CatalogEntry{ID: record.ID, Name: record.Name, ParentID: parentID}, nil
}

// SetServiceCategoryParent re-parents a category unless that closes a loop.
func (s *CatalogServiceImpl) SetServiceCategoryParent(ctx context.Context, id, parentID string) error {
	parents, err := s.serviceCatalogRepo.CategoryParents(ctx)
	if err != nil {
		return fmt.Errorf("failed to load category tree: %w", err)
	}

	// Guard: the tree stays acyclic
	guardCtx := hierarchy.ParentContext{Kind: "service category", ID: id, NewParent: parentID, Parents: parents}
	if result := hierarchy.CanSetParent(guardCtx); !result.Allowed {
		return result.Error()
	}

	return s.serviceCatalogRepo.SetCategoryParent(ctx, id, parentID)
}

// ServiceCategoryAncestry returns the parent chain of a category, nearest first.
func (s *CatalogServiceImpl) ServiceCategoryAncestry(ctx context.Context, id string) ([]string, error) {
	if _, err := s.serviceCatalogRepo.GetCategory(ctx, id); err != nil {
		return nil, err
	}
	parents, err := s.serviceCatalogRepo.CategoryParents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load category tree: %w", err)
	}
	chain, cyclic := hierarchy.Ancestors(id, parents)
	if cyclic {
		return chain, fmt.Errorf("service category %s has a cyclic parent chain", id)
	}
	return chain, nil
}

// CreateService creates a service in a category.
func (s *CatalogServiceImpl) CreateService(ctx context.Context, req primary.CreateServiceRequest) (*primary.Service, error) {
	price, err := parseAmount(req.Price)
	if err != nil {
		return nil, err
	}
	record := &secondary.ServiceRecord{
		ID:               s.newID(),
		CategoryID:       req.CategoryID,
		BranchID:         req.BranchID,
		Name:             req.Name,
		Description:      req.Description,
		PriceCents:       price,
		EstimatedMinutes: req.EstimatedMinutes,
		IsAdvanced:       req.IsAdvanced,
		IsActive:         true,
	}
	if err := s.serviceCatalogRepo.CreateService(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return recordToService(record), nil
}

// ListServices retrieves active services, optionally those a branch offers.
func (s *CatalogServiceImpl) ListServices(ctx context.Context, categoryID, branchID string) ([]*primary.Service, error) {
	records, err := s.serviceCatalogRepo.ListServices(ctx, secondary.ServiceFilters{
		CategoryID: categoryID,
		BranchID:   branchID,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	services := make([]*primary.Service, len(records))
	for i, r := range records {
		services[i] = recordToService(r)
	}
	return services, nil
}

// SetBranchOffering records whether a branch offers a service.
func (s *CatalogServiceImpl) SetBranchOffering(ctx context.Context, branchID, serviceID string, available bool) error {
	return s.serviceCatalogRepo.SetBranchOffering(ctx, branchID, serviceID, available)
}

// CreatePartCategory creates a part category for a vehicle model.
func (s *CatalogServiceImpl) CreatePartCategory(ctx context.Context, modelID, name string) (*primary.CatalogEntry, error) {
	record := &secondary.PartCategoryRecord{ID: s.newID(), ModelID: modelID, CategoryName: name}
	if err := s.partRepo.CreateCategory(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create part category: %w", err)
	}
	return &primary.CatalogEntry{ID: record.ID, Name: name, ParentID: modelID}, nil
}

// CreatePart creates a part in a category.
func (s *CatalogServiceImpl) CreatePart(ctx context.Context, req primary.CreatePartRequest) (*primary.Part, error) {
	price, err := parseAmount(req.Price)
	if err != nil {
		return nil, err
	}
	record := &secondary.PartRecord{
		ID:             s.newID(),
		CategoryID:     req.CategoryID,
		BranchID:       req.BranchID,
		Name:           req.Name,
		PartNumber:     req.PartNumber,
		PriceCents:     price,
		WarrantyMonths: req.WarrantyMonths,
	}
	if err := s.partRepo.CreatePart(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create part: %w", err)
	}
	return recordToPart(record), nil
}

// ListParts retrieves the parts of a category.
func (s *CatalogServiceImpl) ListParts(ctx context.Context, categoryID string) ([]*primary.Part, error) {
	records, err := s.partRepo.ListParts(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	parts := make([]*primary.Part, len(records))
	for i, r := range records {
		parts[i] = recordToPart(r)
	}
	return parts, nil
}

// SetStock sets the stock of a part at a branch.
func (s *CatalogServiceImpl) SetStock(ctx context.Context, partID, branchID string, stock, minStock int) error {
	if stock < 0 || minStock < 0 {
		return fmt.Errorf("stock and minimum stock cannot be negative")
	}
	return s.partRepo.SetInventory(ctx, &secondary.InventoryRecord{
		ID:       s.newID(),
		PartID:   partID,
		BranchID: branchID,
		Stock:    stock,
		MinStock: minStock,
	})
}

// AdjustStock moves stock of a part at a branch; stock never goes negative.
func (s *CatalogServiceImpl) AdjustStock(ctx context.Context, partID, branchID string, delta int) (*primary.StockLevel, error) {
	if err := adjustStock(ctx, s.partRepo, partID, branchID, delta); err != nil {
		return nil, err
	}
	inv, err := s.partRepo.GetInventory(ctx, partID, branchID)
	if err != nil {
		return nil, err
	}
	return recordToStock(inv), nil
}

// ListStock retrieves stock levels by part or branch.
func (s *CatalogServiceImpl) ListStock(ctx context.Context, partID, branchID string) ([]*primary.StockLevel, error) {
	records, err := s.partRepo.ListInventory(ctx, secondary.InventoryFilters{PartID: partID, BranchID: branchID})
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	levels := make([]*primary.StockLevel, len(records))
	for i, r := range records {
		levels[i] = recordToStock(r)
	}
	return levels, nil
}

// adjustStock applies a guarded stock movement. It is shared with the order
// service, which takes parts from branch stock.
func adjustStock(ctx context.Context, partRepo secondary.PartRepository, partID, branchID string, delta int) error {
	inv, err := partRepo.GetInventory(ctx, partID, branchID)
	if err != nil {
		return err
	}

	// Guard: stock never goes negative
	guardCtx := inventory.AdjustContext{PartID: partID, BranchID: branchID, Stock: inv.Stock, Delta: delta}
	if result := inventory.CanAdjust(guardCtx); !result.Allowed {
		return result.Error()
	}

	if err := partRepo.AdjustStock(ctx, partID, branchID, delta); err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	return nil
}

func recordToService(r *secondary.ServiceRecord) *primary.Service {
	return &primary.Service{
		ID:               r.ID,
		CategoryID:       r.CategoryID,
		Name:             r.Name,
		PriceCents:       r.PriceCents,
		EstimatedMinutes: r.EstimatedMinutes,
		IsActive:         r.IsActive,
	}
}

func recordToPart(r *secondary.PartRecord) *primary.Part {
	return &primary.Part{
		ID:         r.ID,
		CategoryID: r.CategoryID,
		Name:       r.Name,
		PartNumber: r.PartNumber,
		PriceCents: r.PriceCents,
	}
}

func recordToStock(r *secondary.InventoryRecord) *primary.StockLevel {
	return &primary.StockLevel{
		PartID:       r.PartID,
		BranchID:     r.BranchID,
		Stock:        r.Stock,
		MinStock:     r.MinStock,
		NeedsRestock: inventory.NeedsRestock(r.Stock, r.MinStock),
		UpdatedAt:    r.UpdatedAt,
	}
}

// Ensure CatalogServiceImpl implements the interface.
var _ primary.CatalogService = (*CatalogServiceImpl)(nil)
