package secondary

import (
	"context"
	"time"
)

// VehicleCatalogRepository defines the secondary port for brands, models and colors.
type VehicleCatalogRepository interface {
	// CreateBrand persists a new brand.
	CreateBrand(ctx context.Context, brand *VehicleBrandRecord) error

	// ListBrands retrieves all brands ordered by name.
	ListBrands(ctx context.Context) ([]*VehicleBrandRecord, error)

	// CreateModel persists a new model under a brand.
	CreateModel(ctx context.Context, model *VehicleModelRecord) error

	// GetModel retrieves a model by ID.
	GetModel(ctx context.Context, id string) (*VehicleModelRecord, error)

	// ListModels retrieves the models of a brand ordered by name.
	ListModels(ctx context.Context, brandID string) ([]*VehicleModelRecord, error)

	// CreateColor persists a new color.
	CreateColor(ctx context.Context, color *VehicleColorRecord) error

	// ListColors retrieves all colors ordered by name.
	ListColors(ctx context.Context) ([]*VehicleColorRecord, error)

	// LinkModelColor makes a color available for a model.
	LinkModelColor(ctx context.Context, modelID, colorID string) error

	// ListModelColors retrieves the colors available for a model.
	ListModelColors(ctx context.Context, modelID string) ([]*VehicleColorRecord, error)
}

// VehicleBrandRecord represents a vehicle brand.
type VehicleBrandRecord struct {
	ID       string
	Name     string
	Country  string
	IsActive bool
}

// VehicleModelRecord represents a vehicle model.
type VehicleModelRecord struct {
	ID      string
	BrandID string
	Name    string
}

// VehicleColorRecord represents a vehicle color.
type VehicleColorRecord struct {
	ID      string
	Name    string
	HexCode string
}

// ServiceCatalogRepository defines the secondary port for service categories and services.
type ServiceCatalogRepository interface {
	// CreateCategory persists a new service category.
	CreateCategory(ctx context.Context, category *ServiceCategoryRecord) error

	// GetCategory retrieves a category by ID.
	GetCategory(ctx context.Context, id string) (*ServiceCategoryRecord, error)

	// ListCategories retrieves all categories ordered by name.
	ListCategories(ctx context.Context) ([]*ServiceCategoryRecord, error)

	// SetCategoryParent sets or clears (empty parentID) a category's parent.
	SetCategoryParent(ctx context.Context, id, parentID string) error

	// CategoryParents returns the parent of every category that has one.
	CategoryParents(ctx context.Context) (map[string]string, error)

	// CreateService persists a new service.
	CreateService(ctx context.Context, service *ServiceRecord) error

	// GetService retrieves a service by ID.
	GetService(ctx context.Context, id string) (*ServiceRecord, error)

	// ListServices retrieves services matching the given filters.
	ListServices(ctx context.Context, filters ServiceFilters) ([]*ServiceRecord, error)

	// SetBranchOffering records whether a branch offers a service.
	SetBranchOffering(ctx context.Context, branchID, serviceID string, available bool) error
}

// ServiceCategoryRecord represents a service category.
type ServiceCategoryRecord struct {
	ID          string
	Name        string
	Description string
	ParentID    string
	IsActive    bool
}

// ServiceRecord represents a service as stored in persistence.
type ServiceRecord struct {
	ID               string
	CategoryID       string
	BranchID         string
	Name             string
	Description      string
	PriceCents       int64
	EstimatedMinutes int
	IsAdvanced       bool
	IsActive         bool
}

// ServiceFilters contains filter options for querying services.
// BranchID selects services the branch offers.
type ServiceFilters struct {
	CategoryID string
	BranchID   string
	ActiveOnly bool
}

// PartRepository defines the secondary port for parts and branch inventories.
type PartRepository interface {
	// CreateCategory persists a new part category for a model.
	CreateCategory(ctx context.Context, category *PartCategoryRecord) error

	// CreatePart persists a new part.
	CreatePart(ctx context.Context, part *PartRecord) error

	// GetPart retrieves a part by ID.
	GetPart(ctx context.Context, id string) (*PartRecord, error)

	// ListParts retrieves the parts of a category ordered by name.
	ListParts(ctx context.Context, categoryID string) ([]*PartRecord, error)

	// SetInventory creates or replaces the stock row of a part at a branch.
	SetInventory(ctx context.Context, inv *InventoryRecord) error

	// GetInventory retrieves the stock row of a part at a branch.
	GetInventory(ctx context.Context, partID, branchID string) (*InventoryRecord, error)

	// AdjustStock adds delta to the stock of a part at a branch.
	AdjustStock(ctx context.Context, partID, branchID string, delta int) error

	// ListInventory retrieves stock rows matching the given filters.
	ListInventory(ctx context.Context, filters InventoryFilters) ([]*InventoryRecord, error)
}

// PartCategoryRecord represents a part category.
type PartCategoryRecord struct {
	ID           string
	ModelID      string
	CategoryName string
	Description  string
}

// PartRecord represents a part.
type PartRecord struct {
	ID             string
	CategoryID     string
	BranchID       string
	Name           string
	PartNumber     string
	PriceCents     int64
	WarrantyMonths int
}

// InventoryRecord represents the stock of a part at a branch.
type InventoryRecord struct {
	ID        string
	PartID    string
	BranchID  string
	Stock     int
	MinStock  int
	UpdatedAt time.Time
}

// InventoryFilters contains filter options for querying inventory.
type InventoryFilters struct {
	PartID   string
	BranchID string
}

// VehicleRepository defines the secondary port for customer vehicles.
type VehicleRepository interface {
	// Create persists a new vehicle.
	Create(ctx context.Context, vehicle *VehicleRecord) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*VehicleRecord, error)

	// ListByOwner retrieves the vehicles of a customer.
	ListByOwner(ctx context.Context, ownerID string) ([]*VehicleRecord, error)

	// Update updates plate, VIN, year, odometer and color.
	Update(ctx context.Context, vehicle *VehicleRecord) error

	// Delete removes a vehicle. Requests and orders referencing it block the delete.
	Delete(ctx context.Context, id string) error
}

// VehicleRecord represents a vehicle as stored in persistence.
type VehicleRecord struct {
	ID           string
	OwnerID      string
	BrandID      string
	ModelID      string
	ColorID      string
	LicensePlate string
	VIN          string
	Year         int
	Odometer     int
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
