package primary

import (
	"context"
	"time"
)

// CatalogService defines the primary port for the vehicle, service and part catalogs.
type CatalogService interface {
	// CreateBrand creates a vehicle brand.
	CreateBrand(ctx context.Context, name, country string) (*CatalogEntry, error)

	// ListBrands retrieves all vehicle brands.
	ListBrands(ctx context.Context) ([]*CatalogEntry, error)

	// CreateModel creates a model under a brand.
	CreateModel(ctx context.Context, brandID, name string) (*CatalogEntry, error)

	// ListModels retrieves the models of a brand.
	ListModels(ctx context.Context, brandID string) ([]*CatalogEntry, error)

	// CreateColor creates a vehicle color.
	CreateColor(ctx context.Context, name, hexCode string) (*CatalogEntry, error)

	// LinkModelColor makes a color available for a model.
	LinkModelColor(ctx context.Context, modelID, colorID string) error

	// ListModelColors retrieves the colors available for a model.
	ListModelColors(ctx context.Context, modelID string) ([]*CatalogEntry, error)

	// CreateServiceCategory creates a service category, optionally under a parent.
	CreateServiceCategory(ctx context.Context, name, parentID string) (*CatalogEntry, error)

	// SetServiceCategoryParent re-parents a category. A parent that would
	// close a loop is refused.
	SetServiceCategoryParent(ctx context.Context, id, parentID string) error

	// ServiceCategoryAncestry returns the parent chain of a category, nearest first.
	ServiceCategoryAncestry(ctx context.Context, id string) ([]string, error)

	// CreateService creates a service in a category.
	CreateService(ctx context.Context, req CreateServiceRequest) (*Service, error)

	// ListServices retrieves services, optionally those a branch offers.
	ListServices(ctx context.Context, categoryID, branchID string) ([]*Service, error)

	// SetBranchOffering records whether a branch offers a service.
	SetBranchOffering(ctx context.Context, branchID, serviceID string, available bool) error

	// CreatePartCategory creates a part category for a vehicle model.
	CreatePartCategory(ctx context.Context, modelID, name string) (*CatalogEntry, error)

	// CreatePart creates a part in a category.
	CreatePart(ctx context.Context, req CreatePartRequest) (*Part, error)

	// ListParts retrieves the parts of a category.
	ListParts(ctx context.Context, categoryID string) ([]*Part, error)

	// SetStock sets the stock of a part at a branch.
	SetStock(ctx context.Context, partID, branchID string, stock, minStock int) error

	// AdjustStock moves stock of a part at a branch; stock never goes negative.
	AdjustStock(ctx context.Context, partID, branchID string, delta int) (*StockLevel, error)

	// ListStock retrieves stock levels by part or branch.
	ListStock(ctx context.Context, partID, branchID string) ([]*StockLevel, error)
}

// CatalogEntry is a named catalog item: brand, model, color or category.
type CatalogEntry struct {
	ID       string
	Name     string
	ParentID string // brand of a model, parent of a category, model of a part category
}

// CreateServiceRequest contains parameters for creating a service.
type CreateServiceRequest struct {
	CategoryID       string
	BranchID         string
	Name             string
	Description      string
	Price            string // decimal amount, e.g. "450000" or "12.50"
	EstimatedMinutes int
	IsAdvanced       bool
}

// Service represents a catalog service at the port boundary.
type Service struct {
	ID               string
	CategoryID       string
	Name             string
	PriceCents       int64
	EstimatedMinutes int
	IsActive         bool
}

// CreatePartRequest contains parameters for creating a part.
type CreatePartRequest struct {
	CategoryID     string
	BranchID       string
	Name           string
	PartNumber     string
	Price          string
	WarrantyMonths int
}

// Part represents a catalog part at the port boundary.
type Part struct {
	ID         string
	CategoryID string
	Name       string
	PartNumber string
	PriceCents int64
}

// StockLevel is the stock of one part at one branch.
type StockLevel struct {
	PartID       string
	BranchID     string
	Stock        int
	MinStock     int
	NeedsRestock bool
	UpdatedAt    time.Time
}

// VehicleService defines the primary port for customer vehicles.
type VehicleService interface {
	// RegisterVehicle creates a vehicle. The brand, model and color must
	// belong together; the store enforces it.
	RegisterVehicle(ctx context.Context, req RegisterVehicleRequest) (*Vehicle, error)

	// GetVehicle retrieves a vehicle by ID.
	GetVehicle(ctx context.Context, id string) (*Vehicle, error)

	// ListVehicles retrieves the vehicles of a customer.
	ListVehicles(ctx context.Context, ownerID string) ([]*Vehicle, error)

	// UpdateVehicle updates plate, VIN, year, odometer and color.
	UpdateVehicle(ctx context.Context, req UpdateVehicleRequest) (*Vehicle, error)

	// DeleteVehicle deletes a vehicle with no requests or orders.
	DeleteVehicle(ctx context.Context, id string) error
}

// RegisterVehicleRequest contains parameters for registering a vehicle.
type RegisterVehicleRequest struct {
	OwnerID      string
	BrandID      string
	ModelID      string
	ColorID      string
	LicensePlate string
	VIN          string
	Year         int
	Odometer     int
}

// UpdateVehicleRequest contains parameters for updating a vehicle.
type UpdateVehicleRequest struct {
	ID           string
	ColorID      string
	LicensePlate string
	VIN          string
	Year         int
	Odometer     int
}

// Vehicle represents a vehicle at the port boundary.
type Vehicle struct {
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
}
