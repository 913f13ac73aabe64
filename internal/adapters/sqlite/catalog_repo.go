package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/garage/internal/ports/secondary"
)

// VehicleCatalogRepository implements secondary.VehicleCatalogRepository with SQLite.
type VehicleCatalogRepository struct {
	db *sql.DB
}

// NewVehicleCatalogRepository creates a new SQLite vehicle catalog repository.
func NewVehicleCatalogRepository(db *sql.DB) *VehicleCatalogRepository {
	return &VehicleCatalogRepository{db: db}
}

// CreateBrand persists a new brand.
func (r *VehicleCatalogRepository) CreateBrand(ctx context.Context, b *secondary.VehicleBrandRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO vehicle_brands (id, name, country, is_active) VALUES (?, ?, ?, ?)",
		b.ID, b.Name, nullString(b.Country), b.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create brand: %w", translate(err, "vehicle_brands"))
	}
	return nil
}

// ListBrands retrieves all brands ordered by name.
func (r *VehicleCatalogRepository) ListBrands(ctx context.Context) ([]*secondary.VehicleBrandRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, country, is_active FROM vehicle_brands ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	var brands []*secondary.VehicleBrandRecord
	for rows.Next() {
		var (
			b       secondary.VehicleBrandRecord
			country sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Name, &country, &b.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		b.Country = country.String
		brands = append(brands, &b)
	}
	return brands, rows.Err()
}

// CreateModel persists a new model under a brand.
func (r *VehicleCatalogRepository) CreateModel(ctx context.Context, m *secondary.VehicleModelRecord) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO vehicle_models (id, brand_id, name) VALUES (?, ?, ?)", m.ID, m.BrandID, m.Name)
	if err != nil {
		return fmt.Errorf("failed to create model: %w", translate(err, "vehicle_models"))
	}
	return nil
}

// GetModel retrieves a model by ID.
func (r *VehicleCatalogRepository) GetModel(ctx context.Context, id string) (*secondary.VehicleModelRecord, error) {
	var m secondary.VehicleModelRecord
	err := r.db.QueryRowContext(ctx, "SELECT id, brand_id, name FROM vehicle_models WHERE id = ?", id).Scan(&m.ID, &m.BrandID, &m.Name)
	if err == sql.ErrNoRows {
		return nil, notFound("model", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model: %w", err)
	}
	return &m, nil
}

// ListModels retrieves the models of a brand ordered by name.
func (r *VehicleCatalogRepository) ListModels(ctx context.Context, brandID string) ([]*secondary.VehicleModelRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, brand_id, name FROM vehicle_models WHERE brand_id = ? ORDER BY name", brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	var models []*secondary.VehicleModelRecord
	for rows.Next() {
		var m secondary.VehicleModelRecord
		if err := rows.Scan(&m.ID, &m.BrandID, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		models = append(models, &m)
	}
	return models, rows.Err()
}

// CreateColor persists a new color.
func (r *VehicleCatalogRepository) CreateColor(ctx context.Context, c *secondary.VehicleColorRecord) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO vehicle_colors (id, name, hex_code) VALUES (?, ?, ?)", c.ID, c.Name, nullString(c.HexCode))
	if err != nil {
		return fmt.Errorf("failed to create color: %w", translate(err, "vehicle_colors"))
	}
	return nil
}

// ListColors retrieves all colors ordered by name.
func (r *VehicleCatalogRepository) ListColors(ctx context.Context) ([]*secondary.VehicleColorRecord, error) {
	return r.queryColors(ctx, "SELECT id, name, hex_code FROM vehicle_colors ORDER BY name")
}

// LinkModelColor makes a color available for a model.
func (r *VehicleCatalogRepository) LinkModelColor(ctx context.Context, modelID, colorID string) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO model_colors (model_id, color_id) VALUES (?, ?)", modelID, colorID)
	if err != nil {
		return fmt.Errorf("failed to link color: %w", translate(err, "model_colors"))
	}
	return nil
}

// ListModelColors retrieves the colors available for a model.
func (r *VehicleCatalogRepository) ListModelColors(ctx context.Context, modelID string) ([]*secondary.VehicleColorRecord, error) {
	return r.queryColors(ctx,
		`SELECT c.id, c.name, c.hex_code FROM vehicle_colors c
		 JOIN model_colors mc ON mc.color_id = c.id WHERE mc.model_id = ? ORDER BY c.name`,
		modelID,
	)
}

func (r *VehicleCatalogRepository) queryColors(ctx context.Context, query string, args ...any) ([]*secondary.VehicleColorRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list colors: %w", err)
	}
	defer rows.Close()

	var colors []*secondary.VehicleColorRecord
	for rows.Next() {
		var (
			c   secondary.VehicleColorRecord
			hex sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &hex); err != nil {
			return nil, fmt.Errorf("failed to scan color: %w", err)
		}
		c.HexCode = hex.String
		colors = append(colors, &c)
	}
	return colors, rows.Err()
}

var _ secondary.VehicleCatalogRepository = (*VehicleCatalogRepository)(nil)

// ServiceCatalogRepository implements secondary.ServiceCatalogRepository with SQLite.
type ServiceCatalogRepository struct {
	db *sql.DB
}

// NewServiceCatalogRepository creates a new SQLite service catalog repository.
func NewServiceCatalogRepository(db *sql.DB) *ServiceCatalogRepository {
	return &ServiceCatalogRepository{db: db}
}

// CreateCategory persists a new service category.
func (r *ServiceCatalogRepository) CreateCategory(ctx context.Context, c *secondary.ServiceCategoryRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO service_categories (id, name, description, parent_service_category_id, is_active) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, nullString(c.Description), nullString(c.ParentID), c.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create service category: %w", translate(err, "service_categories"))
	}
	return nil
}

const categoryColumns = "id, name, description, parent_service_category_id, is_active"

// GetCategory retrieves a category by ID.
func (r *ServiceCatalogRepository) GetCategory(ctx context.Context, id string) (*secondary.ServiceCategoryRecord, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM service_categories WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, notFound("service category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service category: %w", err)
	}
	return c, nil
}

// ListCategories retrieves all categories ordered by name.
func (r *ServiceCatalogRepository) ListCategories(ctx context.Context) ([]*secondary.ServiceCategoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+categoryColumns+" FROM service_categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list service categories: %w", err)
	}
	defer rows.Close()

	var categories []*secondary.ServiceCategoryRecord
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SetCategoryParent sets or clears a category's parent.
func (r *ServiceCatalogRepository) SetCategoryParent(ctx context.Context, id, parentID string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE service_categories SET parent_service_category_id = ?, updated_at = ? WHERE id = ?",
		nullString(parentID), now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set category parent: %w", translate(err, "service_categories"))
	}
	return requireAffected(res, "service category", id)
}

// CategoryParents returns the parent of every category that has one.
func (r *ServiceCatalogRepository) CategoryParents(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, parent_service_category_id FROM service_categories WHERE parent_service_category_id IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("failed to load category parents: %w", err)
	}
	defer rows.Close()

	parents := map[string]string{}
	for rows.Next() {
		var id, parent string
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, fmt.Errorf("failed to scan category parent: %w", err)
		}
		parents[id] = parent
	}
	return parents, rows.Err()
}

const serviceColumns = "s.id, s.service_category_id, s.branch_id, s.name, s.description, s.price_cents, s.estimated_minutes, s.is_advanced, s.is_active"

// CreateService persists a new service.
func (r *ServiceCatalogRepository) CreateService(ctx context.Context, s *secondary.ServiceRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO services (id, service_category_id, branch_id, name, description, price_cents, estimated_minutes, is_advanced, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.CategoryID, nullString(s.BranchID), s.Name, nullString(s.Description),
		s.PriceCents, s.EstimatedMinutes, s.IsAdvanced, s.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", translate(err, "services"))
	}
	return nil
}

// GetService retrieves a service by ID.
func (r *ServiceCatalogRepository) GetService(ctx context.Context, id string) (*secondary.ServiceRecord, error) {
	s, err := scanService(r.db.QueryRowContext(ctx, "SELECT "+serviceColumns+" FROM services s WHERE s.id = ?", id))
	if err == sql.ErrNoRows {
		return nil, notFound("service", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return s, nil
}

// ListServices retrieves services matching the given filters.
func (r *ServiceCatalogRepository) ListServices(ctx context.Context, filters secondary.ServiceFilters) ([]*secondary.ServiceRecord, error) {
	query := "SELECT " + serviceColumns + " FROM services s"
	args := []any{}
	if filters.BranchID != "" {
		query += " JOIN branch_services bs ON bs.service_id = s.id AND bs.branch_id = ? AND bs.is_available = 1"
		args = append(args, filters.BranchID)
	}
	query += " WHERE 1=1"
	if filters.CategoryID != "" {
		query += " AND s.service_category_id = ?"
		args = append(args, filters.CategoryID)
	}
	if filters.ActiveOnly {
		query += " AND s.is_active = 1"
	}
	query += " ORDER BY s.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []*secondary.ServiceRecord
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// SetBranchOffering records whether a branch offers a service.
func (r *ServiceCatalogRepository) SetBranchOffering(ctx context.Context, branchID, serviceID string, available bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO branch_services (branch_id, service_id, is_available) VALUES (?, ?, ?)
		 ON CONFLICT(branch_id, service_id) DO UPDATE SET is_available = excluded.is_available`,
		branchID, serviceID, available,
	)
	if err != nil {
		return fmt.Errorf("failed to set branch offering: %w", translate(err, "branch_services"))
	}
	return nil
}

func scanCategory(s rowScanner) (*secondary.ServiceCategoryRecord, error) {
	var (
		c             secondary.ServiceCategoryRecord
		descr, parent sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Name, &descr, &parent, &c.IsActive); err != nil {
		return nil, err
	}
	c.Description = descr.String
	c.ParentID = parent.String
	return &c, nil
}

func scanService(s rowScanner) (*secondary.ServiceRecord, error) {
	var (
		svc           secondary.ServiceRecord
		branch, descr sql.NullString
	)
	err := s.Scan(&svc.ID, &svc.CategoryID, &branch, &svc.Name, &descr, &svc.PriceCents,
		&svc.EstimatedMinutes, &svc.IsAdvanced, &svc.IsActive)
	if err != nil {
		return nil, err
	}
	svc.BranchID = branch.String
	svc.Description = descr.String
	return &svc, nil
}

var _ secondary.ServiceCatalogRepository = (*ServiceCatalogRepository)(nil)
