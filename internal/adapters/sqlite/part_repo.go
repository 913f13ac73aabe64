package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/garage/internal/ports/secondary"
)

// PartRepository implements secondary.PartRepository with SQLite.
type PartRepository struct {
	db *sql.DB
}

// NewPartRepository creates a new SQLite part repository.
func NewPartRepository(db *sql.DB) *PartRepository {
	return &PartRepository{db: db}
}

// CreateCategory persists a new part category for a model.
func (r *PartRepository) CreateCategory(ctx context.Context, c *secondary.PartCategoryRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO part_categories (id, model_id, category_name, description) VALUES (?, ?, ?, ?)",
		c.ID, c.ModelID, c.CategoryName, nullString(c.Description),
	)
	if err != nil {
		return fmt.Errorf("failed to create part category: %w", translate(err, "part_categories"))
	}
	return nil
}

const partColumns = "id, part_category_id, branch_id, name, part_number, price_cents, warranty_months"

// CreatePart persists a new part.
func (r *PartRepository) CreatePart(ctx context.Context, p *secondary.PartRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO parts (id, part_category_id, branch_id, name, part_number, price_cents, warranty_months) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.CategoryID, nullString(p.BranchID), p.Name, nullString(p.PartNumber), p.PriceCents, nullInt64(int64(p.WarrantyMonths)),
	)
	if err != nil {
		return fmt.Errorf("failed to create part: %w", translate(err, "parts"))
	}
	return nil
}

// GetPart retrieves a part by ID.
func (r *PartRepository) GetPart(ctx context.Context, id string) (*secondary.PartRecord, error) {
	p, err := scanPart(r.db.QueryRowContext(ctx, "SELECT "+partColumns+" FROM parts WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, notFound("part", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get part: %w", err)
	}
	return p, nil
}

// ListParts retrieves the parts of a category ordered by name.
func (r *PartRepository) ListParts(ctx context.Context, categoryID string) ([]*secondary.PartRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+partColumns+" FROM parts WHERE part_category_id = ? ORDER BY name", categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	defer rows.Close()

	var parts []*secondary.PartRecord
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// SetInventory creates or replaces the stock row of a part at a branch.
func (r *PartRepository) SetInventory(ctx context.Context, inv *secondary.InventoryRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO part_inventories (id, part_id, branch_id, stock, min_stock, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(part_id, branch_id) DO UPDATE SET stock = excluded.stock, min_stock = excluded.min_stock,
		 updated_at = excluded.updated_at`,
		inv.ID, inv.PartID, inv.BranchID, inv.Stock, inv.MinStock, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set inventory: %w", translate(err, "part_inventories"))
	}
	return nil
}

const inventoryColumns = "id, part_id, branch_id, stock, min_stock, updated_at"

// GetInventory retrieves the stock row of a part at a branch.
func (r *PartRepository) GetInventory(ctx context.Context, partID, branchID string) (*secondary.InventoryRecord, error) {
	inv, err := scanInventory(r.db.QueryRowContext(ctx,
		"SELECT "+inventoryColumns+" FROM part_inventories WHERE part_id = ? AND branch_id = ?", partID, branchID))
	if err == sql.ErrNoRows {
		return nil, notFound("inventory", partID+"@"+branchID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return inv, nil
}

// AdjustStock adds delta to the stock of a part at a branch.
// The stock >= 0 check rejects movements that would go negative.
func (r *PartRepository) AdjustStock(ctx context.Context, partID, branchID string, delta int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE part_inventories SET stock = stock + ?, updated_at = ? WHERE part_id = ? AND branch_id = ?",
		delta, now(), partID, branchID,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", translate(err, "part_inventories"))
	}
	return requireAffected(res, "inventory", partID+"@"+branchID)
}

// ListInventory retrieves stock rows matching the given filters.
func (r *PartRepository) ListInventory(ctx context.Context, filters secondary.InventoryFilters) ([]*secondary.InventoryRecord, error) {
	query := "SELECT " + inventoryColumns + " FROM part_inventories WHERE 1=1"
	args := []any{}
	if filters.PartID != "" {
		query += " AND part_id = ?"
		args = append(args, filters.PartID)
	}
	if filters.BranchID != "" {
		query += " AND branch_id = ?"
		args = append(args, filters.BranchID)
	}
	query += " ORDER BY branch_id, part_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var out []*secondary.InventoryRecord
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanPart(s rowScanner) (*secondary.PartRecord, error) {
	var (
		p              secondary.PartRecord
		branch, number sql.NullString
		warranty       sql.NullInt64
	)
	if err := s.Scan(&p.ID, &p.CategoryID, &branch, &p.Name, &number, &p.PriceCents, &warranty); err != nil {
		return nil, err
	}
	p.BranchID = branch.String
	p.PartNumber = number.String
	p.WarrantyMonths = int(warranty.Int64)
	return &p, nil
}

func scanInventory(s rowScanner) (*secondary.InventoryRecord, error) {
	var (
		inv       secondary.InventoryRecord
		updatedAt sql.NullTime
	)
	if err := s.Scan(&inv.ID, &inv.PartID, &inv.BranchID, &inv.Stock, &inv.MinStock, &updatedAt); err != nil {
		return nil, err
	}
	inv.UpdatedAt = updatedAt.Time
	return &inv, nil
}

var _ secondary.PartRepository = (*PartRepository)(nil)
