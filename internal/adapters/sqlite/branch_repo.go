package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/garage/internal/ports/secondary"
)

// BranchRepository implements secondary.BranchRepository with SQLite.
type BranchRepository struct {
	db *sql.DB
}

// NewBranchRepository creates a new SQLite branch repository.
func NewBranchRepository(db *sql.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

const branchColumns = "id, name, phone_number, email, street, district, city, description, is_active, created_at, updated_at"

// Create persists a new branch.
func (r *BranchRepository) Create(ctx context.Context, b *secondary.BranchRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO branches (id, name, phone_number, email, street, district, city, description, is_active) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		b.ID, b.Name, nullString(b.PhoneNumber), nullString(b.Email), nullString(b.Street),
		nullString(b.District), nullString(b.City), nullString(b.Description), b.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", translate(err, "branches"))
	}
	return nil
}

// GetByID retrieves a branch by its ID.
func (r *BranchRepository) GetByID(ctx context.Context, id string) (*secondary.BranchRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+branchColumns+" FROM branches WHERE id = ?", id)
	b, err := scanBranch(row)
	if err == sql.ErrNoRows {
		return nil, notFound("branch", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return b, nil
}

// List retrieves branches matching the given filters.
func (r *BranchRepository) List(ctx context.Context, filters secondary.BranchFilters) ([]*secondary.BranchRecord, error) {
	query := "SELECT " + branchColumns + " FROM branches WHERE 1=1"
	args := []any{}
	if filters.ActiveOnly {
		query += " AND is_active = 1"
	}
	if filters.City != "" {
		query += " AND city = ?"
		args = append(args, filters.City)
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	var branches []*secondary.BranchRecord
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// Update updates the descriptive fields of a branch.
func (r *BranchRepository) Update(ctx context.Context, b *secondary.BranchRecord) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE branches SET name = ?, phone_number = ?, email = ?, street = ?, district = ?, city = ?,
		 description = ?, updated_at = ? WHERE id = ?`,
		b.Name, nullString(b.PhoneNumber), nullString(b.Email), nullString(b.Street),
		nullString(b.District), nullString(b.City), nullString(b.Description), now(), b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update branch: %w", translate(err, "branches"))
	}
	return requireAffected(res, "branch", b.ID)
}

// SetActive activates or deactivates a branch.
func (r *BranchRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE branches SET is_active = ?, updated_at = ? WHERE id = ?", active, now(), id)
	if err != nil {
		return fmt.Errorf("failed to update branch: %w", err)
	}
	return requireAffected(res, "branch", id)
}

// ReplaceOperatingHours replaces the weekly schedule of a branch.
func (r *BranchRepository) ReplaceOperatingHours(ctx context.Context, branchID string, hours []*secondary.OperatingHoursRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM operating_hours WHERE branch_id = ?", branchID); err != nil {
		return fmt.Errorf("failed to clear operating hours: %w", err)
	}
	for _, h := range hours {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO operating_hours (id, branch_id, day_of_week, is_open, open_time, close_time) VALUES (?, ?, ?, ?, ?, ?)",
			h.ID, branchID, h.DayOfWeek, h.IsOpen, nullString(h.OpenTime), nullString(h.CloseTime),
		)
		if err != nil {
			return fmt.Errorf("failed to insert operating hours: %w", translate(err, "operating_hours"))
		}
	}
	return tx.Commit()
}

// GetOperatingHours retrieves the weekly schedule of a branch, ordered by day.
func (r *BranchRepository) GetOperatingHours(ctx context.Context, branchID string) ([]*secondary.OperatingHoursRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, branch_id, day_of_week, is_open, open_time, close_time FROM operating_hours WHERE branch_id = ? ORDER BY day_of_week",
		branchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get operating hours: %w", err)
	}
	defer rows.Close()

	var hours []*secondary.OperatingHoursRecord
	for rows.Next() {
		var (
			h                 secondary.OperatingHoursRecord
			openAt, closeAt   sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.BranchID, &h.DayOfWeek, &h.IsOpen, &openAt, &closeAt); err != nil {
			return nil, fmt.Errorf("failed to scan operating hours: %w", err)
		}
		h.OpenTime = openAt.String
		h.CloseTime = closeAt.String
		hours = append(hours, &h)
	}
	return hours, rows.Err()
}

// Delete removes a branch.
func (r *BranchRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "branches", "branch", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBranch(s rowScanner) (*secondary.BranchRecord, error) {
	var (
		b                                            secondary.BranchRecord
		phone, email, street, district, city, descr sql.NullString
		createdAt                                    sql.NullTime
		updatedAt                                    sql.NullTime
	)
	if err := s.Scan(&b.ID, &b.Name, &phone, &email, &street, &district, &city, &descr, &b.IsActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	b.PhoneNumber = phone.String
	b.Email = email.String
	b.Street = street.String
	b.District = district.String
	b.City = city.String
	b.Description = descr.String
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = timePtr(updatedAt)
	return &b, nil
}

var _ secondary.BranchRepository = (*BranchRepository)(nil)
