package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/garage/internal/ports/secondary"
)

// UserRepository implements secondary.UserRepository with SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, user_name, normalized_user_name, email, normalized_email, phone_number, password_hash,
	security_stamp, first_name, last_name, branch_id, is_active, access_failed_count, last_login_at, created_at, updated_at`

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, u *secondary.UserRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, user_name, normalized_user_name, email, normalized_email, phone_number, password_hash,
		 security_stamp, first_name, last_name, branch_id, is_active) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, nullString(u.UserName), nullString(u.NormalizedUserName), nullString(u.Email), nullString(u.NormalizedEmail),
		nullString(u.PhoneNumber), nullString(u.PasswordHash), nullString(u.SecurityStamp),
		nullString(u.FirstName), nullString(u.LastName), nullString(u.BranchID), u.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err, "users"))
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*secondary.UserRecord, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByNormalizedUserName retrieves a user by upper-cased user name.
func (r *UserRepository) GetByNormalizedUserName(ctx context.Context, normalized string) (*secondary.UserRecord, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE normalized_user_name = ?", normalized))
	if err == sql.ErrNoRows {
		return nil, notFound("user", normalized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// List retrieves users matching the given filters.
func (r *UserRepository) List(ctx context.Context, filters secondary.UserFilters) ([]*secondary.UserRecord, error) {
	query := "SELECT " + userColumns + " FROM users WHERE 1=1"
	args := []any{}
	if filters.BranchID != "" {
		query += " AND branch_id = ?"
		args = append(args, filters.BranchID)
	}
	if filters.ActiveOnly {
		query += " AND is_active = 1"
	}
	query += " ORDER BY normalized_user_name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*secondary.UserRecord
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateProfile updates names, email and phone.
func (r *UserRepository) UpdateProfile(ctx context.Context, u *secondary.UserRecord) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, email = ?, normalized_email = ?, phone_number = ?, updated_at = ?
		 WHERE id = ?`,
		nullString(u.FirstName), nullString(u.LastName), nullString(u.Email), nullString(u.NormalizedEmail),
		nullString(u.PhoneNumber), now(), u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", translate(err, "users"))
	}
	return requireAffected(res, "user", u.ID)
}

// SetActive enables or disables a user.
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?", active, now(), id)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireAffected(res, "user", id)
}

// AssignBranch sets or clears the user's home branch.
func (r *UserRepository) AssignBranch(ctx context.Context, userID, branchID string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET branch_id = ?, updated_at = ? WHERE id = ?", nullString(branchID), now(), userID)
	if err != nil {
		return fmt.Errorf("failed to assign branch: %w", translate(err, "users"))
	}
	return requireAffected(res, "user", userID)
}

// CreateRole persists a new role.
func (r *UserRepository) CreateRole(ctx context.Context, role *secondary.RoleRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO roles (id, name, normalized_name, description) VALUES (?, ?, ?, ?)",
		role.ID, nullString(role.Name), nullString(role.NormalizedName), nullString(role.Description),
	)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", translate(err, "roles"))
	}
	return nil
}

// GetRoleByName retrieves a role by upper-cased name.
func (r *UserRepository) GetRoleByName(ctx context.Context, normalized string) (*secondary.RoleRecord, error) {
	var (
		role                  secondary.RoleRecord
		name, normName, descr sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, normalized_name, description FROM roles WHERE normalized_name = ?", normalized,
	).Scan(&role.ID, &name, &normName, &descr)
	if err == sql.ErrNoRows {
		return nil, notFound("role", normalized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	role.Name = name.String
	role.NormalizedName = normName.String
	role.Description = descr.String
	return &role, nil
}

// AssignRole links a user to a role.
func (r *UserRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := r.db.ExecContext(ctx, "INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", userID, roleID)
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", translate(err, "user_roles"))
	}
	return nil
}

// RevokeRole unlinks a user from a role.
func (r *UserRepository) RevokeRole(ctx context.Context, userID, roleID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id = ? AND role_id = ?", userID, roleID)
	if err != nil {
		return fmt.Errorf("failed to revoke role: %w", err)
	}
	return requireAffected(res, "user role", userID+"/"+roleID)
}

// ListRolesForUser retrieves the roles of a user, ordered by name.
func (r *UserRepository) ListRolesForUser(ctx context.Context, userID string) ([]*secondary.RoleRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.name, r.normalized_name, r.description FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id WHERE ur.user_id = ? ORDER BY r.normalized_name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*secondary.RoleRecord
	for rows.Next() {
		var (
			role                  secondary.RoleRecord
			name, normName, descr sql.NullString
		)
		if err := rows.Scan(&role.ID, &name, &normName, &descr); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		role.Name = name.String
		role.NormalizedName = normName.String
		role.Description = descr.String
		roles = append(roles, &role)
	}
	return roles, rows.Err()
}

// CreatePermission persists a new permission.
func (r *UserRepository) CreatePermission(ctx context.Context, p *secondary.PermissionRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO permissions (id, code, name, description, group_name, is_active) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.Code, p.Name, nullString(p.Description), nullString(p.GroupName), p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create permission: %w", translate(err, "permissions"))
	}
	return nil
}

// GrantPermission grants a permission to a role.
func (r *UserRepository) GrantPermission(ctx context.Context, roleID, permissionID, grantedBy string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO role_permissions (role_id, permission_id, granted_by) VALUES (?, ?, ?)",
		roleID, permissionID, nullString(grantedBy),
	)
	if err != nil {
		return fmt.Errorf("failed to grant permission: %w", translate(err, "role_permissions"))
	}
	return nil
}

// ListPermissionCodesForUser returns the distinct active permission codes a user holds.
func (r *UserRepository) ListPermissionCodesForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT p.code FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 JOIN user_roles ur ON ur.role_id = rp.role_id
		 WHERE ur.user_id = ? AND p.is_active = 1 ORDER BY p.code`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func scanUser(s rowScanner) (*secondary.UserRecord, error) {
	var (
		u                                       secondary.UserRecord
		userName, normName, email, normEmail    sql.NullString
		phone, hash, stamp, first, last, branch sql.NullString
		lastLogin, createdAt, updatedAt         sql.NullTime
	)
	err := s.Scan(&u.ID, &userName, &normName, &email, &normEmail, &phone, &hash, &stamp, &first, &last, &branch,
		&u.IsActive, &u.AccessFailedCount, &lastLogin, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	u.UserName = userName.String
	u.NormalizedUserName = normName.String
	u.Email = email.String
	u.NormalizedEmail = normEmail.String
	u.PhoneNumber = phone.String
	u.PasswordHash = hash.String
	u.SecurityStamp = stamp.String
	u.FirstName = first.String
	u.LastName = last.String
	u.BranchID = branch.String
	u.LastLoginAt = timePtr(lastLogin)
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = timePtr(updatedAt)
	return &u, nil
}

var _ secondary.UserRepository = (*UserRepository)(nil)

// TechnicianRepository implements secondary.TechnicianRepository with SQLite.
type TechnicianRepository struct {
	db *sql.DB
}

// NewTechnicianRepository creates a new SQLite technician repository.
func NewTechnicianRepository(db *sql.DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

// Create persists a technician profile.
func (r *TechnicianRepository) Create(ctx context.Context, t *secondary.TechnicianRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO technicians (id, user_id, specialty, experience_years, is_available) VALUES (?, ?, ?, ?, ?)",
		t.ID, t.UserID, nullString(t.Specialty), t.ExperienceYears, t.IsAvailable,
	)
	if err != nil {
		return fmt.Errorf("failed to create technician: %w", translate(err, "technicians"))
	}
	return nil
}

// GetByID retrieves a technician by ID.
func (r *TechnicianRepository) GetByID(ctx context.Context, id string) (*secondary.TechnicianRecord, error) {
	return r.get(ctx, "id", id)
}

// GetByUserID retrieves the technician profile of a user.
func (r *TechnicianRepository) GetByUserID(ctx context.Context, userID string) (*secondary.TechnicianRecord, error) {
	return r.get(ctx, "user_id", userID)
}

func (r *TechnicianRepository) get(ctx context.Context, column, value string) (*secondary.TechnicianRecord, error) {
	var (
		t         secondary.TechnicianRecord
		specialty sql.NullString
		createdAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, specialty, experience_years, is_available, created_at FROM technicians WHERE "+column+" = ?",
		value,
	).Scan(&t.ID, &t.UserID, &specialty, &t.ExperienceYears, &t.IsAvailable, &createdAt)
	if err == sql.ErrNoRows {
		return nil, notFound("technician", value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get technician: %w", err)
	}
	t.Specialty = specialty.String
	t.CreatedAt = createdAt.Time
	return &t, nil
}

// SetAvailable marks a technician available or busy.
func (r *TechnicianRepository) SetAvailable(ctx context.Context, id string, available bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE technicians SET is_available = ? WHERE id = ?", available, id)
	if err != nil {
		return fmt.Errorf("failed to update technician: %w", err)
	}
	return requireAffected(res, "technician", id)
}

var _ secondary.TechnicianRepository = (*TechnicianRepository)(nil)
