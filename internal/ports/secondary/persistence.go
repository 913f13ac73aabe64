// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
//
// Records mirror table rows. An empty string means NULL for optional text
// and key columns; optional timestamps are nil pointers.
package secondary

import (
	"context"
	"time"
)

// BranchRepository defines the secondary port for branch persistence.
type BranchRepository interface {
	// Create persists a new branch.
	Create(ctx context.Context, branch *BranchRecord) error

	// GetByID retrieves a branch by its ID.
	GetByID(ctx context.Context, id string) (*BranchRecord, error)

	// List retrieves branches matching the given filters.
	List(ctx context.Context, filters BranchFilters) ([]*BranchRecord, error)

	// Update updates the descriptive fields of a branch.
	Update(ctx context.Context, branch *BranchRecord) error

	// SetActive activates or deactivates a branch.
	SetActive(ctx context.Context, id string, active bool) error

	// ReplaceOperatingHours replaces the weekly schedule of a branch.
	ReplaceOperatingHours(ctx context.Context, branchID string, hours []*OperatingHoursRecord) error

	// GetOperatingHours retrieves the weekly schedule of a branch, ordered by day.
	GetOperatingHours(ctx context.Context, branchID string) ([]*OperatingHoursRecord, error)

	// Delete removes a branch. Rows that still reference it block the delete.
	Delete(ctx context.Context, id string) error
}

// BranchRecord represents a branch as stored in persistence.
type BranchRecord struct {
	ID          string
	Name        string
	PhoneNumber string
	Email       string
	Street      string
	District    string
	City        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// BranchFilters contains filter options for querying branches.
type BranchFilters struct {
	ActiveOnly bool
	City       string
}

// OperatingHoursRecord is one day of a branch schedule.
type OperatingHoursRecord struct {
	ID        string
	BranchID  string
	DayOfWeek int
	IsOpen    bool
	OpenTime  string // "08:00"
	CloseTime string
}

// UserRepository defines the secondary port for users, roles and permissions.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *UserRecord) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*UserRecord, error)

	// GetByNormalizedUserName retrieves a user by upper-cased user name.
	GetByNormalizedUserName(ctx context.Context, normalized string) (*UserRecord, error)

	// List retrieves users matching the given filters.
	List(ctx context.Context, filters UserFilters) ([]*UserRecord, error)

	// UpdateProfile updates names, email and phone.
	UpdateProfile(ctx context.Context, user *UserRecord) error

	// SetActive enables or disables a user.
	SetActive(ctx context.Context, id string, active bool) error

	// AssignBranch sets or clears (empty branchID) the user's home branch.
	AssignBranch(ctx context.Context, userID, branchID string) error

	// CreateRole persists a new role.
	CreateRole(ctx context.Context, role *RoleRecord) error

	// GetRoleByName retrieves a role by upper-cased name.
	GetRoleByName(ctx context.Context, normalized string) (*RoleRecord, error)

	// AssignRole links a user to a role.
	AssignRole(ctx context.Context, userID, roleID string) error

	// RevokeRole unlinks a user from a role.
	RevokeRole(ctx context.Context, userID, roleID string) error

	// ListRolesForUser retrieves the roles of a user, ordered by name.
	ListRolesForUser(ctx context.Context, userID string) ([]*RoleRecord, error)

	// CreatePermission persists a new permission.
	CreatePermission(ctx context.Context, perm *PermissionRecord) error

	// GrantPermission grants a permission to a role.
	GrantPermission(ctx context.Context, roleID, permissionID, grantedBy string) error

	// ListPermissionCodesForUser returns the distinct permission codes a user holds through roles.
	ListPermissionCodesForUser(ctx context.Context, userID string) ([]string, error)
}

// UserRecord represents a user as stored in persistence.
type UserRecord struct {
	ID                 string
	UserName           string
	NormalizedUserName string
	Email              string
	NormalizedEmail    string
	PhoneNumber        string
	PasswordHash       string
	SecurityStamp      string
	FirstName          string
	LastName           string
	BranchID           string
	IsActive           bool
	AccessFailedCount  int
	LastLoginAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// UserFilters contains filter options for querying users.
type UserFilters struct {
	BranchID   string
	ActiveOnly bool
}

// RoleRecord represents a role as stored in persistence.
type RoleRecord struct {
	ID             string
	Name           string
	NormalizedName string
	Description    string
}

// PermissionRecord represents a permission as stored in persistence.
type PermissionRecord struct {
	ID          string
	Code        string
	Name        string
	Description string
	GroupName   string
	IsActive    bool
}

// TechnicianRepository defines the secondary port for technician profiles.
type TechnicianRepository interface {
	// Create persists a technician profile.
	Create(ctx context.Context, tech *TechnicianRecord) error

	// GetByID retrieves a technician by ID.
	GetByID(ctx context.Context, id string) (*TechnicianRecord, error)

	// GetByUserID retrieves the technician profile of a user.
	GetByUserID(ctx context.Context, userID string) (*TechnicianRecord, error)

	// SetAvailable marks a technician available or busy.
	SetAvailable(ctx context.Context, id string, available bool) error
}

// TechnicianRecord represents a technician profile as stored in persistence.
type TechnicianRecord struct {
	ID              string
	UserID          string
	Specialty       string
	ExperienceYears int
	IsAvailable     bool
	CreatedAt       time.Time
}
