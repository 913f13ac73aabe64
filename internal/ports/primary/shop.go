package primary

import (
	"context"
	"time"
)

// BranchService defines the primary port for branch operations.
type BranchService interface {
	// CreateBranch creates a new active branch.
	CreateBranch(ctx context.Context, req CreateBranchRequest) (*Branch, error)

	// GetBranch retrieves a branch by ID.
	GetBranch(ctx context.Context, id string) (*Branch, error)

	// ListBranches retrieves branches matching the given filters.
	ListBranches(ctx context.Context, filters BranchFilters) ([]*Branch, error)

	// UpdateBranch updates the descriptive fields of a branch.
	UpdateBranch(ctx context.Context, req UpdateBranchRequest) (*Branch, error)

	// SetBranchActive activates or deactivates a branch.
	SetBranchActive(ctx context.Context, id string, active bool) error

	// SetOperatingHours replaces the weekly schedule of a branch.
	SetOperatingHours(ctx context.Context, branchID string, hours []OperatingHours) error

	// GetOperatingHours retrieves the weekly schedule of a branch.
	GetOperatingHours(ctx context.Context, branchID string) ([]OperatingHours, error)

	// DeleteBranch deletes a branch nothing references any more.
	DeleteBranch(ctx context.Context, id string) error
}

// CreateBranchRequest contains parameters for creating a branch.
type CreateBranchRequest struct {
	Name        string
	PhoneNumber string
	Email       string
	Street      string
	District    string
	City        string
	Description string
}

// UpdateBranchRequest contains parameters for updating a branch.
type UpdateBranchRequest struct {
	ID string
	CreateBranchRequest
}

// BranchFilters contains filter options for listing branches.
type BranchFilters struct {
	ActiveOnly bool
	City       string
}

// Branch represents a branch at the port boundary.
type Branch struct {
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
}

// OperatingHours is one day of a branch schedule. Times are "HH:MM".
type OperatingHours struct {
	DayOfWeek int
	IsOpen    bool
	OpenTime  string
	CloseTime string
}

// UserService defines the primary port for users, roles and technicians.
type UserService interface {
	// RegisterUser creates a user with normalized user name and email.
	RegisterUser(ctx context.Context, req RegisterUserRequest) (*User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, id string) (*User, error)

	// GetUserByName retrieves a user by user name, ignoring case.
	GetUserByName(ctx context.Context, userName string) (*User, error)

	// ListUsers retrieves users matching the given filters.
	ListUsers(ctx context.Context, filters UserFilters) ([]*User, error)

	// UpdateProfile updates names, email and phone of a user.
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error)

	// SetUserActive enables or disables a user.
	SetUserActive(ctx context.Context, id string, active bool) error

	// AssignBranch sets the home branch of a user; an empty branchID clears it.
	AssignBranch(ctx context.Context, userID, branchID string) error

	// CreateRole creates a role.
	CreateRole(ctx context.Context, name, description string) (*Role, error)

	// AssignRole gives a user a role by role name.
	AssignRole(ctx context.Context, userID, roleName string) error

	// RevokeRole removes a role from a user by role name.
	RevokeRole(ctx context.Context, userID, roleName string) error

	// ListRoles retrieves the roles of a user.
	ListRoles(ctx context.Context, userID string) ([]*Role, error)

	// CreatePermission creates a permission.
	CreatePermission(ctx context.Context, req CreatePermissionRequest) (*Permission, error)

	// GrantPermission grants a permission to a role by role name.
	GrantPermission(ctx context.Context, roleName, permissionID string) error

	// ListPermissionCodes retrieves the permission codes a user holds through roles.
	ListPermissionCodes(ctx context.Context, userID string) ([]string, error)

	// CreateTechnician creates the technician profile of a user.
	CreateTechnician(ctx context.Context, req CreateTechnicianRequest) (*Technician, error)

	// GetTechnicianByUser retrieves the technician profile of a user.
	GetTechnicianByUser(ctx context.Context, userID string) (*Technician, error)
}

// RegisterUserRequest contains parameters for registering a user.
type RegisterUserRequest struct {
	UserName    string
	Email       string
	PhoneNumber string
	FirstName   string
	LastName    string
	BranchID    string
}

// UpdateProfileRequest contains parameters for updating a user profile.
type UpdateProfileRequest struct {
	ID          string
	Email       string
	PhoneNumber string
	FirstName   string
	LastName    string
}

// UserFilters contains filter options for listing users.
type UserFilters struct {
	BranchID   string
	ActiveOnly bool
}

// User represents a user at the port boundary.
type User struct {
	ID          string
	UserName    string
	Email       string
	PhoneNumber string
	FirstName   string
	LastName    string
	BranchID    string
	IsActive    bool
	CreatedAt   time.Time
}

// Role represents a role at the port boundary.
type Role struct {
	ID          string
	Name        string
	Description string
}

// CreatePermissionRequest contains parameters for creating a permission.
type CreatePermissionRequest struct {
	Code        string
	Name        string
	Description string
	GroupName   string
}

// Permission represents a permission at the port boundary.
type Permission struct {
	ID        string
	Code      string
	Name      string
	GroupName string
}

// CreateTechnicianRequest contains parameters for creating a technician profile.
type CreateTechnicianRequest struct {
	UserID          string
	Specialty       string
	ExperienceYears int
}

// Technician represents a technician profile at the port boundary.
type Technician struct {
	ID              string
	UserID          string
	Specialty       string
	ExperienceYears int
	IsAvailable     bool
}
