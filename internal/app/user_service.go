package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/garage/internal/ctxutil"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/ports/secondary"
)

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	userRepo       secondary.UserRepository
	technicianRepo secondary.TechnicianRepository
	newID          func() string
}

// NewUserService creates a new UserService with injected dependencies.
func NewUserService(userRepo secondary.UserRepository, technicianRepo secondary.TechnicianRepository) *UserServiceImpl {
	return &UserServiceImpl{
		userRepo:       userRepo,
		technicianRepo: technicianRepo,
		newID:          newID,
	}
}

// normalize upper-cases identity lookups the way the unique indexes expect.
func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// RegisterUser creates a user with normalized user name and email.
func (s *UserServiceImpl) RegisterUser(ctx context.Context, req primary.RegisterUserRequest) (*primary.User, error) {
	if strings.TrimSpace(req.UserName) == "" {
		return nil, fmt.Errorf("user name is required")
	}

	record := &secondary.UserRecord{
		ID:                 s.newID(),
		UserName:           strings.TrimSpace(req.UserName),
		NormalizedUserName: normalize(req.UserName),
		Email:              strings.TrimSpace(req.Email),
		NormalizedEmail:    normalize(req.Email),
		PhoneNumber:        req.PhoneNumber,
		SecurityStamp:      s.newID(),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		BranchID:           req.BranchID,
		IsActive:           true,
	}
	if err := s.userRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return s.GetUser(ctx, record.ID)
}

// GetUser retrieves a user by ID.
func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*primary.User, error) {
	record, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return recordToUser(record), nil
}

// GetUserByName retrieves a user by user name, ignoring case.
func (s *UserServiceImpl) GetUserByName(ctx context.Context, userName string) (*primary.User, error) {
	record, err := s.userRepo.GetByNormalizedUserName(ctx, normalize(userName))
	if err != nil {
		return nil, err
	}
	return recordToUser(record), nil
}

// ListUsers retrieves users matching the given filters.
func (s *UserServiceImpl) ListUsers(ctx context.Context, filters primary.UserFilters) ([]*primary.User, error) {
	records, err := s.userRepo.List(ctx, secondary.UserFilters{BranchID: filters.BranchID, ActiveOnly: filters.ActiveOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*primary.User, len(records))
	for i, r := range records {
		users[i] = recordToUser(r)
	}
	return users, nil
}

// UpdateProfile updates names, email and phone of a user.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, req primary.UpdateProfileRequest) (*primary.User, error) {
	record, err := s.userRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	record.FirstName = req.FirstName
	record.LastName = req.LastName
	record.PhoneNumber = req.PhoneNumber
	record.Email = strings.TrimSpace(req.Email)
	record.NormalizedEmail = normalize(req.Email)

	if err := s.userRepo.UpdateProfile(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetUser(ctx, req.ID)
}

// SetUserActive enables or disables a user.
func (s *UserServiceImpl) SetUserActive(ctx context.Context, id string, active bool) error {
	return s.userRepo.SetActive(ctx, id, active)
}

// AssignBranch sets the home branch of a user; an empty branchID clears it.
func (s *UserServiceImpl) AssignBranch(ctx context.Context, userID, branchID string) error {
	return s.userRepo.AssignBranch(ctx, userID, branchID)
}

// CreateRole creates a role.
func (s *UserServiceImpl) CreateRole(ctx context.Context, name, description string) (*primary.Role, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("role name is required")
	}
	record := &secondary.RoleRecord{
		ID:             s.newID(),
		Name:           strings.TrimSpace(name),
		NormalizedName: normalize(name),
		Description:    description,
	}
	if err := s.userRepo.CreateRole(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return &primary.Role{ID: record.ID, Name: record.Name, Description: record.Description}, nil
}

// AssignRole gives a user a role by role name.
func (s *UserServiceImpl) AssignRole(ctx context.Context, userID, roleName string) error {
	role, err := s.userRepo.GetRoleByName(ctx, normalize(roleName))
	if err != nil {
		return fmt.Errorf("failed to find role %s: %w", roleName, err)
	}
	return s.userRepo.AssignRole(ctx, userID, role.ID)
}

// RevokeRole removes a role from a user by role name.
func (s *UserServiceImpl) RevokeRole(ctx context.Context, userID, roleName string) error {
	role, err := s.userRepo.GetRoleByName(ctx, normalize(roleName))
	if err != nil {
		return fmt.Errorf("failed to find role %s: %w", roleName, err)
	}
	return s.userRepo.RevokeRole(ctx, userID, role.ID)
}

// ListRoles retrieves the roles of a user.
func (s *UserServiceImpl) ListRoles(ctx context.Context, userID string) ([]*primary.Role, error) {
	records, err := s.userRepo.ListRolesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	roles := make([]*primary.Role, len(records))
	for i, r := range records {
		roles[i] = &primary.Role{ID: r.ID, Name: r.Name, Description: r.Description}
	}
	return roles, nil
}

// CreatePermission creates a permission.
func (s *UserServiceImpl) CreatePermission(ctx context.Context, req primary.CreatePermissionRequest) (*primary.Permission, error) {
	if req.Code == "" {
		return nil, fmt.Errorf("permission code is required")
	}
	record := &secondary.PermissionRecord{
		ID:          s.newID(),
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		GroupName:   req.GroupName,
		IsActive:    true,
	}
	if err := s.userRepo.CreatePermission(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create permission: %w", err)
	}
	return &primary.Permission{ID: record.ID, Code: record.Code, Name: record.Name, GroupName: record.GroupName}, nil
}

// GrantPermission grants a permission to a role by role name. The acting
// user, when known, is recorded as the grantor.
func (s *UserServiceImpl) GrantPermission(ctx context.Context, roleName, permissionID string) error {
	role, err := s.userRepo.GetRoleByName(ctx, normalize(roleName))
	if err != nil {
		return fmt.Errorf("failed to find role %s: %w", roleName, err)
	}
	return s.userRepo.GrantPermission(ctx, role.ID, permissionID, ctxutil.ActorFromContext(ctx))
}

// ListPermissionCodes retrieves the permission codes a user holds through roles.
func (s *UserServiceImpl) ListPermissionCodes(ctx context.Context, userID string) ([]string, error) {
	return s.userRepo.ListPermissionCodesForUser(ctx, userID)
}

// CreateTechnician creates the technician profile of a user.
func (s *UserServiceImpl) CreateTechnician(ctx context.Context, req primary.CreateTechnicianRequest) (*primary.Technician, error) {
	record := &secondary.TechnicianRecord{
		ID:              s.newID(),
		UserID:          req.UserID,
		Specialty:       req.Specialty,
		ExperienceYears: req.ExperienceYears,
		IsAvailable:     true,
	}
	if err := s.technicianRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create technician: %w", err)
	}
	return recordToTechnician(record), nil
}

// GetTechnicianByUser retrieves the technician profile of a user.
func (s *UserServiceImpl) GetTechnicianByUser(ctx context.Context, userID string) (*primary.Technician, error) {
	record, err := s.technicianRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return recordToTechnician(record), nil
}

func recordToUser(r *secondary.UserRecord) *primary.User {
	return &primary.User{
		ID:          r.ID,
		UserName:    r.UserName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		BranchID:    r.BranchID,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
	}
}

func recordToTechnician(r *secondary.TechnicianRecord) *primary.Technician {
	return &primary.Technician{
		ID:              r.ID,
		UserID:          r.UserID,
		Specialty:       r.Specialty,
		ExperienceYears: r.ExperienceYears,
		IsAvailable:     r.IsAvailable,
	}
}

// Ensure UserServiceImpl implements the interface.
var _ primary.UserService = (*UserServiceImpl)(nil)
