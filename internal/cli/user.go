package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/wire"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users, roles and technicians",
}

var userRegisterCmd = &cobra.Command{
	Use:   "register [username]",
	Short: "Register a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		phone, _ := cmd.Flags().GetString("phone")
		first, _ := cmd.Flags().GetString("first-name")
		last, _ := cmd.Flags().GetString("last-name")
		branchID, _ := cmd.Flags().GetString("branch")

		user, err := wire.UserService().RegisterUser(NewContext(), primary.RegisterUserRequest{
			UserName:    args[0],
			Email:       email,
			PhoneNumber: phone,
			FirstName:   first,
			LastName:    last,
			BranchID:    branchID,
		})
		if err != nil {
			return fmt.Errorf("failed to register user: %w", err)
		}
		fmt.Printf("%s Registered user %s: %s\n", okMark, user.ID, user.UserName)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		branchID, _ := cmd.Flags().GetString("branch")
		activeOnly, _ := cmd.Flags().GetBool("active")

		users, err := wire.UserService().ListUsers(NewContext(), primary.UserFilters{
			BranchID:   branchID,
			ActiveOnly: activeOnly,
		})
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tBRANCH\tACTIVE")
		fmt.Fprintln(w, "--\t--------\t----\t------\t------")
		for _, u := range users {
			name := strings.TrimSpace(u.FirstName + " " + u.LastName)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.UserName, orDash(name), orDash(u.BranchID), u.IsActive)
		}
		w.Flush()
		return nil
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show [user-id]",
	Short: "Show a user with roles and permissions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		users := wire.UserService()

		user, err := users.GetUser(ctx, args[0])
		if err != nil {
			return fmt.Errorf("user not found: %w", err)
		}
		roles, err := users.ListRoles(ctx, user.ID)
		if err != nil {
			return err
		}
		codes, err := users.ListPermissionCodes(ctx, user.ID)
		if err != nil {
			return err
		}

		fmt.Printf("User: %s\n", user.ID)
		fmt.Printf("Username: %s\n", user.UserName)
		fmt.Printf("Email: %s\n", orDash(user.Email))
		fmt.Printf("Branch: %s\n", orDash(user.BranchID))
		fmt.Printf("Active: %t\n", user.IsActive)
		names := make([]string, 0, len(roles))
		for _, r := range roles {
			names = append(names, r.Name)
		}
		fmt.Printf("Roles: %s\n", orDash(strings.Join(names, ", ")))
		fmt.Printf("Permissions: %s\n", orDash(strings.Join(codes, ", ")))

		if tech, err := users.GetTechnicianByUser(ctx, user.ID); err == nil {
			fmt.Printf("Technician: %s (%s, %d years, available=%t)\n", tech.ID, orDash(tech.Specialty), tech.ExperienceYears, tech.IsAvailable)
		}
		return nil
	},
}

var userAssignBranchCmd = &cobra.Command{
	Use:   "assign-branch [user-id] [branch-id]",
	Short: "Move a user to a branch",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.UserService().AssignBranch(NewContext(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to assign branch: %w", err)
		}
		fmt.Printf("%s User %s assigned to %s\n", okMark, args[0], args[1])
		return nil
	},
}

var userDeactivateCmd = &cobra.Command{
	Use:   "deactivate [user-id]",
	Short: "Deactivate a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.UserService().SetUserActive(NewContext(), args[0], false); err != nil {
			return fmt.Errorf("failed to deactivate user: %w", err)
		}
		fmt.Printf("%s User %s deactivated\n", okMark, args[0])
		return nil
	},
}

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage roles",
}

var roleCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		role, err := wire.UserService().CreateRole(NewContext(), args[0], description)
		if err != nil {
			return fmt.Errorf("failed to create role: %w", err)
		}
		fmt.Printf("%s Created role %s: %s\n", okMark, role.ID, role.Name)
		return nil
	},
}

var roleAssignCmd = &cobra.Command{
	Use:   "assign [user-id] [role]",
	Short: "Give a user a role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.UserService().AssignRole(NewContext(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to assign role: %w", err)
		}
		fmt.Printf("%s %s now has role %s\n", okMark, args[0], args[1])
		return nil
	},
}

var roleRevokeCmd = &cobra.Command{
	Use:   "revoke [user-id] [role]",
	Short: "Take a role from a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.UserService().RevokeRole(NewContext(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to revoke role: %w", err)
		}
		fmt.Printf("%s Role %s revoked from %s\n", okMark, args[1], args[0])
		return nil
	},
}

var roleGrantCmd = &cobra.Command{
	Use:   "grant [role] [permission-id]",
	Short: "Grant a permission to a role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.UserService().GrantPermission(NewContext(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to grant permission: %w", err)
		}
		fmt.Printf("%s Granted %s to %s\n", okMark, args[1], args[0])
		return nil
	},
}

var permissionCreateCmd = &cobra.Command{
	Use:   "permission [code] [name]",
	Short: "Create a permission",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString("group")
		description, _ := cmd.Flags().GetString("description")
		p, err := wire.UserService().CreatePermission(NewContext(), primary.CreatePermissionRequest{
			Code:        args[0],
			Name:        args[1],
			GroupName:   group,
			Description: description,
		})
		if err != nil {
			return fmt.Errorf("failed to create permission: %w", err)
		}
		fmt.Printf("%s Created permission %s: %s\n", okMark, p.ID, p.Code)
		return nil
	},
}

var technicianCmd = &cobra.Command{
	Use:   "technician [user-id]",
	Short: "Create the technician profile of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specialty, _ := cmd.Flags().GetString("specialty")
		years, _ := cmd.Flags().GetInt("years")
		tech, err := wire.UserService().CreateTechnician(NewContext(), primary.CreateTechnicianRequest{
			UserID:          args[0],
			Specialty:       specialty,
			ExperienceYears: years,
		})
		if err != nil {
			return fmt.Errorf("failed to create technician: %w", err)
		}
		fmt.Printf("%s Created technician %s for user %s\n", okMark, tech.ID, tech.UserID)
		return nil
	},
}

func init() {
	userRegisterCmd.Flags().String("email", "", "Email address")
	userRegisterCmd.Flags().String("phone", "", "Phone number")
	userRegisterCmd.Flags().String("first-name", "", "First name")
	userRegisterCmd.Flags().String("last-name", "", "Last name")
	userRegisterCmd.Flags().StringP("branch", "b", "", "Home branch ID")

	userListCmd.Flags().StringP("branch", "b", "", "Filter by branch")
	userListCmd.Flags().Bool("active", false, "Only active users")

	roleCreateCmd.Flags().String("description", "", "Role description")
	permissionCreateCmd.Flags().String("group", "", "Permission group")
	permissionCreateCmd.Flags().String("description", "", "Permission description")

	technicianCmd.Flags().String("specialty", "", "Specialty")
	technicianCmd.Flags().Int("years", 0, "Years of experience")

	roleCmd.AddCommand(roleCreateCmd)
	roleCmd.AddCommand(roleAssignCmd)
	roleCmd.AddCommand(roleRevokeCmd)
	roleCmd.AddCommand(roleGrantCmd)

	userCmd.AddCommand(userRegisterCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userShowCmd)
	userCmd.AddCommand(userAssignBranchCmd)
	userCmd.AddCommand(userDeactivateCmd)
	userCmd.AddCommand(roleCmd)
	userCmd.AddCommand(permissionCreateCmd)
	userCmd.AddCommand(technicianCmd)
}

// UserCmd returns the user command
func UserCmd() *cobra.Command {
	return userCmd
}
