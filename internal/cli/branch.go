package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/wire"
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Manage branches",
}

var branchCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := branchRequestFromFlags(cmd)
		req.Name = args[0]

		branch, err := wire.BranchService().CreateBranch(NewContext(), req)
		if err != nil {
			return fmt.Errorf("failed to create branch: %w", err)
		}
		fmt.Printf("%s Created branch %s: %s\n", okMark, branch.ID, branch.Name)
		return nil
	},
}

var branchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List branches",
	RunE: func(cmd *cobra.Command, args []string) error {
		activeOnly, _ := cmd.Flags().GetBool("active")
		city, _ := cmd.Flags().GetString("city")

		branches, err := wire.BranchService().ListBranches(NewContext(), primary.BranchFilters{
			ActiveOnly: activeOnly,
			City:       city,
		})
		if err != nil {
			return fmt.Errorf("failed to list branches: %w", err)
		}
		if len(branches) == 0 {
			fmt.Println("No branches found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCITY\tPHONE\tACTIVE")
		fmt.Fprintln(w, "--\t----\t----\t-----\t------")
		for _, b := range branches {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", b.ID, b.Name, orDash(b.City), orDash(b.PhoneNumber), b.IsActive)
		}
		w.Flush()
		return nil
	},
}

var branchShowCmd = &cobra.Command{
	Use:   "show [branch-id]",
	Short: "Show a branch and its operating hours",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		branch, err := wire.BranchService().GetBranch(ctx, args[0])
		if err != nil {
			return fmt.Errorf("branch not found: %w", err)
		}
		hours, err := wire.BranchService().GetOperatingHours(ctx, branch.ID)
		if err != nil {
			return err
		}

		fmt.Printf("Branch: %s\n", branch.ID)
		fmt.Printf("Name: %s\n", branch.Name)
		fmt.Printf("Address: %s, %s, %s\n", orDash(branch.Street), orDash(branch.District), orDash(branch.City))
		fmt.Printf("Phone: %s\n", orDash(branch.PhoneNumber))
		fmt.Printf("Email: %s\n", orDash(branch.Email))
		fmt.Printf("Active: %t\n", branch.IsActive)
		if len(hours) > 0 {
			fmt.Println("\nHours:")
			for _, h := range hours {
				if !h.IsOpen {
					fmt.Printf("  %d  closed\n", h.DayOfWeek)
					continue
				}
				fmt.Printf("  %d  %s-%s\n", h.DayOfWeek, h.OpenTime, h.CloseTime)
			}
		}
		return nil
	},
}

var branchHoursCmd = &cobra.Command{
	Use:   "hours [branch-id] [day=HH:MM-HH:MM|day=closed]...",
	Short: "Set operating hours (day 0 is Sunday)",
	Long: `Replace the weekly schedule of a branch.

Examples:
  garage branch hours BR-1 1=08:00-17:30 2=08:00-17:30 0=closed`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hours := make([]primary.OperatingHours, 0, len(args)-1)
		for _, arg := range args[1:] {
			h, err := parseHours(arg)
			if err != nil {
				return err
			}
			hours = append(hours, h)
		}
		if err := wire.BranchService().SetOperatingHours(NewContext(), args[0], hours); err != nil {
			return fmt.Errorf("failed to set hours: %w", err)
		}
		fmt.Printf("%s Operating hours updated for %s\n", okMark, args[0])
		return nil
	},
}

var branchActivateCmd = &cobra.Command{
	Use:   "activate [branch-id]",
	Short: "Activate a branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setBranchActive(args[0], true)
	},
}

var branchDeactivateCmd = &cobra.Command{
	Use:   "deactivate [branch-id]",
	Short: "Deactivate a branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setBranchActive(args[0], false)
	},
}

var branchDeleteCmd = &cobra.Command{
	Use:   "delete [branch-id]",
	Short: "Delete a branch that owns nothing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.BranchService().DeleteBranch(NewContext(), args[0]); err != nil {
			return fmt.Errorf("failed to delete branch: %w", err)
		}
		fmt.Printf("%s Deleted branch %s\n", okMark, args[0])
		return nil
	},
}

func setBranchActive(id string, active bool) error {
	if err := wire.BranchService().SetBranchActive(NewContext(), id, active); err != nil {
		return fmt.Errorf("failed to update branch: %w", err)
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Printf("%s Branch %s %s\n", okMark, id, state)
	return nil
}

func branchRequestFromFlags(cmd *cobra.Command) primary.CreateBranchRequest {
	phone, _ := cmd.Flags().GetString("phone")
	email, _ := cmd.Flags().GetString("email")
	street, _ := cmd.Flags().GetString("street")
	district, _ := cmd.Flags().GetString("district")
	city, _ := cmd.Flags().GetString("city")
	description, _ := cmd.Flags().GetString("description")
	return primary.CreateBranchRequest{
		PhoneNumber: phone,
		Email:       email,
		Street:      street,
		District:    district,
		City:        city,
		Description: description,
	}
}

// parseHours parses "1=08:00-17:30" or "0=closed".
func parseHours(arg string) (primary.OperatingHours, error) {
	day, span, ok := strings.Cut(arg, "=")
	if !ok {
		return primary.OperatingHours{}, fmt.Errorf("invalid hours %q: expected day=HH:MM-HH:MM", arg)
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 0 || d > 6 {
		return primary.OperatingHours{}, fmt.Errorf("invalid day %q: expected 0-6", day)
	}
	if span == "closed" {
		return primary.OperatingHours{DayOfWeek: d}, nil
	}
	open, closeAt, ok := strings.Cut(span, "-")
	if !ok {
		return primary.OperatingHours{}, fmt.Errorf("invalid hours %q: expected HH:MM-HH:MM", span)
	}
	return primary.OperatingHours{DayOfWeek: d, IsOpen: true, OpenTime: open, CloseTime: closeAt}, nil
}

func init() {
	branchCreateCmd.Flags().String("phone", "", "Phone number")
	branchCreateCmd.Flags().String("email", "", "Contact email")
	branchCreateCmd.Flags().String("street", "", "Street address")
	branchCreateCmd.Flags().String("district", "", "District")
	branchCreateCmd.Flags().String("city", "", "City")
	branchCreateCmd.Flags().String("description", "", "Description")
	branchListCmd.Flags().Bool("active", false, "Only active branches")
	branchListCmd.Flags().String("city", "", "Filter by city")

	branchCmd.AddCommand(branchCreateCmd)
	branchCmd.AddCommand(branchListCmd)
	branchCmd.AddCommand(branchShowCmd)
	branchCmd.AddCommand(branchHoursCmd)
	branchCmd.AddCommand(branchActivateCmd)
	branchCmd.AddCommand(branchDeactivateCmd)
	branchCmd.AddCommand(branchDeleteCmd)
}

// BranchCmd returns the branch command
func BranchCmd() *cobra.Command {
	return branchCmd
}
