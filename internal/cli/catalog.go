package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/core/money"
	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/wire"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the vehicle, service and part catalogs",
}

var brandCreateCmd = &cobra.Command{
	Use:   "brand [name]",
	Short: "Create a vehicle brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		country, _ := cmd.Flags().GetString("country")
		entry, err := wire.CatalogService().CreateBrand(NewContext(), args[0], country)
		if err != nil {
			return fmt.Errorf("failed to create brand: %w", err)
		}
		fmt.Printf("%s Created brand %s: %s\n", okMark, entry.ID, entry.Name)
		return nil
	},
}

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List vehicle brands",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := wire.CatalogService().ListBrands(NewContext())
		if err != nil {
			return err
		}
		printEntries(entries, "No brands found.")
		return nil
	},
}

var modelCreateCmd = &cobra.Command{
	Use:   "model [brand-id] [name]",
	Short: "Create a model under a brand",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := wire.CatalogService().CreateModel(NewContext(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to create model: %w", err)
		}
		fmt.Printf("%s Created model %s: %s\n", okMark, entry.ID, entry.Name)
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models [brand-id]",
	Short: "List the models of a brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := wire.CatalogService().ListModels(NewContext(), args[0])
		if err != nil {
			return err
		}
		printEntries(entries, "No models found.")
		return nil
	},
}

var colorCreateCmd = &cobra.Command{
	Use:   "color [name] [hex]",
	Short: "Create a vehicle color",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := wire.CatalogService().CreateColor(NewContext(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to create color: %w", err)
		}
		fmt.Printf("%s Created color %s: %s\n", okMark, entry.ID, entry.Name)
		return nil
	},
}

var linkColorCmd = &cobra.Command{
	Use:   "link-color [model-id] [color-id]",
	Short: "Make a color available for a model",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.CatalogService().LinkModelColor(NewContext(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to link color: %w", err)
		}
		fmt.Printf("%s Color %s available for model %s\n", okMark, args[1], args[0])
		return nil
	},
}

var modelColorsCmd = &cobra.Command{
	Use:   "colors [model-id]",
	Short: "List the colors available for a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := wire.CatalogService().ListModelColors(NewContext(), args[0])
		if err != nil {
			return err
		}
		printEntries(entries, "No colors linked.")
		return nil
	},
}

var categoryCreateCmd = &cobra.Command{
	Use:   "category [name]",
	Short: "Create a service category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")
		entry, err := wire.CatalogService().CreateServiceCategory(NewContext(), args[0], parent)
		if err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		fmt.Printf("%s Created category %s: %s\n", okMark, entry.ID, entry.Name)
		return nil
	},
}

var categoryParentCmd = &cobra.Command{
	Use:   "reparent [category-id] [parent-id]",
	Short: "Move a service category under another (empty parent makes it a root)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent := ""
		if len(args) == 2 {
			parent = args[1]
		}
		if err := wire.CatalogService().SetServiceCategoryParent(NewContext(), args[0], parent); err != nil {
			return fmt.Errorf("failed to move category: %w", err)
		}
		fmt.Printf("%s Category %s moved\n", okMark, args[0])
		return nil
	},
}

var categoryAncestryCmd = &cobra.Command{
	Use:   "ancestry [category-id]",
	Short: "Show the parent chain of a service category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chain, err := wire.CatalogService().ServiceCategoryAncestry(NewContext(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(append([]string{args[0]}, chain...), " → "))
		return nil
	},
}

var serviceCreateCmd = &cobra.Command{
	Use:   "service [category-id] [name] [price]",
	Short: "Create a service",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		branchID, _ := cmd.Flags().GetString("branch")
		minutes, _ := cmd.Flags().GetInt("minutes")
		advanced, _ := cmd.Flags().GetBool("advanced")
		description, _ := cmd.Flags().GetString("description")

		svc, err := wire.CatalogService().CreateService(NewContext(), primary.CreateServiceRequest{
			CategoryID:       args[0],
			BranchID:         branchID,
			Name:             args[1],
			Description:      description,
			Price:            args[2],
			EstimatedMinutes: minutes,
			IsAdvanced:       advanced,
		})
		if err != nil {
			return fmt.Errorf("failed to create service: %w", err)
		}
		fmt.Printf("%s Created service %s: %s (%s)\n", okMark, svc.ID, svc.Name, money.Format(svc.PriceCents))
		return nil
	},
}

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List services",
	RunE: func(cmd *cobra.Command, args []string) error {
		categoryID, _ := cmd.Flags().GetString("category")
		branchID, _ := cmd.Flags().GetString("branch")

		services, err := wire.CatalogService().ListServices(NewContext(), categoryID, branchID)
		if err != nil {
			return err
		}
		if len(services) == 0 {
			fmt.Println("No services found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tMINUTES\tACTIVE")
		fmt.Fprintln(w, "--\t----\t--------\t-----\t-------\t------")
		for _, s := range services {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%t\n", s.ID, s.Name, s.CategoryID, money.Format(s.PriceCents), s.EstimatedMinutes, s.IsActive)
		}
		w.Flush()
		return nil
	},
}

var offerCmd = &cobra.Command{
	Use:   "offer [branch-id] [service-id]",
	Short: "Record whether a branch offers a service",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		withdraw, _ := cmd.Flags().GetBool("withdraw")
		if err := wire.CatalogService().SetBranchOffering(NewContext(), args[0], args[1], !withdraw); err != nil {
			return fmt.Errorf("failed to update offering: %w", err)
		}
		fmt.Printf("%s Offering of %s at %s updated\n", okMark, args[1], args[0])
		return nil
	},
}

var partCategoryCreateCmd = &cobra.Command{
	Use:   "part-category [model-id] [name]",
	Short: "Create a part category for a vehicle model",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := wire.CatalogService().CreatePartCategory(NewContext(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to create part category: %w", err)
		}
		fmt.Printf("%s Created part category %s: %s\n", okMark, entry.ID, entry.Name)
		return nil
	},
}

var partCreateCmd = &cobra.Command{
	Use:   "part [category-id] [name] [price]",
	Short: "Create a part",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		branchID, _ := cmd.Flags().GetString("branch")
		number, _ := cmd.Flags().GetString("number")
		warranty, _ := cmd.Flags().GetInt("warranty-months")

		part, err := wire.CatalogService().CreatePart(NewContext(), primary.CreatePartRequest{
			CategoryID:     args[0],
			BranchID:       branchID,
			Name:           args[1],
			PartNumber:     number,
			Price:          args[2],
			WarrantyMonths: warranty,
		})
		if err != nil {
			return fmt.Errorf("failed to create part: %w", err)
		}
		fmt.Printf("%s Created part %s: %s (%s)\n", okMark, part.ID, part.Name, money.Format(part.PriceCents))
		return nil
	},
}

var partsCmd = &cobra.Command{
	Use:   "parts [category-id]",
	Short: "List the parts of a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parts, err := wire.CatalogService().ListParts(NewContext(), args[0])
		if err != nil {
			return err
		}
		if len(parts) == 0 {
			fmt.Println("No parts found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tNUMBER\tPRICE")
		fmt.Fprintln(w, "--\t----\t------\t-----")
		for _, p := range parts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, orDash(p.PartNumber), money.Format(p.PriceCents))
		}
		w.Flush()
		return nil
	},
}

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Show or change part stock per branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		partID, _ := cmd.Flags().GetString("part")
		branchID, _ := cmd.Flags().GetString("branch")

		levels, err := wire.CatalogService().ListStock(NewContext(), partID, branchID)
		if err != nil {
			return err
		}
		if len(levels) == 0 {
			fmt.Println("No stock recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PART\tBRANCH\tSTOCK\tMIN\t")
		fmt.Fprintln(w, "----\t------\t-----\t---\t")
		for _, l := range levels {
			flag := ""
			if l.NeedsRestock {
				flag = warnMark + " restock"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", l.PartID, l.BranchID, l.Stock, l.MinStock, flag)
		}
		w.Flush()
		return nil
	},
}

var stockSetCmd = &cobra.Command{
	Use:   "set [part-id] [branch-id] [stock]",
	Short: "Set the stock of a part at a branch",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		stock, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid stock %q", args[2])
		}
		minStock, _ := cmd.Flags().GetInt("min")
		if err := wire.CatalogService().SetStock(NewContext(), args[0], args[1], stock, minStock); err != nil {
			return fmt.Errorf("failed to set stock: %w", err)
		}
		fmt.Printf("%s Stock of %s at %s set to %d\n", okMark, args[0], args[1], stock)
		return nil
	},
}

var stockAdjustCmd = &cobra.Command{
	Use:   "adjust [part-id] [branch-id] [delta]",
	Short: "Move stock by delta (negative to consume)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid delta %q", args[2])
		}
		level, err := wire.CatalogService().AdjustStock(NewContext(), args[0], args[1], delta)
		if err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}
		fmt.Printf("%s Stock of %s at %s is now %d\n", okMark, level.PartID, level.BranchID, level.Stock)
		if level.NeedsRestock {
			fmt.Printf("%s Below minimum of %d\n", warnMark, level.MinStock)
		}
		return nil
	},
}

func printEntries(entries []*primary.CatalogEntry, empty string) {
	if len(entries) == 0 {
		fmt.Println(empty)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPARENT")
	fmt.Fprintln(w, "--\t----\t------")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Name, orDash(e.ParentID))
	}
	w.Flush()
}

func init() {
	brandCreateCmd.Flags().String("country", "", "Country of origin")
	categoryCreateCmd.Flags().String("parent", "", "Parent category ID")

	serviceCreateCmd.Flags().StringP("branch", "b", "", "Owning branch ID")
	serviceCreateCmd.Flags().Int("minutes", 0, "Estimated duration in minutes")
	serviceCreateCmd.Flags().Bool("advanced", false, "Requires an advanced technician")
	serviceCreateCmd.Flags().String("description", "", "Description")
	servicesCmd.Flags().String("category", "", "Filter by category")
	servicesCmd.Flags().StringP("branch", "b", "", "Only services offered by this branch")
	offerCmd.Flags().Bool("withdraw", false, "Stop offering the service")

	partCreateCmd.Flags().StringP("branch", "b", "", "Owning branch ID")
	partCreateCmd.Flags().String("number", "", "Manufacturer part number")
	partCreateCmd.Flags().Int("warranty-months", 0, "Warranty in months")

	stockCmd.Flags().String("part", "", "Filter by part")
	stockCmd.Flags().StringP("branch", "b", "", "Filter by branch")
	stockSetCmd.Flags().Int("min", 0, "Restock threshold")
	stockCmd.AddCommand(stockSetCmd)
	stockCmd.AddCommand(stockAdjustCmd)

	catalogCmd.AddCommand(brandCreateCmd)
	catalogCmd.AddCommand(brandsCmd)
	catalogCmd.AddCommand(modelCreateCmd)
	catalogCmd.AddCommand(modelsCmd)
	catalogCmd.AddCommand(colorCreateCmd)
	catalogCmd.AddCommand(linkColorCmd)
	catalogCmd.AddCommand(modelColorsCmd)
	catalogCmd.AddCommand(categoryCreateCmd)
	catalogCmd.AddCommand(categoryParentCmd)
	catalogCmd.AddCommand(categoryAncestryCmd)
	catalogCmd.AddCommand(serviceCreateCmd)
	catalogCmd.AddCommand(servicesCmd)
	catalogCmd.AddCommand(offerCmd)
	catalogCmd.AddCommand(partCategoryCreateCmd)
	catalogCmd.AddCommand(partCreateCmd)
	catalogCmd.AddCommand(partsCmd)
	catalogCmd.AddCommand(stockCmd)
}

// CatalogCmd returns the catalog command
func CatalogCmd() *cobra.Command {
	return catalogCmd
}
