package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/garage/internal/ports/primary"
	"github.com/example/garage/internal/wire"
)

var vehicleCmd = &cobra.Command{
	Use:   "vehicle",
	Short: "Manage customer vehicles",
}

var vehicleRegisterCmd = &cobra.Command{
	Use:   "register [owner-id] [license-plate]",
	Short: "Register a vehicle",
	Long: `Register a customer vehicle. The brand, model and color must belong together.

Examples:
  garage vehicle register USR-1 51A-12345 --brand BR --model MD --color CL --year 2019`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		brandID, _ := cmd.Flags().GetString("brand")
		modelID, _ := cmd.Flags().GetString("model")
		colorID, _ := cmd.Flags().GetString("color")
		vin, _ := cmd.Flags().GetString("vin")
		year, _ := cmd.Flags().GetInt("year")
		odometer, _ := cmd.Flags().GetInt("odometer")

		v, err := wire.VehicleService().RegisterVehicle(NewContext(), primary.RegisterVehicleRequest{
			OwnerID:      args[0],
			BrandID:      brandID,
			ModelID:      modelID,
			ColorID:      colorID,
			LicensePlate: args[1],
			VIN:          vin,
			Year:         year,
			Odometer:     odometer,
		})
		if err != nil {
			return fmt.Errorf("failed to register vehicle: %w", err)
		}
		fmt.Printf("%s Registered vehicle %s: %s\n", okMark, v.ID, v.LicensePlate)
		return nil
	},
}

var vehicleListCmd = &cobra.Command{
	Use:   "list [owner-id]",
	Short: "List the vehicles of a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vehicles, err := wire.VehicleService().ListVehicles(NewContext(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list vehicles: %w", err)
		}
		if len(vehicles) == 0 {
			fmt.Println("No vehicles found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPLATE\tMODEL\tCOLOR\tYEAR\tODOMETER")
		fmt.Fprintln(w, "--\t-----\t-----\t-----\t----\t--------")
		for _, v := range vehicles {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n", v.ID, v.LicensePlate, v.ModelID, v.ColorID, v.Year, v.Odometer)
		}
		w.Flush()
		return nil
	},
}

var vehicleUpdateCmd = &cobra.Command{
	Use:   "update [vehicle-id]",
	Short: "Update plate, VIN, year, odometer or color",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		current, err := wire.VehicleService().GetVehicle(ctx, args[0])
		if err != nil {
			return fmt.Errorf("vehicle not found: %w", err)
		}

		req := primary.UpdateVehicleRequest{
			ID:           current.ID,
			ColorID:      current.ColorID,
			LicensePlate: current.LicensePlate,
			VIN:          current.VIN,
			Year:         current.Year,
			Odometer:     current.Odometer,
		}
		if cmd.Flags().Changed("color") {
			req.ColorID, _ = cmd.Flags().GetString("color")
		}
		if cmd.Flags().Changed("plate") {
			req.LicensePlate, _ = cmd.Flags().GetString("plate")
		}
		if cmd.Flags().Changed("vin") {
			req.VIN, _ = cmd.Flags().GetString("vin")
		}
		if cmd.Flags().Changed("year") {
			req.Year, _ = cmd.Flags().GetInt("year")
		}
		if cmd.Flags().Changed("odometer") {
			req.Odometer, _ = cmd.Flags().GetInt("odometer")
		}

		v, err := wire.VehicleService().UpdateVehicle(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to update vehicle: %w", err)
		}
		fmt.Printf("%s Updated vehicle %s\n", okMark, v.ID)
		return nil
	},
}

var vehicleDeleteCmd = &cobra.Command{
	Use:   "delete [vehicle-id]",
	Short: "Delete a vehicle with no requests or orders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.VehicleService().DeleteVehicle(NewContext(), args[0]); err != nil {
			return fmt.Errorf("failed to delete vehicle: %w", err)
		}
		fmt.Printf("%s Deleted vehicle %s\n", okMark, args[0])
		return nil
	},
}

func init() {
	vehicleRegisterCmd.Flags().String("brand", "", "Brand ID (required)")
	vehicleRegisterCmd.Flags().String("model", "", "Model ID (required)")
	vehicleRegisterCmd.Flags().String("color", "", "Color ID (required)")
	vehicleRegisterCmd.Flags().String("vin", "", "Vehicle identification number")
	vehicleRegisterCmd.Flags().Int("year", 0, "Model year")
	vehicleRegisterCmd.Flags().Int("odometer", 0, "Odometer reading")
	vehicleRegisterCmd.MarkFlagRequired("brand")
	vehicleRegisterCmd.MarkFlagRequired("model")
	vehicleRegisterCmd.MarkFlagRequired("color")

	vehicleUpdateCmd.Flags().String("color", "", "Color ID")
	vehicleUpdateCmd.Flags().String("plate", "", "License plate")
	vehicleUpdateCmd.Flags().String("vin", "", "Vehicle identification number")
	vehicleUpdateCmd.Flags().Int("year", 0, "Model year")
	vehicleUpdateCmd.Flags().Int("odometer", 0, "Odometer reading")

	vehicleCmd.AddCommand(vehicleRegisterCmd)
	vehicleCmd.AddCommand(vehicleListCmd)
	vehicleCmd.AddCommand(vehicleUpdateCmd)
	vehicleCmd.AddCommand(vehicleDeleteCmd)
}

// VehicleCmd returns the vehicle command
func VehicleCmd() *cobra.Command {
	return vehicleCmd
}
