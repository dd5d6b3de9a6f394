package vehicle

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripkeeper/cmd/client/cmd/types"
	"tripkeeper/internal/app/client"
	"tripkeeper/internal/domain/vehicle"
)

var (
	name       string
	makeName   string
	modelName  string
	year       int
	odometerKm float64
)

var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a vehicle",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application is not initialized")
		}

		v := vehicle.Vehicle{
			Name:       name,
			Make:       makeName,
			Model:      modelName,
			Year:       year,
			OdometerKm: odometerKm,
		}

		id, err := app.SaveVehicle(cmd.Context(), "", v)
		if err != nil {
			return fmt.Errorf("add vehicle: %w", err)
		}

		fmt.Printf("Vehicle registered: %s (%s)\n", id, v.Name)
		return nil
	},
}

func init() {
	AddCmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	AddCmd.Flags().StringVar(&makeName, "make", "", "manufacturer")
	AddCmd.Flags().StringVar(&modelName, "model", "", "model")
	AddCmd.Flags().IntVar(&year, "year", 0, "model year")
	AddCmd.Flags().Float64Var(&odometerKm, "odometer", 0, "current odometer reading in km")

	_ = AddCmd.MarkFlagRequired("name")
}
