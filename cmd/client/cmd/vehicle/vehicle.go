package vehicle

import (
	"github.com/spf13/cobra"
)

// VehicleCmd is the parent command for vehicle operations.
var VehicleCmd = &cobra.Command{
	Use:   "vehicle",
	Short: "Manage vehicles",
	Long:  `Register and list the vehicles trips are attributed to.`,
}
