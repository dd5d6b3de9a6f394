package trip

import (
	"github.com/spf13/cobra"
)

// TripCmd is the parent command for trip operations.
var TripCmd = &cobra.Command{
	Use:   "trip",
	Short: "Manage logged trips",
	Long:  `Log, list and delete trips. Changes apply locally first and sync in the background.`,
}
