package trip

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripkeeper/cmd/client/cmd/types"
	"tripkeeper/internal/app/client"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a trip",
	Long: `Mark a trip for deletion. It disappears from listings on the server
confirmation; until then it stays hidden locally as pending.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application is not initialized")
		}

		if err := app.DeleteTrip(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete trip: %w", err)
		}

		fmt.Println("Trip scheduled for deletion.")
		return nil
	},
}
