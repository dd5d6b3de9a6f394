package expense

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripkeeper/cmd/client/cmd/types"
	"tripkeeper/internal/app/client"
	expensedomain "tripkeeper/internal/domain/expense"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an expense",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application is not initialized")
		}

		if err := app.DeleteEntity(cmd.Context(), expensedomain.EntityType, args[0]); err != nil {
			return fmt.Errorf("delete expense: %w", err)
		}

		fmt.Println("Expense scheduled for deletion.")
		return nil
	},
}
