package expense

import (
	"github.com/spf13/cobra"
)

// ExpenseCmd is the parent command for expense operations.
var ExpenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Manage expenses",
	Long:  `Add, list and delete expenses tied to trips or standalone.`,
}
