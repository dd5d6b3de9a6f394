package expense

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"tripkeeper/cmd/client/cmd/types"
	"tripkeeper/internal/app/client"
	"tripkeeper/internal/domain/expense"
)

var (
	amount   float64
	currency string
	category string
	date     string
	tripID   string
	note     string
)

var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an expense",
	Long: `Record an expense. The amount is given in major currency units and
stored as integer cents.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application is not initialized")
		}

		when := time.Now()
		if date != "" {
			var err error
			if when, err = time.Parse("2006-01-02", date); err != nil {
				return fmt.Errorf("parse --date: %w", err)
			}
		}

		e := expense.Expense{
			Date:        when,
			AmountCents: int64(math.Round(amount * 100)),
			Currency:    currency,
			Category:    category,
			TripID:      tripID,
			Note:        note,
		}

		id, err := app.SaveExpense(cmd.Context(), "", e)
		if err != nil {
			return fmt.Errorf("add expense: %w", err)
		}

		fmt.Printf("Expense added: %s (%.2f %s, %s)\n", id, amount, e.Currency, e.Category)
		return nil
	},
}

func init() {
	AddCmd.Flags().Float64VarP(&amount, "amount", "a", 0, "amount in major currency units")
	AddCmd.Flags().StringVar(&currency, "currency", "EUR", "currency code")
	AddCmd.Flags().StringVarP(&category, "category", "c", "", "expense category (fuel, parking, toll, ...)")
	AddCmd.Flags().StringVar(&date, "date", "", "expense date (YYYY-MM-DD, default today)")
	AddCmd.Flags().StringVar(&tripID, "trip", "", "trip ID this expense belongs to")
	AddCmd.Flags().StringVar(&note, "note", "", "free-form note")

	_ = AddCmd.MarkFlagRequired("amount")
	_ = AddCmd.MarkFlagRequired("category")
}
