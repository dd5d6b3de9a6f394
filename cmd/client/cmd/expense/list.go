package expense

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tripkeeper/cmd/client/cmd/types"
	"tripkeeper/internal/app/client"
	"tripkeeper/internal/domain/expense"
	"tripkeeper/internal/domain/sync"
)

var listJSON bool

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application is not initialized")
		}

		records, err := app.ListExpenses(cmd.Context())
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(records)
		}

		if len(records) == 0 {
			fmt.Println("No expenses yet. Add one with: tripkeeper expense add")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tCATEGORY\tSTATE")
		var totalCents int64
		for _, rec := range records {
			var e expense.Expense
			if err := json.Unmarshal(rec.Payload, &e); err != nil {
				continue
			}
			totalCents += e.AmountCents

			state := color.GreenString("synced")
			if rec.Status != sync.StatusClean {
				state = color.YellowString("pending")
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f %s\t%s\t%s\n",
				rec.ID,
				e.Date.Format("2006-01-02"),
				float64(e.AmountCents)/100,
				e.Currency,
				e.Category,
				state)
		}
		w.Flush()

		fmt.Printf("\nTotal: %d expenses, %.2f\n", len(records), float64(totalCents)/100)
		return nil
	},
}

func init() {
	ListCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}
