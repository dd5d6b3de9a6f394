package vehicle

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tripkeeper/cmd/client/cmd/types"
	"tripkeeper/internal/app/client"
	"tripkeeper/internal/domain/sync"
	"tripkeeper/internal/domain/vehicle"
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vehicles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application is not initialized")
		}

		records, err := app.ListVehicles(cmd.Context())
		if err != nil {
			return fmt.Errorf("list vehicles: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No vehicles yet. Register one with: tripkeeper vehicle add")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMAKE/MODEL\tYEAR\tSTATE")
		for _, rec := range records {
			var v vehicle.Vehicle
			if err := json.Unmarshal(rec.Payload, &v); err != nil {
				continue
			}

			state := color.GreenString("synced")
			if rec.Status != sync.StatusClean {
				state = color.YellowString("pending")
			}
			fmt.Fprintf(w, "%s\t%s\t%s %s\t%d\t%s\n",
				rec.ID, v.Name, v.Make, v.Model, v.Year, state)
		}
		w.Flush()
		return nil
	},
}
