package trip

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
	"tripkeeper/internal/domain/trip"
)

var listJSON bool

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trips",
	Long: `List cached trips. Records not yet confirmed by the server are marked
as pending.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application is not initialized")
		}

		records, err := app.ListTrips(cmd.Context())
		if err != nil {
			return fmt.Errorf("list trips: %w", err)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(records)
		}

		if len(records) == 0 {
			fmt.Println("No trips yet. Log one with: tripkeeper trip log")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tDISTANCE\tPURPOSE\tSTATE")
		for _, rec := range records {
			var t trip.Trip
			if err := json.Unmarshal(rec.Payload, &t); err != nil {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%.1f km\t%s\t%s\n",
				rec.ID,
				t.StartedAt.Format("2006-01-02 15:04"),
				t.DistanceKm,
				t.Purpose,
				syncState(rec))
		}
		w.Flush()

		fmt.Printf("\nTotal: %d\n", len(records))
		return nil
	},
}

func syncState(rec sync.Record) string {
	if rec.Status == sync.StatusClean {
		return color.GreenString("synced")
	}
	return color.YellowString("pending")
}

func init() {
	ListCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}
