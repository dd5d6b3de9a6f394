package company

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tripkeeper/cmd/client/cmd/types"
	"tripkeeper/internal/app/client"
	"tripkeeper/internal/domain/company"
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List company links",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application is not initialized")
		}

		records, err := app.ListCompanyLinks(cmd.Context())
		if err != nil {
			return fmt.Errorf("list company links: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No company links. Join with: tripkeeper company join <code>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "COMPANY\tSTATUS")
		for _, rec := range records {
			var link company.Link
			if err := json.Unmarshal(rec.Payload, &link); err != nil {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\n", link.CompanyName, link.Status)
		}
		w.Flush()
		return nil
	},
}
