package company

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripkeeper/cmd/client/cmd/types"
	"tripkeeper/internal/app/client"
)

var JoinCmd = &cobra.Command{
	Use:   "join [invitation-code]",
	Short: "Join a company with an invitation code",
	Long: `Activate an invitation code. The activation runs on the server so the
code is consumed exactly once; the resulting company link then appears in
the local cache. Requires a connection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application is not initialized")
		}

		link, err := app.ActivateInvitation(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("activate invitation: %w", err)
		}

		fmt.Printf("Joined %s.\n", link.CompanyName)
		return nil
	},
}
