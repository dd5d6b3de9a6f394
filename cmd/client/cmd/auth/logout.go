package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripkeeper/cmd/client/cmd/types"
	"tripkeeper/internal/app/client"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	Long: `Drop the stored session. Cached records stay on the device and are
reused after the next sign-in by the same account.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application is not initialized")
		}

		if err := app.Logout(); err != nil {
			return fmt.Errorf("sign out: %w", err)
		}

		fmt.Println("Signed out.")
		return nil
	},
}
