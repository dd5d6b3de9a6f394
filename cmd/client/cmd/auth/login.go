package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tripkeeper/cmd/client/cmd/types"
	"tripkeeper/internal/app/client"
)

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the Tripkeeper server",
	Long: `Authenticate against the server and store the session locally.

After signing in the background sync picks up, so cached trips and
expenses converge with the server state.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application is not initialized")
		}

		fmt.Print("Login: ")
		var login string
		_, _ = fmt.Scanln(&login)

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		fmt.Println()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Login(ctx, login, string(password)); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}

		fmt.Println("Signed in.")

		fmt.Println("Syncing...")
		if err := app.Sync().Cycle(ctx, app.OwnerID()); err != nil {
			fmt.Printf("Warning: sync failed: %v\n", err)
			fmt.Println("You can keep working offline; changes stay queued.")
		} else {
			fmt.Println("Up to date.")
		}

		return nil
	},
}
