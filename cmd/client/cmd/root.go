package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"tripkeeper/cmd/client/cmd/types"
	"tripkeeper/internal/app/client"
	"tripkeeper/internal/app/client/config"
	"tripkeeper/internal/utils/logger"
)

var (
	cfg       *config.Config
	log       *slog.Logger
	app       *client.App
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "tripkeeper",
	Short: "Tripkeeper - offline-first mileage and expense tracker",
	Long: `Tripkeeper logs trips, expenses and vehicles on the device and keeps
them in sync with the server whenever a connection is available.

Every change lands locally first. A background cycle pushes queued
changes and pulls the authoritative state, so the app stays fully
usable offline.`,
	PersistentPreRunE: setupApp,
	PersistentPostRun: teardownApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg = config.MustLoad()
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}

	log = logger.New(cfg.Env)

	var err error
	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("init application: %w", err)
	}

	cmd.SetContext(context.WithValue(cmd.Context(), types.ClientAppKey, app))
	return nil
}

// teardownApp runs after every command. It waits for the out-of-band push a
// mutation may have started, then closes the local database; without it the
// one-shot process would exit before the push leaves the machine.
func teardownApp(cmd *cobra.Command, _ []string) {
	if a, ok := cmd.Context().Value(types.ClientAppKey).(*client.App); ok {
		a.Shutdown()
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Tripkeeper server address (host:port)")
}
