package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tripkeeper/cmd/client/cmd/types"
	"tripkeeper/internal/app/client"
)

var (
	showStatus bool
	pushOnly   bool
	pullOnly   bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync with the server",
	Long: `Run one sync cycle: pull the authoritative state, then push queued
local changes. Use --status to inspect the engine without syncing.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application is not initialized")
		}

		if showStatus {
			return printStatus(cmd.Context(), app)
		}

		return runSync(cmd.Context(), app)
	},
}

func runSync(ctx context.Context, app *client.App) error {
	if !app.IsAuthenticated() {
		return fmt.Errorf("sign in first: tripkeeper auth login")
	}

	start := time.Now()
	orch := app.Sync()

	switch {
	case pushOnly:
		report, err := orch.Push(ctx, app.OwnerID())
		if err != nil {
			return fmt.Errorf("push: %w", err)
		}
		printReport(report)
	case pullOnly:
		if err := orch.Pull(ctx, app.OwnerID()); err != nil {
			return fmt.Errorf("pull: %w", err)
		}
	default:
		if err := orch.Cycle(ctx, app.OwnerID()); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
	}

	fmt.Printf("Done in %v.\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func printReport(report *client.PushReport) {
	fmt.Printf("Pushed: %d\n", report.Pushed)
	if report.Requeued > 0 {
		fmt.Printf("Requeued: %d\n", report.Requeued)
	}
	if report.Flagged > 0 {
		color.Yellow("Conflicts: %d (pull to reconcile)", report.Flagged)
	}
	if report.Dropped > 0 {
		color.Red("Rejected by server: %d", report.Dropped)
	}
}

func printStatus(ctx context.Context, app *client.App) error {
	fmt.Print("Server: ")
	if err := app.CheckConnection(ctx); err != nil {
		color.Red("unreachable (%v)", err)
	} else {
		color.Green("reachable")
	}

	fmt.Print("Session: ")
	if app.IsAuthenticated() {
		color.Green("signed in")
	} else {
		color.Yellow("signed out")
		return nil
	}

	st, err := app.Sync().Status(ctx, app.OwnerID())
	if err != nil {
		return fmt.Errorf("sync status: %w", err)
	}

	fmt.Printf("Phase: %s\n", st.Phase)
	if !st.LastPull.IsZero() {
		fmt.Printf("Last pull: %s\n", st.LastPull.Format("2006-01-02 15:04:05"))
	}
	if !st.LastPush.IsZero() {
		fmt.Printf("Last push: %s\n", st.LastPush.Format("2006-01-02 15:04:05"))
	}

	if st.OldestPending == nil {
		color.Green("Queue: empty")
		return nil
	}

	age := time.Since(*st.OldestPending).Round(time.Second)
	if st.Overdue {
		color.Red("Queue: oldest change pending for %v", age)
	} else {
		color.Yellow("Queue: oldest change pending for %v", age)
	}
	return nil
}

func init() {
	SyncCmd.Flags().BoolVar(&showStatus, "status", false, "show sync status instead of syncing")
	SyncCmd.Flags().BoolVar(&pushOnly, "push", false, "only push queued changes")
	SyncCmd.Flags().BoolVar(&pullOnly, "pull", false, "only pull server state")
}
