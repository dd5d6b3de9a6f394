package trip

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tripkeeper/cmd/client/cmd/types"
	"tripkeeper/internal/app/client"
	"tripkeeper/internal/domain/trip"
)

var (
	distanceKm   float64
	purpose      string
	startedAt    string
	endedAt      string
	vehicleID    string
	startAddress string
	endAddress   string
	notes        string
)

var LogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a trip",
	Long: `Record a manually entered trip.

Times are RFC 3339 (e.g. 2026-08-23T09:15:00Z); both default to now.
The trip is stored immediately and uploaded when the server is reachable.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application is not initialized")
		}

		now := time.Now()
		start, end := now, now
		var err error
		if startedAt != "" {
			if start, err = time.Parse(time.RFC3339, startedAt); err != nil {
				return fmt.Errorf("parse --start: %w", err)
			}
		}
		if endedAt != "" {
			if end, err = time.Parse(time.RFC3339, endedAt); err != nil {
				return fmt.Errorf("parse --end: %w", err)
			}
		}

		t := trip.Trip{
			StartedAt:    start,
			EndedAt:      end,
			StartAddress: startAddress,
			EndAddress:   endAddress,
			DistanceKm:   distanceKm,
			Purpose:      trip.Purpose(purpose),
			VehicleID:    vehicleID,
			Source:       trip.SourceManual,
			Notes:        notes,
		}

		id, err := app.SaveTrip(cmd.Context(), "", t)
		if err != nil {
			return fmt.Errorf("log trip: %w", err)
		}

		fmt.Printf("Trip logged: %s (%.1f km, %s)\n", id, t.DistanceKm, t.Purpose)
		return nil
	},
}

func init() {
	LogCmd.Flags().Float64VarP(&distanceKm, "distance", "d", 0, "distance in kilometers")
	LogCmd.Flags().StringVarP(&purpose, "purpose", "p", string(trip.PurposeBusiness), "trip purpose (business, personal)")
	LogCmd.Flags().StringVar(&startedAt, "start", "", "start time (RFC 3339)")
	LogCmd.Flags().StringVar(&endedAt, "end", "", "end time (RFC 3339)")
	LogCmd.Flags().StringVar(&vehicleID, "vehicle", "", "vehicle ID")
	LogCmd.Flags().StringVar(&startAddress, "from", "", "start address")
	LogCmd.Flags().StringVar(&endAddress, "to", "", "end address")
	LogCmd.Flags().StringVar(&notes, "notes", "", "free-form notes")

	_ = LogCmd.MarkFlagRequired("distance")
}
