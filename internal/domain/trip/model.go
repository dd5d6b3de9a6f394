package trip

import (
	"errors"
	"time"
)

// EntityType is the sync entity type for trips.
const EntityType = "trip"

// Source tells how a trip entered the log.
type Source string

const (
	SourceManual   Source = "manual"
	SourceDetected Source = "detected"
)

// Purpose classifies a trip for reporting.
type Purpose string

const (
	PurposeBusiness Purpose = "business"
	PurposePersonal Purpose = "personal"
)

var (
	ErrEndBeforeStart  = errors.New("trip ends before it starts")
	ErrInvalidDistance = errors.New("trip distance must be positive")
	ErrInvalidPurpose  = errors.New("unknown trip purpose")
)

// Trip is the payload of one logged journey. Coordinates are the endpoints
// only; the full GPS track never leaves the device.
type Trip struct {
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	StartLat     float64   `json:"start_lat"`
	StartLon     float64   `json:"start_lon"`
	EndLat       float64   `json:"end_lat"`
	EndLon       float64   `json:"end_lon"`
	StartAddress string    `json:"start_address,omitempty"`
	EndAddress   string    `json:"end_address,omitempty"`
	DistanceKm   float64   `json:"distance_km"`
	Purpose      Purpose   `json:"purpose"`
	VehicleID    string    `json:"vehicle_id,omitempty"`
	Source       Source    `json:"source"`
	Notes        string    `json:"notes,omitempty"`
}

// Duration is the wall-clock length of the trip.
func (t Trip) Duration() time.Duration {
	return t.EndedAt.Sub(t.StartedAt)
}

func (t Trip) Validate() error {
	if t.EndedAt.Before(t.StartedAt) {
		return ErrEndBeforeStart
	}
	if t.DistanceKm <= 0 {
		return ErrInvalidDistance
	}
	switch t.Purpose {
	case PurposeBusiness, PurposePersonal:
	default:
		return ErrInvalidPurpose
	}
	return nil
}
