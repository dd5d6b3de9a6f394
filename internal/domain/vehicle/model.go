package vehicle

import "errors"

// EntityType is the sync entity type for vehicles.
const EntityType = "vehicle"

var ErrMissingName = errors.New("vehicle name is required")

// Vehicle is the payload describing one tracked vehicle.
type Vehicle struct {
	Name       string  `json:"name"`
	Make       string  `json:"make,omitempty"`
	Model      string  `json:"model,omitempty"`
	Year       int     `json:"year,omitempty"`
	OdometerKm float64 `json:"odometer_km,omitempty"`
}

func (v Vehicle) Validate() error {
	if v.Name == "" {
		return ErrMissingName
	}
	return nil
}
