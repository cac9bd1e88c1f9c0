// Package domain provides core domain models and types.
package domain

import "math"

// Mode represents a transportation mode
type Mode string

const (
	ModeCar        Mode = "car"
	ModeMotorcycle Mode = "motorcycle"
	ModeTransit    Mode = "transit"
	ModeWalkCycle  Mode = "walk_cycle"
)

// AllModes lists the modeled modes in a stable order
var AllModes = []Mode{ModeCar, ModeMotorcycle, ModeTransit, ModeWalkCycle}

// ShareTolerance is the floating tolerance for the shares-sum-to-one invariant
const ShareTolerance = 1e-6

// ModeShare maps each mode to its share of daily trips
type ModeShare map[Mode]float64

// Sum returns the total of all shares
func (s ModeShare) Sum() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// IsNormalized reports whether shares sum to 1.0 within tolerance
func (s ModeShare) IsNormalized() bool {
	return math.Abs(s.Sum()-1.0) <= ShareTolerance
}

// Clone returns a copy of the share map
func (s ModeShare) Clone() ModeShare {
	out := make(ModeShare, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// RegionalContext is a named bundle of baseline economic and trip parameters.
// Immutable once selected for a run; the engine only reads it.
type RegionalContext struct {
	Name           string `json:"name" yaml:"name"`
	Currency       string `json:"currency" yaml:"currency"`
	CurrencySymbol string `json:"currency_symbol" yaml:"currency_symbol"`

	Population float64 `json:"population" yaml:"population"`
	DailyTrips float64 `json:"daily_trips" yaml:"daily_trips"`

	BaselineShares ModeShare `json:"mode_share" yaml:"mode_share"`

	AvgTripDistanceKm float64 `json:"avg_trip_distance_km" yaml:"avg_trip_distance_km"`
	AvgTripTimeMin    float64 `json:"avg_trip_time_minutes" yaml:"avg_trip_time_minutes"`

	AvgVehicleOccupancy      float64 `json:"avg_vehicle_occupancy" yaml:"avg_vehicle_occupancy"`
	FuelEfficiencyKmPerLiter float64 `json:"fuel_efficiency_km_per_liter" yaml:"fuel_efficiency_km_per_liter"`

	FuelPricePerLiter float64 `json:"fuel_price_per_liter" yaml:"fuel_price_per_liter"`
	TransitFare       float64 `json:"transit_fare" yaml:"transit_fare"`
	AvgHourlyWage     float64 `json:"avg_hourly_wage" yaml:"avg_hourly_wage"`
}

// DefaultContext returns the generic urban-area parameter bundle
func DefaultContext() RegionalContext {
	return RegionalContext{
		Name:           "default",
		Currency:       "USD",
		CurrencySymbol: "$",
		Population:     1_000_000,
		DailyTrips:     2_500_000,
		BaselineShares: ModeShare{
			ModeCar:        0.45,
			ModeMotorcycle: 0.25,
			ModeTransit:    0.20,
			ModeWalkCycle:  0.10,
		},
		AvgTripDistanceKm:        12.0,
		AvgTripTimeMin:           35.0,
		AvgVehicleOccupancy:      1.3,
		FuelEfficiencyKmPerLiter: 12.0,
		FuelPricePerLiter:        1.20,
		TransitFare:              1.50,
		AvgHourlyWage:            8.00,
	}
}
