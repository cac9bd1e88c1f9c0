package simulation

import "github.com/mahbubchula/policysim/internal/domain"

// Emission factors in kg CO2 per km, from IPCC guidelines.
// The transit factor is already per passenger; car emissions are divided by
// average vehicle occupancy before summation.
var emissionFactors = map[domain.Mode]float64{
	domain.ModeCar:        0.21,
	domain.ModeMotorcycle: 0.10,
	domain.ModeTransit:    0.05,
	domain.ModeWalkCycle:  0.00,
}

// CalculateEmissions computes daily CO2:
//
//	CO2 = Σ_mode (trips_mode × avg_distance × emission_factor[mode])
func CalculateEmissions(ctx domain.RegionalContext, shares domain.ModeShare) EmissionsResult {
	byMode := make(map[domain.Mode]float64, len(domain.AllModes))
	var total float64

	for _, mode := range domain.AllModes {
		trips := ctx.DailyTrips * shares[mode]
		distance := trips * ctx.AvgTripDistanceKm

		factor := emissionFactors[mode]
		if mode == domain.ModeCar && ctx.AvgVehicleOccupancy > 0 {
			factor /= ctx.AvgVehicleOccupancy
		}

		co2 := distance * factor
		byMode[mode] = co2
		total += co2
	}

	result := EmissionsResult{
		TotalCO2KgPerDay: total,
		CO2ByMode:        byMode,
	}
	if ctx.Population > 0 {
		result.PerCapitaCO2Kg = total / ctx.Population
	}
	if ctx.DailyTrips > 0 {
		result.PerTripCO2Kg = total / ctx.DailyTrips
	}
	return result
}
