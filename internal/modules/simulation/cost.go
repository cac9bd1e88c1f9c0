package simulation

import (
	"github.com/mahbubchula/policysim/internal/domain"
	"github.com/mahbubchula/policysim/internal/modules/policy"
	"github.com/mahbubchula/policysim/pkg/formulas"
)

// Per-trip cost structure constants. Value of time is the standard transport
// economics assumption of 50% of the hourly wage.
const (
	valueOfTimeWageShare = 0.5

	motorcycleEfficiencyGain = 1.5 // motorcycles travel further per liter
	motorcycleTimeRatio      = 0.9 // slightly faster than car
	transitTimeRatio         = 1.3 // transit trips run longer
	walkCycleTimeRatio       = 1.5

	daysPerYear = 365
)

// CalculateCost computes the trip-weighted average user cost
// (fuel + fare + travel time × value of time) and the annual government cost
// of any transit fare subsidy.
func CalculateCost(ctx domain.RegionalContext, shares domain.ModeShare, adj policy.Adjustments) CostResult {
	fuelPrice := ctx.FuelPricePerLiter * (1 + adj.FuelTaxPercent/100)
	fare := ctx.TransitFare * (1 - adj.TransitSubsidyPercent/100)
	votPerMinute := ctx.AvgHourlyWage * valueOfTimeWageShare / 60

	var carFuel, motoFuel float64
	if ctx.FuelEfficiencyKmPerLiter > 0 {
		carFuel = ctx.AvgTripDistanceKm / ctx.FuelEfficiencyKmPerLiter * fuelPrice
		motoFuel = ctx.AvgTripDistanceKm / (ctx.FuelEfficiencyKmPerLiter * motorcycleEfficiencyGain) * fuelPrice
	}

	byMode := map[domain.Mode]float64{
		domain.ModeCar:        carFuel + ctx.AvgTripTimeMin*votPerMinute,
		domain.ModeMotorcycle: motoFuel + ctx.AvgTripTimeMin*motorcycleTimeRatio*votPerMinute,
		domain.ModeTransit:    fare + ctx.AvgTripTimeMin*transitTimeRatio*votPerMinute,
		domain.ModeWalkCycle:  ctx.AvgTripTimeMin * walkCycleTimeRatio * votPerMinute,
	}

	costs := make([]float64, len(domain.AllModes))
	weights := make([]float64, len(domain.AllModes))
	for i, mode := range domain.AllModes {
		costs[i] = byMode[mode]
		weights[i] = shares[mode]
	}
	userCost := formulas.WeightedMean(costs, weights)

	// Government cost: subsidy per trip × subsidized trips × 365.
	// Zero for policies without a subsidy parameter.
	subsidyPerTrip := ctx.TransitFare * adj.TransitSubsidyPercent / 100
	transitTrips := ctx.DailyTrips * shares[domain.ModeTransit]
	govPerYear := subsidyPerTrip * transitTrips * daysPerYear

	return CostResult{
		UserCostPerTrip:     userCost,
		TotalUserCostPerDay: userCost * ctx.DailyTrips,
		GovernmentCostPerYr: govPerYear,
		CostByMode:          byMode,
	}
}
