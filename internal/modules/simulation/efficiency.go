package simulation

import (
	"github.com/mahbubchula/policysim/internal/domain"
	"github.com/mahbubchula/policysim/pkg/formulas"
)

// Free-flow travel times in minutes for the average trip.
// Car and motorcycle are congestion-sensitive; transit and walk/cycle are fixed.
var baseTravelTimes = map[domain.Mode]float64{
	domain.ModeCar:        30,
	domain.ModeMotorcycle: 25,
	domain.ModeTransit:    45,
	domain.ModeWalkCycle:  50,
}

const congestionFactorFloor = 0.8

// congestionFactor derives congestion from the car-share change: fewer cars
// on the road means less congestion, floored at 0.8 of free flow.
func congestionFactor(projected, baseline domain.ModeShare) float64 {
	factor := 1.0 + (projected[domain.ModeCar] - baseline[domain.ModeCar])
	if factor < congestionFactorFloor {
		factor = congestionFactorFloor
	}
	return factor
}

// CalculateEfficiency derives the system travel-time proxy from mode shares
// and per-mode travel-time constants, plus a congestion index and throughput.
func CalculateEfficiency(ctx domain.RegionalContext, projected, baseline domain.ModeShare) EfficiencyResult {
	factor := congestionFactor(projected, baseline)

	byMode := make(map[domain.Mode]float64, len(domain.AllModes))
	for _, mode := range domain.AllModes {
		t := baseTravelTimes[mode]
		if mode == domain.ModeCar || mode == domain.ModeMotorcycle {
			t *= factor
		}
		byMode[mode] = t
	}

	congested := make([]float64, len(domain.AllModes))
	freeFlow := make([]float64, len(domain.AllModes))
	weights := make([]float64, len(domain.AllModes))
	for i, mode := range domain.AllModes {
		congested[i] = byMode[mode]
		freeFlow[i] = baseTravelTimes[mode]
		weights[i] = projected[mode]
	}
	avgTime := formulas.WeightedMean(congested, weights)
	freeFlowTime := formulas.WeightedMean(freeFlow, weights)

	congestionIndex := 1.0
	if freeFlowTime > 0 {
		congestionIndex = avgTime / freeFlowTime
	}

	// person-km per hour across the system
	var throughput float64
	if avgTime > 0 {
		throughput = ctx.AvgTripDistanceKm / (avgTime / 60)
	}

	return EfficiencyResult{
		AvgTravelTimeMin: avgTime,
		TravelTimeByMode: byMode,
		CongestionIndex:  congestionIndex,
		SystemThroughput: throughput,
	}
}
