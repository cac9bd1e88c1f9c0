package simulation

import (
	"math"
	"testing"

	"github.com/mahbubchula/policysim/internal/domain"
	"github.com/mahbubchula/policysim/internal/modules/policy"
)

func TestCalculateEmissions_Baseline(t *testing.T) {
	ctx := domain.DefaultContext()
	result := CalculateEmissions(ctx, ctx.BaselineShares)

	// car: 2.5M * 0.45 * 12 km * (0.21 / 1.3)
	wantCar := 2_500_000 * 0.45 * 12 * (0.21 / 1.3)
	wantMoto := 2_500_000 * 0.25 * 12 * 0.10
	wantTransit := 2_500_000 * 0.20 * 12 * 0.05
	want := wantCar + wantMoto + wantTransit

	if math.Abs(result.TotalCO2KgPerDay-want) > 1e-6 {
		t.Errorf("total CO2 = %v, want %v", result.TotalCO2KgPerDay, want)
	}
	if result.CO2ByMode[domain.ModeWalkCycle] != 0 {
		t.Errorf("walk/cycle CO2 = %v, want 0", result.CO2ByMode[domain.ModeWalkCycle])
	}
	if math.Abs(result.PerTripCO2Kg-want/2_500_000) > 1e-9 {
		t.Errorf("per-trip CO2 = %v, want %v", result.PerTripCO2Kg, want/2_500_000)
	}
}

func TestCalculateEmissions_MonotonicInDailyTrips(t *testing.T) {
	ctx := domain.DefaultContext()
	prev := -1.0
	for _, trips := range []float64{0, 100_000, 1_000_000, 2_500_000, 10_000_000} {
		c := ctx
		c.DailyTrips = trips
		got := CalculateEmissions(c, c.BaselineShares).TotalCO2KgPerDay
		if got < prev {
			t.Errorf("emissions decreased from %v to %v as trips grew to %v", prev, got, trips)
		}
		prev = got
	}
}

func TestCalculateEmissions_ZeroOnlyWithoutMotorized(t *testing.T) {
	ctx := domain.DefaultContext()
	shares := domain.ModeShare{
		domain.ModeCar:        0,
		domain.ModeMotorcycle: 0,
		domain.ModeTransit:    0,
		domain.ModeWalkCycle:  1,
	}
	if got := CalculateEmissions(ctx, shares).TotalCO2KgPerDay; got != 0 {
		t.Errorf("all-walking emissions = %v, want 0", got)
	}
}

func TestCalculateCost_Baseline(t *testing.T) {
	ctx := domain.DefaultContext()
	result := CalculateCost(ctx, ctx.BaselineShares, policy.Adjustments{})

	vot := 8.0 * 0.5 / 60
	wantCar := 12.0/12.0*1.20 + 35*vot
	wantTransit := 1.50 + 35*1.3*vot

	if math.Abs(result.CostByMode[domain.ModeCar]-wantCar) > 1e-9 {
		t.Errorf("car cost = %v, want %v", result.CostByMode[domain.ModeCar], wantCar)
	}
	if math.Abs(result.CostByMode[domain.ModeTransit]-wantTransit) > 1e-9 {
		t.Errorf("transit cost = %v, want %v", result.CostByMode[domain.ModeTransit], wantTransit)
	}
	if result.GovernmentCostPerYr != 0 {
		t.Errorf("government cost without subsidy = %v, want 0", result.GovernmentCostPerYr)
	}
}

func TestCalculateCost_SubsidyGovernmentCost(t *testing.T) {
	ctx := domain.DefaultContext()
	adj := policy.Adjustments{TransitSubsidyPercent: 30}
	result := CalculateCost(ctx, ctx.BaselineShares, adj)

	// subsidy_per_trip × subsidized_trips × 365
	want := (1.50 * 0.30) * (2_500_000 * 0.20) * 365
	if math.Abs(result.GovernmentCostPerYr-want) > 1e-3 {
		t.Errorf("government cost = %v, want %v", result.GovernmentCostPerYr, want)
	}

	// subsidized fare lowers the weighted user cost
	base := CalculateCost(ctx, ctx.BaselineShares, policy.Adjustments{})
	if result.UserCostPerTrip >= base.UserCostPerTrip {
		t.Errorf("user cost with subsidy %v not below baseline %v",
			result.UserCostPerTrip, base.UserCostPerTrip)
	}
}

func TestCalculateEquity_Bounds(t *testing.T) {
	ctx := domain.DefaultContext()

	for _, cost := range []float64{0, 0.5, 2.88, 10, 100} {
		result := CalculateEquity(ctx, cost)
		if result.EquityScore < 0 || result.EquityScore > 1 {
			t.Errorf("equity score %v for cost %v outside [0, 1]", result.EquityScore, cost)
		}
	}
}

func TestCalculateEquity_EqualBurdensScoreOne(t *testing.T) {
	ctx := domain.DefaultContext()

	// zero transport cost puts an identical (zero) burden on every quintile
	result := CalculateEquity(ctx, 0)
	if result.EquityScore != 1.0 {
		t.Errorf("equity score with equal burdens = %v, want exactly 1.0", result.EquityScore)
	}
	if result.GiniIndex != 0 {
		t.Errorf("Gini with equal burdens = %v, want 0", result.GiniIndex)
	}
}

func TestCalculateEquity_RegressiveBurden(t *testing.T) {
	ctx := domain.DefaultContext()
	result := CalculateEquity(ctx, 2.88)

	// flat costs weigh heavier on lower incomes
	if result.BurdenByQuintile["low"] <= result.BurdenByQuintile["high"] {
		t.Errorf("low-income burden %v not above high-income burden %v",
			result.BurdenByQuintile["low"], result.BurdenByQuintile["high"])
	}
}

func TestCalculateEfficiency_CongestionRespondsToCarShare(t *testing.T) {
	ctx := domain.DefaultContext()
	baseline := ctx.BaselineShares

	fewerCars := domain.ModeShare{
		domain.ModeCar:        0.35,
		domain.ModeMotorcycle: 0.25,
		domain.ModeTransit:    0.30,
		domain.ModeWalkCycle:  0.10,
	}

	base := CalculateEfficiency(ctx, baseline, baseline)
	better := CalculateEfficiency(ctx, fewerCars, baseline)

	if better.CongestionIndex >= base.CongestionIndex {
		t.Errorf("congestion index %v with fewer cars not below baseline %v",
			better.CongestionIndex, base.CongestionIndex)
	}
	if better.TravelTimeByMode[domain.ModeTransit] != baseTravelTimes[domain.ModeTransit] {
		t.Errorf("transit time is congestion-insensitive, got %v",
			better.TravelTimeByMode[domain.ModeTransit])
	}
}

func TestCongestionFactorFloor(t *testing.T) {
	baseline := domain.ModeShare{domain.ModeCar: 0.9}
	projected := domain.ModeShare{domain.ModeCar: 0.0}

	if got := congestionFactor(projected, baseline); got != congestionFactorFloor {
		t.Errorf("congestion factor = %v, want floor %v", got, congestionFactorFloor)
	}
}
