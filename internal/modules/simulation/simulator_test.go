package simulation

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahbubchula/policysim/internal/domain"
	"github.com/mahbubchula/policysim/internal/modules/policy"
)

func newTestSimulator() *Simulator {
	return New(policy.NewRegistry(), zerolog.Nop())
}

func TestSimulate_BaselineIsSelfAnchored(t *testing.T) {
	sim := newTestSimulator()
	ctx := domain.DefaultContext()

	result, err := sim.SimulateBaseline(ctx)
	require.NoError(t, err)

	assert.Equal(t, 50.0, result.EmissionsScore)
	assert.Equal(t, 50.0, result.CostScore)
	assert.Equal(t, 50.0, result.EfficiencyScore)
	assert.InDelta(t, 1.0, result.ModeShare.Projected.Sum(), 1e-9)

	for _, mode := range domain.AllModes {
		assert.InDelta(t, 0.0, result.ModeShare.ShiftPercent[mode], 1e-9,
			"baseline shift for %s", mode)
	}

	// identical inputs, identical outputs
	again, err := sim.SimulateBaseline(ctx)
	require.NoError(t, err)
	assert.Equal(t, result, again)
}

func TestSimulate_InvalidPolicyFailsBeforeModels(t *testing.T) {
	sim := newTestSimulator()
	ctx := domain.DefaultContext()

	_, err := sim.Simulate(ctx, []policy.Policy{{
		Kind:   policy.KindTransitSubsidy,
		Params: map[string]float64{"subsidy_percent": 150},
	}})

	var verr *policy.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "subsidy_percent", verr.Field)
}

func TestSimulate_TransitSubsidyEndToEnd(t *testing.T) {
	sim := newTestSimulator()
	ctx := domain.DefaultContext()

	result, err := sim.Simulate(ctx, []policy.Policy{{
		Kind:   policy.KindTransitSubsidy,
		Params: map[string]float64{"subsidy_percent": 30},
	}})
	require.NoError(t, err)

	// own elasticity: 0.20 × (1 + 0.4×0.30) = 0.224
	// cross effect on car: 0.45 × (1 − 0.3×0.30) = 0.4095
	// renormalized against the new total of 0.9835
	transit := result.ModeShare.Projected[domain.ModeTransit]
	assert.InDelta(t, 0.224/0.9835, transit, 1e-9)

	shift := result.ModeShare.ShiftPercent[domain.ModeTransit]
	assert.Greater(t, shift, 10.0)
	assert.Less(t, shift, 15.0)

	baseline, err := sim.SimulateBaseline(ctx)
	require.NoError(t, err)

	drop := (baseline.EmissionsKgDay() - result.EmissionsKgDay()) /
		baseline.EmissionsKgDay() * 100
	assert.Greater(t, drop, 3.0)
	assert.Less(t, drop, 5.0)

	// less CO2 and cheaper trips both score above the anchor
	assert.Greater(t, result.EmissionsScore, 50.0)
	assert.Greater(t, result.CostScore, 50.0)
	assert.Greater(t, result.GovernmentCostAnnual(), 0.0)
}

func TestSimulate_FuelTaxShiftsAwayFromCars(t *testing.T) {
	sim := newTestSimulator()
	ctx := domain.DefaultContext()

	result, err := sim.Simulate(ctx, []policy.Policy{{
		Kind:   policy.KindFuelTax,
		Params: map[string]float64{"tax_percent": 20},
	}})
	require.NoError(t, err)

	assert.Less(t, result.ModeShare.Projected[domain.ModeCar],
		ctx.BaselineShares[domain.ModeCar])
	assert.Greater(t, result.ModeShare.Projected[domain.ModeTransit],
		ctx.BaselineShares[domain.ModeTransit])
	assert.Greater(t, result.EmissionsScore, 50.0)
	// pricier fuel raises the average trip cost
	assert.Less(t, result.CostScore, 50.0)
}

func TestSimulate_OverallScoreComposition(t *testing.T) {
	sim := newTestSimulator()
	ctx := domain.DefaultContext()

	result, err := sim.Simulate(ctx, []policy.Policy{{
		Kind:   policy.KindCongestionPricing,
		Params: map[string]float64{"price_per_entry": 8},
	}})
	require.NoError(t, err)

	want := 0.25*result.EmissionsScore + 0.25*result.CostScore +
		0.25*result.Equity.EquityScore*100 + 0.25*result.EfficiencyScore
	assert.InDelta(t, want, result.OverallScore, 1e-9)
	assert.True(t, result.OverallScore >= 0 && result.OverallScore <= 100)
}

func TestSimulate_ScenarioLibraryRunsClean(t *testing.T) {
	sim := newTestSimulator()
	ctx := domain.DefaultContext()
	lib := policy.NewLibrary()

	for _, scenario := range lib.List() {
		result, err := sim.SimulateScenario(ctx, scenario)
		require.NoError(t, err, "scenario %s", scenario.ID)
		assert.InDelta(t, 1.0, result.ModeShare.Projected.Sum(), 1e-9,
			"scenario %s", scenario.ID)
		assert.False(t, math.IsNaN(result.OverallScore), "scenario %s", scenario.ID)
	}
}

func TestAnchoredScore(t *testing.T) {
	assert.Equal(t, 50.0, anchoredScore(100, 100))
	assert.Equal(t, 100.0, anchoredScore(100, 50))
	assert.Equal(t, 0.0, anchoredScore(100, 200))
	assert.Equal(t, 0.0, anchoredScore(100, 500))
	assert.Equal(t, 50.0, anchoredScore(0, 42))
}

func TestSimulate_ZeroFareContextIgnoresSubsidy(t *testing.T) {
	sim := newTestSimulator()
	ctx := domain.DefaultContext()
	ctx.TransitFare = 0

	result, err := sim.Simulate(ctx, []policy.Policy{{
		Kind:   policy.KindTransitSubsidy,
		Params: map[string]float64{"subsidy_percent": 50},
	}})
	require.NoError(t, err)

	// nothing to discount, so shares stay at baseline
	for _, mode := range domain.AllModes {
		assert.InDelta(t, ctx.BaselineShares[mode],
			result.ModeShare.Projected[mode], 1e-9, "mode %s", mode)
	}
}
