package simulation

import (
	"github.com/rs/zerolog"

	"github.com/mahbubchula/policysim/internal/domain"
	"github.com/mahbubchula/policysim/internal/modules/policy"
	"github.com/mahbubchula/policysim/pkg/formulas"
)

// Scoring weights for the composite score; all four dimensions weigh equally
const (
	weightEmissions  = 0.25
	weightCost       = 0.25
	weightEquity     = 0.25
	weightEfficiency = 0.25

	// subscoreAnchor is where the baseline run lands on the 0-100 scale.
	// A policy halving a metric relative to baseline reaches 100, doubling
	// it reaches 0.
	subscoreAnchor = 50
)

// Simulator composes the five models. Sequencing is fixed: mode share runs
// first; emissions, cost and efficiency run off its output; equity runs after
// cost because it consumes the computed per-trip cost. All computations are
// pure functions; a Simulator is safe for concurrent use.
type Simulator struct {
	registry *policy.Registry
	log      zerolog.Logger
}

// New creates a new simulator
func New(registry *policy.Registry, log zerolog.Logger) *Simulator {
	return &Simulator{
		registry: registry,
		log:      log.With().Str("component", "simulator").Logger(),
	}
}

// rawMetrics is one un-scored pass through the model suite
type rawMetrics struct {
	modeShare  ModeShareResult
	emissions  EmissionsResult
	cost       CostResult
	equity     EquityResult
	efficiency EfficiencyResult
}

func (s *Simulator) run(ctx domain.RegionalContext, adj policy.Adjustments) rawMetrics {
	modeShare := ProjectShares(ctx.BaselineShares, adj.PriceDeltas)
	shares := modeShare.Projected

	emissions := CalculateEmissions(ctx, shares)
	cost := CalculateCost(ctx, shares, adj)
	equity := CalculateEquity(ctx, cost.UserCostPerTrip)
	efficiency := CalculateEfficiency(ctx, shares, ctx.BaselineShares)

	return rawMetrics{
		modeShare:  modeShare,
		emissions:  emissions,
		cost:       cost,
		equity:     equity,
		efficiency: efficiency,
	}
}

// anchoredScore normalizes a lower-is-better metric against the baseline run:
// the baseline itself scores at the anchor, improvements score above it.
func anchoredScore(baseline, value float64) float64 {
	if baseline == 0 {
		return subscoreAnchor
	}
	return formulas.Clamp(subscoreAnchor*(2-value/baseline), 0, 100)
}

// Simulate runs the full model suite for the given policies (nil or empty for
// baseline) and returns a baseline-anchored result. An invalid policy fails
// with a *policy.ValidationError before any model executes.
func (s *Simulator) Simulate(ctx domain.RegionalContext, policies []policy.Policy) (Result, error) {
	adj, err := policy.Combine(s.registry, ctx, policies)
	if err != nil {
		return Result{}, err
	}

	// The baseline run is the normalization anchor for every subscore,
	// so it is recomputed here rather than carried as state.
	zero, _ := policy.Combine(s.registry, ctx, nil)
	baseRaw := s.run(ctx, zero)

	raw := baseRaw
	if len(policies) > 0 {
		raw = s.run(ctx, adj)
	}

	result := Result{
		ModeShare:  raw.modeShare,
		Emissions:  raw.emissions,
		Cost:       raw.cost,
		Equity:     raw.equity,
		Efficiency: raw.efficiency,

		EmissionsScore:  anchoredScore(baseRaw.emissions.TotalCO2KgPerDay, raw.emissions.TotalCO2KgPerDay),
		CostScore:       anchoredScore(baseRaw.cost.UserCostPerTrip, raw.cost.UserCostPerTrip),
		EfficiencyScore: anchoredScore(baseRaw.efficiency.AvgTravelTimeMin, raw.efficiency.AvgTravelTimeMin),
	}

	result.OverallScore = weightEmissions*result.EmissionsScore +
		weightCost*result.CostScore +
		weightEquity*result.Equity.EquityScore*100 +
		weightEfficiency*result.EfficiencyScore

	s.log.Debug().
		Str("context", ctx.Name).
		Int("policies", len(policies)).
		Float64("overall_score", result.OverallScore).
		Msg("Simulation complete")

	return result, nil
}

// SimulateScenario runs a named scenario's policy bundle
func (s *Simulator) SimulateScenario(ctx domain.RegionalContext, scenario policy.Scenario) (Result, error) {
	return s.Simulate(ctx, scenario.Policies)
}

// SimulateBaseline runs the no-policy case
func (s *Simulator) SimulateBaseline(ctx domain.RegionalContext) (Result, error) {
	return s.Simulate(ctx, nil)
}
