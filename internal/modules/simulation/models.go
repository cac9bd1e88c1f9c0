// Package simulation implements the deterministic model suite: mode share,
// emissions, cost-benefit, equity and efficiency, plus the simulator that
// composes them into baseline-anchored scenario results.
package simulation

import "github.com/mahbubchula/policysim/internal/domain"

// ModelID identifies one of the quantitative models
type ModelID string

const (
	ModelModeShare   ModelID = "mode_share"
	ModelEmissions   ModelID = "emissions"
	ModelCostBenefit ModelID = "cost_benefit"
	ModelEquity      ModelID = "equity"
	ModelEfficiency  ModelID = "efficiency"
)

// AllModels returns the full model set in execution order
func AllModels() []ModelID {
	return []ModelID{ModelModeShare, ModelEmissions, ModelCostBenefit, ModelEquity, ModelEfficiency}
}

// ModeShareResult holds baseline and projected mode shares
type ModeShareResult struct {
	Baseline     domain.ModeShare        `json:"baseline_shares"`
	Projected    domain.ModeShare        `json:"projected_shares"`
	ShiftPercent map[domain.Mode]float64 `json:"shift_percentage"`
}

// EmissionsResult holds the emissions model output
type EmissionsResult struct {
	TotalCO2KgPerDay float64                 `json:"total_co2_kg_per_day"`
	CO2ByMode        map[domain.Mode]float64 `json:"co2_by_mode"`
	PerCapitaCO2Kg   float64                 `json:"per_capita_co2_kg"`
	PerTripCO2Kg     float64                 `json:"per_trip_co2_kg"`
}

// CostResult holds the cost-benefit model output
type CostResult struct {
	UserCostPerTrip     float64                 `json:"user_cost_per_trip"`
	TotalUserCostPerDay float64                 `json:"total_user_cost_per_day"`
	GovernmentCostPerYr float64                 `json:"government_cost_per_year"`
	CostByMode          map[domain.Mode]float64 `json:"cost_by_mode"`
}

// EquityResult holds the equity model output
type EquityResult struct {
	GiniIndex        float64            `json:"gini_index"`
	BurdenByQuintile map[string]float64 `json:"burden_by_quintile"`
	EquityScore      float64            `json:"equity_score"` // 0-1, higher is more equitable
}

// EfficiencyResult holds the efficiency model output
type EfficiencyResult struct {
	AvgTravelTimeMin float64                 `json:"avg_travel_time_minutes"`
	TravelTimeByMode map[domain.Mode]float64 `json:"travel_time_by_mode"`
	CongestionIndex  float64                 `json:"congestion_index"`
	SystemThroughput float64                 `json:"system_throughput"`
}

// Result is the combined output of one simulation run. Immutable after
// creation. Subscores and the overall score are anchored to the baseline run
// of the same context (the baseline itself scores at the 50-point anchor).
type Result struct {
	ModeShare  ModeShareResult  `json:"mode_share"`
	Emissions  EmissionsResult  `json:"emissions"`
	Cost       CostResult       `json:"cost"`
	Equity     EquityResult     `json:"equity"`
	Efficiency EfficiencyResult `json:"efficiency"`

	EmissionsScore  float64 `json:"emissions_score"`
	CostScore       float64 `json:"cost_score"`
	EfficiencyScore float64 `json:"efficiency_score"`
	OverallScore    float64 `json:"overall_score"`
}

// EmissionsKgDay returns the headline emissions metric
func (r Result) EmissionsKgDay() float64 { return r.Emissions.TotalCO2KgPerDay }

// UserCostPerTrip returns the headline user cost metric
func (r Result) UserCostPerTrip() float64 { return r.Cost.UserCostPerTrip }

// GovernmentCostAnnual returns the headline government cost metric
func (r Result) GovernmentCostAnnual() float64 { return r.Cost.GovernmentCostPerYr }

// EquityScoreValue returns the headline equity metric
func (r Result) EquityScoreValue() float64 { return r.Equity.EquityScore }
