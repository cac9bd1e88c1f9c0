// Package comparison ranks simulation results across scenarios. Winners are
// picked per metric by the metric's natural direction; exact ties go to the
// entry listed first, so rankings are deterministic.
package comparison

import (
	"github.com/mahbubchula/policysim/internal/modules/policy"
	"github.com/mahbubchula/policysim/internal/modules/simulation"
)

// Metric identifies a comparable dimension of a simulation result
type Metric string

const (
	MetricOverallScore    Metric = "overall_score"
	MetricEmissionsKgDay  Metric = "emissions_kg_day"
	MetricUserCostPerTrip Metric = "user_cost_per_trip"
	MetricEquityScore     Metric = "equity_score"
	MetricEfficiencyScore Metric = "efficiency_score"
)

// AllMetrics lists the tracked metrics in reporting order
func AllMetrics() []Metric {
	return []Metric{
		MetricOverallScore,
		MetricEmissionsKgDay,
		MetricUserCostPerTrip,
		MetricEquityScore,
		MetricEfficiencyScore,
	}
}

// lowerIsBetter tells the ranking direction per metric; metrics absent from
// the map rank higher-is-better.
var lowerIsBetter = map[Metric]bool{
	MetricEmissionsKgDay:  true,
	MetricUserCostPerTrip: true,
}

// LowerIsBetter reports the natural ranking direction of a metric
func LowerIsBetter(m Metric) bool {
	return lowerIsBetter[m]
}

// ParseMetric resolves a metric name, rejecting unknown ones
func ParseMetric(s string) (Metric, error) {
	for _, m := range AllMetrics() {
		if Metric(s) == m {
			return m, nil
		}
	}
	return "", policy.NewValidationError("metric", "unknown metric %q", s)
}

// Entry pairs a scenario identifier with its simulation result
type Entry struct {
	ScenarioID string            `json:"scenario_id"`
	Name       string            `json:"name"`
	Result     simulation.Result `json:"result"`
}

// Ranking is one scenario's standing on a single metric
type Ranking struct {
	ScenarioID string  `json:"scenario_id"`
	Value      float64 `json:"value"`
}

// Result holds the full cross-scenario comparison: the input entries in their
// original order, the per-metric winner, per-metric rankings, and the overall
// winner (the overall_score winner).
type Result struct {
	Entries       []Entry              `json:"entries"`
	Winners       map[Metric]string    `json:"winners"`
	Rankings      map[Metric][]Ranking `json:"rankings"`
	OverallWinner string               `json:"overall_winner"`
}

// MetricValue extracts the given metric from a result
func MetricValue(r simulation.Result, m Metric) float64 {
	switch m {
	case MetricEmissionsKgDay:
		return r.EmissionsKgDay()
	case MetricUserCostPerTrip:
		return r.UserCostPerTrip()
	case MetricEquityScore:
		return r.EquityScoreValue()
	case MetricEfficiencyScore:
		return r.EfficiencyScore
	default:
		return r.OverallScore
	}
}
