package comparison

import (
	"sort"

	"github.com/mahbubchula/policysim/internal/modules/policy"
)

// Compare ranks two or more scenario results on every tracked metric. Fewer
// than two entries is a validation failure, not a degenerate comparison.
func Compare(entries []Entry) (Result, error) {
	if len(entries) < 2 {
		return Result{}, policy.NewValidationError("scenarios",
			"comparison requires at least 2 scenarios, got %d", len(entries))
	}

	winners := make(map[Metric]string, len(AllMetrics()))
	rankings := make(map[Metric][]Ranking, len(AllMetrics()))

	for _, metric := range AllMetrics() {
		ranked := make([]Ranking, len(entries))
		for i, e := range entries {
			ranked[i] = Ranking{
				ScenarioID: e.ScenarioID,
				Value:      MetricValue(e.Result, metric),
			}
		}

		// SliceStable keeps input order on exact ties, so the
		// first-listed scenario wins a tied metric.
		if lowerIsBetter[metric] {
			sort.SliceStable(ranked, func(i, j int) bool {
				return ranked[i].Value < ranked[j].Value
			})
		} else {
			sort.SliceStable(ranked, func(i, j int) bool {
				return ranked[i].Value > ranked[j].Value
			})
		}

		rankings[metric] = ranked
		winners[metric] = ranked[0].ScenarioID
	}

	return Result{
		Entries:       entries,
		Winners:       winners,
		Rankings:      rankings,
		OverallWinner: winners[MetricOverallScore],
	}, nil
}
