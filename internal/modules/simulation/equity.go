package simulation

import (
	"github.com/mahbubchula/policysim/internal/domain"
	"github.com/mahbubchula/policysim/pkg/formulas"
)

// Income quintiles with fixed multipliers of the average income
var incomeQuintiles = []struct {
	name       string
	multiplier float64
}{
	{"low", 0.4},
	{"lower_middle", 0.7},
	{"middle", 1.0},
	{"upper_middle", 1.5},
	{"high", 2.5},
}

const workHoursPerDay = 8

// CalculateEquity evaluates the distribution of the transport cost burden
// across income quintiles. Burden = (daily_transport_cost / daily_income) × 100
// with the same per-trip cost applied uniformly; the cost is deliberately not
// mode-differentiated by income. Equity score = 1 − Gini(burden), clamped to [0, 1].
func CalculateEquity(ctx domain.RegionalContext, userCostPerTrip float64) EquityResult {
	var tripsPerPerson float64
	if ctx.Population > 0 {
		tripsPerPerson = ctx.DailyTrips / ctx.Population
	}
	dailyTransportCost := userCostPerTrip * tripsPerPerson

	byQuintile := make(map[string]float64, len(incomeQuintiles))
	burdens := make([]float64, 0, len(incomeQuintiles))
	for _, q := range incomeQuintiles {
		dailyIncome := ctx.AvgHourlyWage * workHoursPerDay * q.multiplier
		var burden float64
		if dailyIncome > 0 {
			burden = dailyTransportCost / dailyIncome * 100
		}
		byQuintile[q.name] = burden
		burdens = append(burdens, burden)
	}

	gini := formulas.Gini(burdens)

	return EquityResult{
		GiniIndex:        gini,
		BurdenByQuintile: byQuintile,
		EquityScore:      formulas.Clamp(1-gini, 0, 1),
	}
}
