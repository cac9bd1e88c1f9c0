package simulation

import (
	"github.com/mahbubchula/policysim/internal/domain"
	"github.com/mahbubchula/policysim/pkg/formulas"
)

// Own-price elasticities of demand per mode, from transit research literature
var elasticities = map[domain.Mode]float64{
	domain.ModeCar:        -0.3,
	domain.ModeMotorcycle: -0.4,
	domain.ModeTransit:    -0.4,
	domain.ModeWalkCycle:  -0.1,
}

// crossEffect models substitution: the affected mode's demand responds to a
// price change in the priced mode. Only car and transit substitute for each
// other; motorcycle and walk/cycle have no modeled cross-effect.
type crossEffect struct {
	affected   domain.Mode
	priced     domain.Mode
	elasticity float64
}

var crossEffects = []crossEffect{
	{affected: domain.ModeCar, priced: domain.ModeTransit, elasticity: 0.3},
	{affected: domain.ModeTransit, priced: domain.ModeCar, elasticity: 0.2},
}

// ProjectShares applies price elasticity of demand (ΔQ/Q = ε × ΔP/P) to the
// baseline shares, applies cross-elasticity substitution between car and
// transit, clamps each share to ≥ 0 and renormalizes so the shares sum to 1.
func ProjectShares(baseline domain.ModeShare, priceDeltas map[domain.Mode]float64) ModeShareResult {
	projected := baseline.Clone()

	for _, mode := range domain.AllModes {
		delta := priceDeltas[mode]
		if delta == 0 {
			continue
		}
		projected[mode] = baseline[mode] * (1 + elasticities[mode]*delta)
	}

	for _, ce := range crossEffects {
		delta := priceDeltas[ce.priced]
		if delta == 0 {
			continue
		}
		projected[ce.affected] *= 1 + ce.elasticity*delta
	}

	for _, mode := range domain.AllModes {
		if projected[mode] < 0 {
			projected[mode] = 0
		}
	}

	total := projected.Sum()
	if total > 0 {
		for mode, share := range projected {
			projected[mode] = share / total
		}
	} else {
		// every share collapsed to zero; keep the baseline distribution
		projected = baseline.Clone()
	}

	shift := make(map[domain.Mode]float64, len(domain.AllModes))
	for _, mode := range domain.AllModes {
		shift[mode] = formulas.PercentChange(baseline[mode], projected[mode])
	}

	return ModeShareResult{
		Baseline:     baseline.Clone(),
		Projected:    projected,
		ShiftPercent: shift,
	}
}
