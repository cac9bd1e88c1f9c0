package policy

import "github.com/mahbubchula/policysim/internal/domain"

// congestionChargePriceEffect is the fractional car price increase per
// currency unit of congestion charge (one unit of charge ≈ 10% price increase)
const congestionChargePriceEffect = 0.10

func (p Policy) param(name string) float64 {
	return p.Params[name]
}

// Combine validates the given policies and folds them into a single set of
// model adjustments. Price/utility deltas from multiple policies are summed
// before a single mode-share recomputation pass; no sequential application
// order is modeled.
//
// Price deltas are relative to the context's baseline prices. A mode whose
// baseline price is zero gets no delta (ΔP/P is undefined there).
func Combine(reg *Registry, ctx domain.RegionalContext, policies []Policy) (Adjustments, error) {
	adj := Adjustments{PriceDeltas: make(map[domain.Mode]float64, len(domain.AllModes))}
	for _, m := range domain.AllModes {
		adj.PriceDeltas[m] = 0
	}

	for i := range policies {
		p := policies[i]
		if err := reg.Validate(&p); err != nil {
			return Adjustments{}, err
		}

		switch p.Kind {
		case KindCongestionPricing:
			adj.CongestionCharge += p.param("price_per_entry")
		case KindTransitSubsidy:
			adj.TransitSubsidyPercent += p.param("subsidy_percent")
		case KindFuelTax:
			adj.FuelTaxPercent += p.param("tax_percent")
		case KindParkingManagement:
			adj.ParkingHourlyRate += p.param("hourly_rate")
		case KindEVIncentive:
			adj.EVPurchaseSubsidy += p.param("purchase_subsidy")
		}
	}

	// Stacked subsidies cannot exceed a free fare
	if adj.TransitSubsidyPercent > 100 {
		adj.TransitSubsidyPercent = 100
	}

	// Fuel-driven price changes apply to car and motorcycle, but only when
	// there is a baseline fuel price to change
	if ctx.FuelPricePerLiter > 0 {
		adj.PriceDeltas[domain.ModeCar] += adj.FuelTaxPercent / 100
		adj.PriceDeltas[domain.ModeMotorcycle] += adj.FuelTaxPercent / 100
	}

	adj.PriceDeltas[domain.ModeCar] += adj.CongestionCharge * congestionChargePriceEffect

	if ctx.TransitFare > 0 {
		adj.PriceDeltas[domain.ModeTransit] -= adj.TransitSubsidyPercent / 100
	}

	return adj, nil
}
