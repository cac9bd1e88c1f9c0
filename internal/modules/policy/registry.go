package policy

// Registry is the closed catalog of policy kinds. It is built once at startup
// and read-only afterwards.
type Registry struct {
	defs  map[Kind]Definition
	order []Kind
}

// NewRegistry creates the registry with all known policy kinds
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[Kind]Definition)}
	for _, def := range builtinDefinitions() {
		r.defs[def.Kind] = def
		r.order = append(r.order, def.Kind)
	}
	return r
}

func builtinDefinitions() []Definition {
	return []Definition{
		{
			Kind:     KindCongestionPricing,
			Name:     "Congestion Pricing",
			Category: CategoryPricing,
			Description: "Road pricing in congested urban areas. Vehicles are " +
				"charged for entering designated zones, with higher prices during peak hours.",
			Params: map[string]ParamDef{
				"price_per_entry": {
					Name: "Base Price per Entry", Unit: "currency",
					Min: 0, Max: 50, Default: 5.0,
					Description: "Base charge for entering the congestion zone",
				},
				"peak_multiplier": {
					Name: "Peak Hour Multiplier", Unit: "multiplier",
					Min: 1.0, Max: 3.0, Default: 1.5,
					Description: "Price multiplier during peak hours",
				},
			},
		},
		{
			Kind:     KindTransitSubsidy,
			Name:     "Public Transit Subsidy",
			Category: CategorySubsidy,
			Description: "Government subsidizes public transit fares to increase " +
				"ridership and reduce private vehicle use.",
			Params: map[string]ParamDef{
				"subsidy_percent": {
					Name: "Subsidy Percentage", Unit: "%",
					Min: 0, Max: 100, Default: 30.0,
					Description: "Percentage of fare covered by subsidy",
				},
			},
		},
		{
			Kind:     KindFuelTax,
			Name:     "Fuel Tax",
			Category: CategoryPricing,
			Description: "Increases fuel prices through taxation to discourage " +
				"private vehicle use and fund sustainable transportation.",
			Params: map[string]ParamDef{
				"tax_percent": {
					Name: "Tax Rate", Unit: "%",
					Min: 0, Max: 100, Default: 20.0,
					Description: "Additional tax as percentage of fuel price",
				},
			},
		},
		{
			Kind:     KindEVIncentive,
			Name:     "EV Incentive",
			Category: CategoryIncentive,
			Description: "Financial incentives for purchasing electric vehicles: " +
				"direct subsidies, tax reductions and access benefits.",
			Params: map[string]ParamDef{
				"purchase_subsidy": {
					Name: "Purchase Subsidy", Unit: "currency",
					Min: 0, Max: 20000, Default: 5000,
					Description: "Direct subsidy for EV purchase",
				},
				"tax_reduction_percent": {
					Name: "Tax Reduction", Unit: "%",
					Min: 0, Max: 100, Default: 50,
					Description: "Reduction in vehicle registration tax",
				},
			},
		},
		{
			Kind:     KindParkingManagement,
			Name:     "Parking Management",
			Category: CategoryPricing,
			Description: "Parking pricing and time restrictions to manage demand " +
				"and encourage alternative transportation modes.",
			Params: map[string]ParamDef{
				"hourly_rate": {
					Name: "Hourly Rate", Unit: "currency/hour",
					Min: 0, Max: 20, Default: 3.0,
					Description: "Parking fee per hour",
				},
				"max_hours": {
					Name: "Maximum Duration", Unit: "hours",
					Min: 1, Max: 24, Default: 4,
					Description: "Maximum allowed parking duration",
				},
			},
		},
	}
}

// Get returns the definition for a kind
func (r *Registry) Get(kind Kind) (Definition, error) {
	def, ok := r.defs[kind]
	if !ok {
		return Definition{}, NewValidationError("kind", "unknown policy kind %q", kind)
	}
	return def, nil
}

// Kinds returns all registered kinds in registration order
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, len(r.order))
	copy(out, r.order)
	return out
}

// List returns all definitions in registration order
func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.defs[k])
	}
	return out
}

// Representative returns a policy of the given kind with every parameter at
// its default value. Used by the recommendation sweep.
func (r *Registry) Representative(kind Kind) (Policy, error) {
	def, err := r.Get(kind)
	if err != nil {
		return Policy{}, err
	}
	params := make(map[string]float64, len(def.Params))
	for name, pd := range def.Params {
		params[name] = pd.Default
	}
	return Policy{Kind: kind, Params: params}, nil
}

// Validate checks a policy against its kind's parameter schema.
// A nil policy is valid and represents the baseline. Unknown kinds, unknown
// parameters and out-of-range values all fail with a *ValidationError.
func (r *Registry) Validate(p *Policy) error {
	if p == nil {
		return nil
	}
	def, err := r.Get(p.Kind)
	if err != nil {
		return err
	}
	for name, value := range p.Params {
		pd, ok := def.Params[name]
		if !ok {
			return NewValidationError(name, "unknown parameter for policy %q", p.Kind)
		}
		if value < pd.Min {
			return NewValidationError(name, "must be >= %g, got %g", pd.Min, value)
		}
		if value > pd.Max {
			return NewValidationError(name, "must be <= %g, got %g", pd.Max, value)
		}
	}
	return nil
}

// ValidateScenario validates every policy in a scenario
func (r *Registry) ValidateScenario(s Scenario) error {
	for i := range s.Policies {
		if err := r.Validate(&s.Policies[i]); err != nil {
			return NewValidationError(s.Name, "policy %d: %v", i, err)
		}
	}
	return nil
}
