package policy

// Library holds the pre-built policy scenarios. Read-only after construction.
type Library struct {
	scenarios map[string]Scenario
	order     []string
}

// NewLibrary creates the library with all pre-built scenarios
func NewLibrary() *Library {
	l := &Library{scenarios: make(map[string]Scenario)}
	for _, s := range builtinScenarios() {
		l.scenarios[s.ID] = s
		l.order = append(l.order, s.ID)
	}
	return l
}

func builtinScenarios() []Scenario {
	return []Scenario{
		{
			ID:          "baseline",
			Name:        "Baseline",
			Description: "Current conditions with no policy changes.",
			Policies:    nil,
		},
		{
			ID:          "green_transport",
			Name:        "Green Transport",
			Description: "Aggressive policies to reduce transportation emissions.",
			Policies: []Policy{
				{Kind: KindCongestionPricing, Params: map[string]float64{"price_per_entry": 8.0}},
				{Kind: KindTransitSubsidy, Params: map[string]float64{"subsidy_percent": 50.0}},
				{Kind: KindFuelTax, Params: map[string]float64{"tax_percent": 30.0}},
			},
		},
		{
			ID:          "equity_focused",
			Name:        "Equity Focus",
			Description: "Policies prioritizing transportation affordability for all.",
			Policies: []Policy{
				{Kind: KindTransitSubsidy, Params: map[string]float64{"subsidy_percent": 70.0}},
			},
		},
		{
			ID:          "balanced",
			Name:        "Balanced Approach",
			Description: "Moderate policies balancing multiple objectives.",
			Policies: []Policy{
				{Kind: KindCongestionPricing, Params: map[string]float64{"price_per_entry": 3.0}},
				{Kind: KindTransitSubsidy, Params: map[string]float64{"subsidy_percent": 25.0}},
				{Kind: KindParkingManagement, Params: map[string]float64{"hourly_rate": 2.0}},
			},
		},
	}
}

// Get returns a scenario by ID
func (l *Library) Get(id string) (Scenario, error) {
	s, ok := l.scenarios[id]
	if !ok {
		return Scenario{}, NewValidationError("scenario", "unknown scenario %q", id)
	}
	return s, nil
}

// List returns all scenarios in registration order
func (l *Library) List() []Scenario {
	out := make([]Scenario, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.scenarios[id])
	}
	return out
}
