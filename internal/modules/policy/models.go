// Package policy defines the transportation-policy data model: the closed set
// of policy kinds, their parameter schemas and valid ranges, multi-policy
// scenarios, and the conversion from policy parameters to model adjustments.
package policy

import (
	"fmt"

	"github.com/mahbubchula/policysim/internal/domain"
)

// Kind identifies a policy instrument
type Kind string

const (
	KindCongestionPricing Kind = "congestion_pricing"
	KindTransitSubsidy    Kind = "transit_subsidy"
	KindFuelTax           Kind = "fuel_tax"
	KindEVIncentive       Kind = "ev_incentive"
	KindParkingManagement Kind = "parking_management"
)

// Category groups policy instruments by mechanism
type Category string

const (
	CategoryPricing   Category = "pricing"
	CategorySubsidy   Category = "subsidy"
	CategoryIncentive Category = "incentive"
)

// Policy is one typed, parameterized policy instrument.
// A nil *Policy represents the baseline (no policy).
type Policy struct {
	Kind   Kind               `json:"kind"`
	Params map[string]float64 `json:"params"`
}

// ParamDef describes one policy parameter and its valid range
type ParamDef struct {
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Default     float64 `json:"default"`
	Description string  `json:"description"`
}

// Definition is the registry entry for one policy kind
type Definition struct {
	Kind        Kind                `json:"kind"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Category    Category            `json:"category"`
	Params      map[string]ParamDef `json:"params"`
}

// ValidationError reports a malformed or out-of-range policy, scenario or
// context reference. It is always surfaced to the caller, never clamped.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Scenario is a named bundle of zero or more simultaneous policies.
// Effects of combined policies are additive on price/utility deltas
// before a single mode-share recomputation pass.
type Scenario struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Policies    []Policy `json:"policies"`
}

// Adjustments are the combined model inputs derived from a set of policies.
// PriceDeltas holds fractional price/utility changes per mode (ΔP/P).
type Adjustments struct {
	PriceDeltas map[domain.Mode]float64

	FuelTaxPercent        float64
	TransitSubsidyPercent float64
	CongestionCharge      float64
	ParkingHourlyRate     float64
	EVPurchaseSubsidy     float64
}

// HasSubsidy reports whether the adjustment carries a transit fare subsidy
func (a Adjustments) HasSubsidy() bool {
	return a.TransitSubsidyPercent > 0
}

// RequestAction is the structured intent recovered from a free-text query
type RequestAction string

const (
	ActionAnalyze   RequestAction = "analyze"
	ActionCompare   RequestAction = "compare"
	ActionRecommend RequestAction = "recommend"
)

// InterpretedRequest is the structured form of a natural-language query.
// It carries at most one of Policies or ScenarioIDs depending on Action and
// is validated through the registry like any caller-supplied policy.
type InterpretedRequest struct {
	Action       RequestAction `json:"action"`
	Policies     []Policy      `json:"policies,omitempty"`
	ScenarioIDs  []string      `json:"scenario_ids,omitempty"`
	TargetMetric string        `json:"target_metric,omitempty"`
	Confidence   float64       `json:"confidence"`
}
