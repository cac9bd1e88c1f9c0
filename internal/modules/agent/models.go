// Package agent orchestrates policy analysis requests through a linear state
// machine. Every transition is recorded in an append-only action log that is
// returned with the result for auditability.
package agent

import (
	"context"
	"time"

	"github.com/mahbubchula/policysim/internal/modules/comparison"
	"github.com/mahbubchula/policysim/internal/modules/policy"
	"github.com/mahbubchula/policysim/internal/modules/simulation"
)

// State is the orchestrator's position within one request
type State string

const (
	StateIdle                  State = "IDLE"
	StateAnalyzingRequest      State = "ANALYZING_REQUEST"
	StateSelectingModels       State = "SELECTING_MODELS"
	StateRunningSimulation     State = "RUNNING_SIMULATION"
	StateGeneratingExplanation State = "GENERATING_EXPLANATION"
	StateComplete              State = "COMPLETE"
	StateError                 State = "ERROR"
)

// validTransitions is the linear happy path. Any non-terminal state may
// additionally transition to ERROR; COMPLETE and ERROR are terminal.
var validTransitions = map[State]State{
	StateIdle:                  StateAnalyzingRequest,
	StateAnalyzingRequest:      StateSelectingModels,
	StateSelectingModels:       StateRunningSimulation,
	StateRunningSimulation:     StateGeneratingExplanation,
	StateGeneratingExplanation: StateComplete,
}

// IsTerminal reports whether no further transition is allowed from s
func (s State) IsTerminal() bool {
	return s == StateComplete || s == StateError
}

// ActionLogEntry records one state transition. Entries are appended, never
// mutated or removed; the log spans exactly one request.
type ActionLogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	State       State     `json:"state"`
	Description string    `json:"description"`
}

// AnalysisResult is the outcome of a single-policy analysis: the baseline
// run, the policy run, percent deltas per headline metric, and the
// best-effort explanation (empty when prose generation was unavailable).
type AnalysisResult struct {
	RequestID    string                        `json:"request_id"`
	Context      string                        `json:"context"`
	Policies     []policy.Policy               `json:"policies"`
	ModelsRun    []simulation.ModelID          `json:"models_run"`
	Baseline     simulation.Result             `json:"baseline"`
	PolicyResult simulation.Result             `json:"policy_result"`
	Deltas       map[comparison.Metric]float64 `json:"deltas"`
	Explanation  string                        `json:"explanation,omitempty"`
	ActionLog    []ActionLogEntry              `json:"action_log"`
}

// ComparisonOutcome is the outcome of a multi-scenario comparison
type ComparisonOutcome struct {
	RequestID   string            `json:"request_id"`
	Context     string            `json:"context"`
	Comparison  comparison.Result `json:"comparison"`
	Explanation string            `json:"explanation,omitempty"`
	ActionLog   []ActionLogEntry  `json:"action_log"`
}

// Recommendation is one policy kind scored at its representative parameters
type Recommendation struct {
	Kind   policy.Kind   `json:"kind"`
	Name   string        `json:"name"`
	Policy policy.Policy `json:"policy"`
	Score  float64       `json:"score"`
}

// QueryResult wraps whichever outcome a free-text query resolved to.
// Exactly one of Analysis, Comparison or Recommendations is set. The action
// log covers the whole run, interpretation included.
type QueryResult struct {
	RequestID       string                    `json:"request_id"`
	Interpreted     policy.InterpretedRequest `json:"interpreted"`
	Analysis        *AnalysisResult           `json:"analysis,omitempty"`
	Comparison      *ComparisonOutcome        `json:"comparison,omitempty"`
	Recommendations []Recommendation          `json:"recommendations,omitempty"`
	ActionLog       []ActionLogEntry          `json:"action_log"`
}

// ExplanationService is the external interpretation/explanation collaborator.
// Both operations are best-effort from the orchestrator's point of view:
// Interpret failures fail the request only because nothing structured exists
// yet, while Explain failures leave the numeric result intact.
type ExplanationService interface {
	Interpret(ctx context.Context, text string) (*policy.InterpretedRequest, error)
	ExplainAnalysis(ctx context.Context, result *AnalysisResult) (string, error)
	ExplainComparison(ctx context.Context, outcome *ComparisonOutcome) (string, error)
}
