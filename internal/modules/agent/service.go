package agent

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mahbubchula/policysim/internal/domain"
	"github.com/mahbubchula/policysim/internal/events"
	"github.com/mahbubchula/policysim/internal/modules/comparison"
	"github.com/mahbubchula/policysim/internal/modules/policy"
	"github.com/mahbubchula/policysim/internal/modules/simulation"
	"github.com/mahbubchula/policysim/pkg/formulas"
	"github.com/mahbubchula/policysim/pkg/metrics"
)

// Service drives requests through the orchestration state machine. A Service
// is stateless between requests; each request gets its own run instance, so
// a single Service is safe for concurrent use.
type Service struct {
	registry  *policy.Registry
	library   *policy.Library
	simulator *simulation.Simulator
	explainer ExplanationService
	events    *events.Manager
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewService creates the orchestrator. explainer may be nil, in which case
// natural-language queries fail and explanations are skipped. m may be nil
// when nothing scrapes the process.
func NewService(
	registry *policy.Registry,
	library *policy.Library,
	simulator *simulation.Simulator,
	explainer ExplanationService,
	ev *events.Manager,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Service {
	if ev == nil {
		ev = events.NewManager(log)
	}
	return &Service{
		registry:  registry,
		library:   library,
		simulator: simulator,
		explainer: explainer,
		events:    ev,
		metrics:   m,
		log:       log.With().Str("service", "agent").Logger(),
	}
}

// selectModels fixes the model set for a run. Currently always the full
// suite; the seam exists for partial runs.
func (s *Service) selectModels() []simulation.ModelID {
	return simulation.AllModels()
}

// AnalyzePolicy runs baseline plus one policy case and reports the deltas
func (s *Service) AnalyzePolicy(ctx context.Context, rctx domain.RegionalContext, policies []policy.Policy) (*AnalysisResult, error) {
	r := newRun(s.events)
	if err := r.transition(StateAnalyzingRequest, fmt.Sprintf("validating %d policies", len(policies))); err != nil {
		return nil, err
	}
	return s.analyzePolicy(ctx, r, rctx, policies)
}

// analyzePolicy continues a run that is already in ANALYZING_REQUEST, so an
// interpreted query and a direct call share one action log.
func (s *Service) analyzePolicy(ctx context.Context, r *run, rctx domain.RegionalContext, policies []policy.Policy) (*AnalysisResult, error) {
	for i := range policies {
		if err := s.registry.Validate(&policies[i]); err != nil {
			r.fail(err)
			return nil, err
		}
	}

	models := s.selectModels()
	if err := r.transition(StateSelectingModels, fmt.Sprintf("selected %d models", len(models))); err != nil {
		return nil, err
	}

	if err := r.transition(StateRunningSimulation, "running baseline and policy case"); err != nil {
		return nil, err
	}
	baseline, err := s.simulator.SimulateBaseline(rctx)
	if err != nil {
		r.fail(err)
		return nil, err
	}
	policyResult, err := s.simulator.Simulate(rctx, policies)
	if err != nil {
		r.fail(err)
		return nil, err
	}

	result := &AnalysisResult{
		RequestID:    r.id,
		Context:      rctx.Name,
		Policies:     policies,
		ModelsRun:    models,
		Baseline:     baseline,
		PolicyResult: policyResult,
		Deltas:       metricDeltas(baseline, policyResult),
	}

	if err := r.transition(StateGeneratingExplanation, "requesting explanation"); err != nil {
		return nil, err
	}
	result.Explanation = s.explainAnalysis(ctx, r, result)

	if err := r.transition(StateComplete, "analysis complete"); err != nil {
		return nil, err
	}
	result.ActionLog = r.log

	s.events.Emit(events.SimulationComplete, "agent", map[string]interface{}{
		"request_id":    r.id,
		"context":       rctx.Name,
		"overall_score": policyResult.OverallScore,
	})
	return result, nil
}

// CompareScenarioIDs resolves library scenarios by ID and compares them
func (s *Service) CompareScenarioIDs(ctx context.Context, rctx domain.RegionalContext, ids []string) (*ComparisonOutcome, error) {
	scenarios := make([]policy.Scenario, 0, len(ids))
	for _, id := range ids {
		scenario, err := s.library.Get(id)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}
	return s.CompareScenarios(ctx, rctx, scenarios)
}

// CompareScenarios simulates each scenario in order and ranks the results.
// Fewer than two scenarios is a ValidationError.
func (s *Service) CompareScenarios(ctx context.Context, rctx domain.RegionalContext, scenarios []policy.Scenario) (*ComparisonOutcome, error) {
	r := newRun(s.events)
	if err := r.transition(StateAnalyzingRequest, fmt.Sprintf("validating %d scenarios", len(scenarios))); err != nil {
		return nil, err
	}
	return s.compareScenarios(ctx, r, rctx, scenarios)
}

func (s *Service) compareScenarios(ctx context.Context, r *run, rctx domain.RegionalContext, scenarios []policy.Scenario) (*ComparisonOutcome, error) {
	if len(scenarios) < 2 {
		err := policy.NewValidationError("scenarios",
			"comparison requires at least 2 scenarios, got %d", len(scenarios))
		r.fail(err)
		return nil, err
	}
	for _, scenario := range scenarios {
		if err := s.registry.ValidateScenario(scenario); err != nil {
			r.fail(err)
			return nil, err
		}
	}

	models := s.selectModels()
	if err := r.transition(StateSelectingModels, fmt.Sprintf("selected %d models", len(models))); err != nil {
		return nil, err
	}

	if err := r.transition(StateRunningSimulation, fmt.Sprintf("simulating %d scenarios", len(scenarios))); err != nil {
		return nil, err
	}
	entries := make([]comparison.Entry, 0, len(scenarios))
	for _, scenario := range scenarios {
		result, err := s.simulator.SimulateScenario(rctx, scenario)
		if err != nil {
			r.fail(err)
			return nil, err
		}
		entries = append(entries, comparison.Entry{
			ScenarioID: scenario.ID,
			Name:       scenario.Name,
			Result:     result,
		})
	}
	compared, err := comparison.Compare(entries)
	if err != nil {
		r.fail(err)
		return nil, err
	}

	outcome := &ComparisonOutcome{
		RequestID:  r.id,
		Context:    rctx.Name,
		Comparison: compared,
	}

	if err := r.transition(StateGeneratingExplanation, "requesting explanation"); err != nil {
		return nil, err
	}
	outcome.Explanation = s.explainComparison(ctx, r, outcome)

	if err := r.transition(StateComplete, "comparison complete"); err != nil {
		return nil, err
	}
	outcome.ActionLog = r.log

	s.events.Emit(events.ComparisonComplete, "agent", map[string]interface{}{
		"request_id": r.id,
		"context":    rctx.Name,
		"winner":     compared.OverallWinner,
	})
	return outcome, nil
}

// Recommendations runs every registered policy kind at its representative
// parameters and ranks the kinds by the requested metric.
func (s *Service) Recommendations(ctx context.Context, rctx domain.RegionalContext, target comparison.Metric) ([]Recommendation, error) {
	if _, err := comparison.ParseMetric(string(target)); err != nil {
		return nil, err
	}
	return s.rankPolicyKinds(ctx, rctx, target)
}

func (s *Service) rankPolicyKinds(ctx context.Context, rctx domain.RegionalContext, target comparison.Metric) ([]Recommendation, error) {
	recs := make([]Recommendation, 0, len(s.registry.Kinds()))
	for _, kind := range s.registry.Kinds() {
		rep, err := s.registry.Representative(kind)
		if err != nil {
			return nil, err
		}
		result, err := s.simulator.Simulate(rctx, []policy.Policy{rep})
		if err != nil {
			return nil, err
		}
		def, err := s.registry.Get(kind)
		if err != nil {
			return nil, err
		}
		recs = append(recs, Recommendation{
			Kind:   kind,
			Name:   def.Name,
			Policy: rep,
			Score:  comparison.MetricValue(result, target),
		})
	}

	// registration order breaks exact ties
	if comparison.LowerIsBetter(target) {
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score < recs[j].Score })
	} else {
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	}
	return recs, nil
}

// NaturalLanguageQuery interprets free text through the external service and
// dispatches to the matching operation. Interpretation happens inside the
// request's own run, so a failed interpretation leaves an observable ERROR
// state rather than an error with no run behind it.
func (s *Service) NaturalLanguageQuery(ctx context.Context, rctx domain.RegionalContext, text string) (*QueryResult, error) {
	if s.explainer == nil {
		return nil, fmt.Errorf("natural-language queries require an interpretation service")
	}

	r := newRun(s.events)
	if err := r.transition(StateAnalyzingRequest, "interpreting natural-language request"); err != nil {
		return nil, err
	}
	interpreted, err := s.explainer.Interpret(ctx, text)
	if err != nil {
		err = fmt.Errorf("interpret query: %w", err)
		r.fail(err)
		return nil, err
	}
	if interpreted == nil {
		err := policy.NewValidationError("query", "interpretation produced no structured request")
		r.fail(err)
		return nil, err
	}
	r.append(r.state, fmt.Sprintf("interpreted request as %s", interpreted.Action))

	out := &QueryResult{RequestID: r.id, Interpreted: *interpreted}
	switch interpreted.Action {
	case policy.ActionAnalyze:
		analysis, err := s.analyzePolicy(ctx, r, rctx, interpreted.Policies)
		if err != nil {
			return nil, err
		}
		out.Analysis = analysis
	case policy.ActionCompare:
		scenarios := make([]policy.Scenario, 0, len(interpreted.ScenarioIDs))
		for _, id := range interpreted.ScenarioIDs {
			scenario, err := s.library.Get(id)
			if err != nil {
				r.fail(err)
				return nil, err
			}
			scenarios = append(scenarios, scenario)
		}
		outcome, err := s.compareScenarios(ctx, r, rctx, scenarios)
		if err != nil {
			return nil, err
		}
		out.Comparison = outcome
	case policy.ActionRecommend:
		metric := comparison.Metric(interpreted.TargetMetric)
		if interpreted.TargetMetric == "" {
			metric = comparison.MetricOverallScore
		}
		recs, err := s.recommend(ctx, r, rctx, metric)
		if err != nil {
			return nil, err
		}
		out.Recommendations = recs
	default:
		err := policy.NewValidationError("action", "unknown action %q", interpreted.Action)
		r.fail(err)
		return nil, err
	}
	out.ActionLog = r.log
	return out, nil
}

// recommend walks an interpreted recommendation request through the
// remaining states of its run.
func (s *Service) recommend(ctx context.Context, r *run, rctx domain.RegionalContext, target comparison.Metric) ([]Recommendation, error) {
	if _, err := comparison.ParseMetric(string(target)); err != nil {
		r.fail(err)
		return nil, err
	}

	models := s.selectModels()
	if err := r.transition(StateSelectingModels, fmt.Sprintf("selected %d models", len(models))); err != nil {
		return nil, err
	}
	if err := r.transition(StateRunningSimulation, "simulating representative policies per kind"); err != nil {
		return nil, err
	}
	recs, err := s.rankPolicyKinds(ctx, rctx, target)
	if err != nil {
		r.fail(err)
		return nil, err
	}
	if err := r.transition(StateGeneratingExplanation, "rankings carry no explanation"); err != nil {
		return nil, err
	}
	if err := r.transition(StateComplete, "recommendation complete"); err != nil {
		return nil, err
	}
	return recs, nil
}

// explainAnalysis asks the external service for prose; a failure never
// discards the already-computed numeric result.
func (s *Service) explainAnalysis(ctx context.Context, r *run, result *AnalysisResult) string {
	if s.explainer == nil {
		return ""
	}
	text, err := s.explainer.ExplainAnalysis(ctx, result)
	if err != nil {
		s.observeExplanationSkip(r, err)
		return ""
	}
	return text
}

func (s *Service) explainComparison(ctx context.Context, r *run, outcome *ComparisonOutcome) string {
	if s.explainer == nil {
		return ""
	}
	text, err := s.explainer.ExplainComparison(ctx, outcome)
	if err != nil {
		s.observeExplanationSkip(r, err)
		return ""
	}
	return text
}

func (s *Service) observeExplanationSkip(r *run, err error) {
	s.log.Warn().Err(err).Str("request_id", r.id).Msg("Explanation unavailable")
	s.events.Emit(events.ExplanationSkipped, "agent", map[string]interface{}{
		"request_id": r.id,
		"error":      err.Error(),
	})
	if s.metrics != nil {
		s.metrics.ObserveExplanationSkip()
	}
}

// metricDeltas computes the percent change per headline metric from the
// baseline run to the policy run
func metricDeltas(baseline, policyResult simulation.Result) map[comparison.Metric]float64 {
	deltas := make(map[comparison.Metric]float64, len(comparison.AllMetrics()))
	for _, metric := range comparison.AllMetrics() {
		deltas[metric] = formulas.PercentChange(
			comparison.MetricValue(baseline, metric),
			comparison.MetricValue(policyResult, metric),
		)
	}
	return deltas
}
