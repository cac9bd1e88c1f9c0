package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahbubchula/policysim/internal/domain"
	"github.com/mahbubchula/policysim/internal/events"
	"github.com/mahbubchula/policysim/internal/modules/comparison"
	"github.com/mahbubchula/policysim/internal/modules/policy"
	"github.com/mahbubchula/policysim/internal/modules/simulation"
)

// stubExplainer is a canned ExplanationService for orchestrator tests
type stubExplainer struct {
	interpreted  *policy.InterpretedRequest
	interpretErr error
	explainErr   error
}

func (s *stubExplainer) Interpret(_ context.Context, _ string) (*policy.InterpretedRequest, error) {
	return s.interpreted, s.interpretErr
}

func (s *stubExplainer) ExplainAnalysis(_ context.Context, _ *AnalysisResult) (string, error) {
	if s.explainErr != nil {
		return "", s.explainErr
	}
	return "numbers look reasonable", nil
}

func (s *stubExplainer) ExplainComparison(_ context.Context, _ *ComparisonOutcome) (string, error) {
	if s.explainErr != nil {
		return "", s.explainErr
	}
	return "one scenario dominates", nil
}

func newTestService(explainer ExplanationService) *Service {
	registry := policy.NewRegistry()
	sim := simulation.New(registry, zerolog.Nop())
	ev := events.NewManager(zerolog.Nop())
	return NewService(registry, policy.NewLibrary(), sim, explainer, ev, nil, zerolog.Nop())
}

func subsidyPolicy(percent float64) policy.Policy {
	return policy.Policy{
		Kind:   policy.KindTransitSubsidy,
		Params: map[string]float64{"subsidy_percent": percent},
	}
}

func TestAnalyzePolicy_HappyPathActionLog(t *testing.T) {
	svc := newTestService(&stubExplainer{})
	ctx := domain.DefaultContext()

	result, err := svc.AnalyzePolicy(context.Background(), ctx, []policy.Policy{subsidyPolicy(30)})
	require.NoError(t, err)

	wantStates := []State{
		StateIdle,
		StateAnalyzingRequest,
		StateSelectingModels,
		StateRunningSimulation,
		StateGeneratingExplanation,
		StateComplete,
	}
	require.Len(t, result.ActionLog, len(wantStates))
	for i, want := range wantStates {
		assert.Equal(t, want, result.ActionLog[i].State, "entry %d", i)
		assert.False(t, result.ActionLog[i].Timestamp.IsZero(), "entry %d", i)
	}

	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, simulation.AllModels(), result.ModelsRun)
	assert.Equal(t, "numbers look reasonable", result.Explanation)

	// subsidy lowers emissions relative to baseline
	assert.Negative(t, result.Deltas[comparison.MetricEmissionsKgDay])
	assert.Equal(t, 50.0, result.Baseline.EmissionsScore)
}

func TestAnalyzePolicy_InvalidPolicyEndsInError(t *testing.T) {
	svc := newTestService(&stubExplainer{})

	_, err := svc.AnalyzePolicy(context.Background(), domain.DefaultContext(),
		[]policy.Policy{subsidyPolicy(150)})

	var verr *policy.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAnalyzePolicy_ExplanationFailureKeepsNumbers(t *testing.T) {
	svc := newTestService(&stubExplainer{explainErr: errors.New("upstream timeout")})
	ctx := domain.DefaultContext()

	result, err := svc.AnalyzePolicy(context.Background(), ctx, []policy.Policy{subsidyPolicy(30)})
	require.NoError(t, err)

	assert.Empty(t, result.Explanation)
	assert.Greater(t, result.PolicyResult.EmissionsScore, 50.0)
	assert.Equal(t, StateComplete, result.ActionLog[len(result.ActionLog)-1].State)
}

func TestAnalyzePolicy_NilExplainerStillCompletes(t *testing.T) {
	svc := newTestService(nil)

	result, err := svc.AnalyzePolicy(context.Background(), domain.DefaultContext(),
		[]policy.Policy{subsidyPolicy(30)})
	require.NoError(t, err)
	assert.Empty(t, result.Explanation)
}

func TestCompareScenarioIDs(t *testing.T) {
	svc := newTestService(&stubExplainer{})
	ctx := domain.DefaultContext()

	outcome, err := svc.CompareScenarioIDs(context.Background(), ctx,
		[]string{"baseline", "green_transport", "equity_focused"})
	require.NoError(t, err)

	require.Len(t, outcome.Comparison.Entries, 3)
	assert.NotEmpty(t, outcome.Comparison.OverallWinner)
	assert.Equal(t, "one scenario dominates", outcome.Explanation)
	assert.Equal(t, StateComplete, outcome.ActionLog[len(outcome.ActionLog)-1].State)

	// heavy subsidy plus congestion pricing cuts CO2 below the baseline
	assert.Equal(t, "green_transport", outcome.Comparison.Winners[comparison.MetricEmissionsKgDay])
}

func TestCompareScenarios_RequiresTwo(t *testing.T) {
	svc := newTestService(&stubExplainer{})

	_, err := svc.CompareScenarioIDs(context.Background(), domain.DefaultContext(),
		[]string{"baseline"})
	var verr *policy.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCompareScenarioIDs_UnknownScenario(t *testing.T) {
	svc := newTestService(&stubExplainer{})

	_, err := svc.CompareScenarioIDs(context.Background(), domain.DefaultContext(),
		[]string{"baseline", "no_such_scenario"})
	var verr *policy.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRecommendations_RanksByRequestedMetric(t *testing.T) {
	svc := newTestService(nil)
	ctx := domain.DefaultContext()

	recs, err := svc.Recommendations(context.Background(), ctx, comparison.MetricEmissionsKgDay)
	require.NoError(t, err)
	require.Len(t, recs, 5)

	// lower-is-better metric sorts ascending
	for i := 1; i < len(recs); i++ {
		assert.LessOrEqual(t, recs[i-1].Score, recs[i].Score)
	}

	_, err = svc.Recommendations(context.Background(), ctx, comparison.Metric("bogus"))
	var verr *policy.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestNaturalLanguageQuery_DispatchesAnalyze(t *testing.T) {
	svc := newTestService(&stubExplainer{
		interpreted: &policy.InterpretedRequest{
			Action:     policy.ActionAnalyze,
			Policies:   []policy.Policy{subsidyPolicy(40)},
			Confidence: 0.9,
		},
	})

	out, err := svc.NaturalLanguageQuery(context.Background(), domain.DefaultContext(),
		"what if we subsidize transit fares by 40 percent?")
	require.NoError(t, err)
	require.NotNil(t, out.Analysis)
	assert.Nil(t, out.Comparison)
	assert.Equal(t, policy.ActionAnalyze, out.Interpreted.Action)

	// interpretation and analysis share one run
	assert.Equal(t, out.RequestID, out.Analysis.RequestID)
	require.NotEmpty(t, out.ActionLog)
	assert.Equal(t, StateAnalyzingRequest, out.ActionLog[1].State)
	assert.Equal(t, StateComplete, out.ActionLog[len(out.ActionLog)-1].State)
}

func TestNaturalLanguageQuery_MalformedInterpretationHitsValidation(t *testing.T) {
	svc := newTestService(&stubExplainer{
		interpreted: &policy.InterpretedRequest{
			Action:   policy.ActionAnalyze,
			Policies: []policy.Policy{subsidyPolicy(500)},
		},
	})

	_, err := svc.NaturalLanguageQuery(context.Background(), domain.DefaultContext(), "huge subsidy")
	var verr *policy.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestNaturalLanguageQuery_DispatchesCompare(t *testing.T) {
	svc := newTestService(&stubExplainer{
		interpreted: &policy.InterpretedRequest{
			Action:      policy.ActionCompare,
			ScenarioIDs: []string{"baseline", "green_transport"},
		},
	})

	out, err := svc.NaturalLanguageQuery(context.Background(), domain.DefaultContext(),
		"is the green package better than doing nothing?")
	require.NoError(t, err)
	require.NotNil(t, out.Comparison)
	assert.Equal(t, StateComplete, out.ActionLog[len(out.ActionLog)-1].State)
	assert.Equal(t, out.RequestID, out.Comparison.RequestID)
}

func TestNaturalLanguageQuery_DispatchesRecommend(t *testing.T) {
	svc := newTestService(&stubExplainer{
		interpreted: &policy.InterpretedRequest{Action: policy.ActionRecommend},
	})

	out, err := svc.NaturalLanguageQuery(context.Background(), domain.DefaultContext(),
		"what single policy helps the most?")
	require.NoError(t, err)
	require.Len(t, out.Recommendations, 5)
	assert.Equal(t, StateComplete, out.ActionLog[len(out.ActionLog)-1].State)
}

// A failed interpretation must leave an observable ERROR run, not just an
// error return: the run starts before the interpreter is called.
func TestNaturalLanguageQuery_InterpretFailureRecordsErrorState(t *testing.T) {
	registry := policy.NewRegistry()
	ev := events.NewManager(zerolog.Nop())
	ch, cancel := ev.Subscribe()
	defer cancel()

	svc := NewService(registry, policy.NewLibrary(),
		simulation.New(registry, zerolog.Nop()),
		&stubExplainer{interpretErr: errors.New("model unavailable")},
		ev, nil, zerolog.Nop())

	_, err := svc.NaturalLanguageQuery(context.Background(), domain.DefaultContext(), "anything")
	require.Error(t, err)

	var first events.EventType
	var states []State
	sawError := false
	for len(ch) > 0 {
		e := <-ch
		if first == "" {
			first = e.Type
		}
		switch e.Type {
		case events.StateTransition:
			states = append(states, State(e.Data["state"].(string)))
		case events.ErrorOccurred:
			sawError = true
		}
	}

	assert.Equal(t, events.RequestReceived, first)
	assert.Contains(t, states, StateAnalyzingRequest)
	require.NotEmpty(t, states)
	assert.Equal(t, StateError, states[len(states)-1])
	assert.True(t, sawError)
}

func TestNaturalLanguageQuery_InterpretFailureFails(t *testing.T) {
	svc := newTestService(&stubExplainer{interpretErr: errors.New("model unavailable")})

	_, err := svc.NaturalLanguageQuery(context.Background(), domain.DefaultContext(), "anything")
	require.Error(t, err)

	svc = newTestService(nil)
	_, err = svc.NaturalLanguageQuery(context.Background(), domain.DefaultContext(), "anything")
	require.Error(t, err)
}

func TestRunStateMachine(t *testing.T) {
	r := newRun(nil)
	require.Equal(t, StateIdle, r.state)

	require.NoError(t, r.transition(StateAnalyzingRequest, "x"))
	assert.Error(t, r.transition(StateRunningSimulation, "skipping a state"))

	r.fail(errors.New("boom"))
	assert.Equal(t, StateError, r.state)
	assert.Error(t, r.transition(StateSelectingModels, "after terminal"))

	// fail on a terminal run appends nothing
	entries := len(r.log)
	r.fail(errors.New("again"))
	assert.Len(t, r.log, entries)
	assert.True(t, StateError.IsTerminal())
	assert.True(t, StateComplete.IsTerminal())
	assert.False(t, StateRunningSimulation.IsTerminal())
}
