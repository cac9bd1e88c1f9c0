package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahbubchula/policysim/internal/database"
	"github.com/mahbubchula/policysim/internal/domain"
	"github.com/mahbubchula/policysim/internal/modules/agent"
	"github.com/mahbubchula/policysim/internal/modules/policy"
	"github.com/mahbubchula/policysim/internal/modules/simulation"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db, zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func analysisFixture(t *testing.T) *agent.AnalysisResult {
	t.Helper()
	svc := agent.NewService(policy.NewRegistry(), policy.NewLibrary(),
		simulation.New(policy.NewRegistry(), zerolog.Nop()), nil, nil, nil, zerolog.Nop())

	result, err := svc.AnalyzePolicy(context.Background(), domain.DefaultContext(),
		[]policy.Policy{{
			Kind:   policy.KindTransitSubsidy,
			Params: map[string]float64{"subsidy_percent": 30},
		}})
	require.NoError(t, err)
	return result
}

func TestRepository_AnalysisRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	analysis := analysisFixture(t)

	require.NoError(t, repo.RecordAnalysis(analysis))

	run, err := repo.Get(analysis.RequestID)
	require.NoError(t, err)
	assert.Equal(t, RunKindAnalysis, run.Kind)
	assert.Equal(t, "default", run.Context)
	require.NotNil(t, run.Analysis)
	assert.Nil(t, run.Comparison)

	assert.Equal(t, analysis.RequestID, run.Analysis.RequestID)
	assert.InDelta(t, analysis.PolicyResult.OverallScore, run.Analysis.PolicyResult.OverallScore, 1e-9)
	assert.InDelta(t,
		analysis.PolicyResult.ModeShare.Projected[domain.ModeTransit],
		run.Analysis.PolicyResult.ModeShare.Projected[domain.ModeTransit], 1e-12)
	assert.Len(t, run.Analysis.ActionLog, len(analysis.ActionLog))
}

func TestRepository_ComparisonRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	registry := policy.NewRegistry()
	svc := agent.NewService(registry, policy.NewLibrary(),
		simulation.New(registry, zerolog.Nop()), nil, nil, nil, zerolog.Nop())

	outcome, err := svc.CompareScenarioIDs(context.Background(), domain.DefaultContext(),
		[]string{"baseline", "green_transport"})
	require.NoError(t, err)
	require.NoError(t, repo.RecordComparison(outcome))

	run, err := repo.Get(outcome.RequestID)
	require.NoError(t, err)
	assert.Equal(t, RunKindComparison, run.Kind)
	require.NotNil(t, run.Comparison)
	assert.Equal(t, outcome.Comparison.OverallWinner, run.Comparison.Comparison.OverallWinner)
}

func TestRepository_ListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)

	first := analysisFixture(t)
	second := analysisFixture(t)
	require.NoError(t, repo.RecordAnalysis(first))
	require.NoError(t, repo.RecordAnalysis(second))

	summaries, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.False(t, summaries[0].CreatedAt.Before(summaries[1].CreatedAt))

	// out-of-range limits fall back to the default
	summaries, err = repo.List(-1)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

func TestRepository_GetUnknownRun(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get("nope")
	var verr *policy.ValidationError
	require.ErrorAs(t, err, &verr)
}
