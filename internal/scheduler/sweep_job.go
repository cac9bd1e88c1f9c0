package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mahbubchula/policysim/internal/events"
	"github.com/mahbubchula/policysim/internal/modules/agent"
	"github.com/mahbubchula/policysim/internal/modules/history"
	"github.com/mahbubchula/policysim/internal/modules/policy"
	"github.com/mahbubchula/policysim/internal/modules/regions"
)

// SweepJob re-runs the full scenario library against every known regional
// context and persists the comparisons, so the run history always holds a
// fresh ranking per region.
type SweepJob struct {
	agent   *agent.Service
	library *policy.Library
	regions *regions.Store
	history *history.Repository
	events  *events.Manager
	timeout time.Duration
	log     zerolog.Logger
}

// NewSweepJob creates the nightly scenario sweep
func NewSweepJob(
	agentSvc *agent.Service,
	library *policy.Library,
	store *regions.Store,
	repo *history.Repository,
	ev *events.Manager,
	log zerolog.Logger,
) *SweepJob {
	return &SweepJob{
		agent:   agentSvc,
		library: library,
		regions: store,
		history: repo,
		events:  ev,
		timeout: 5 * time.Minute,
		log:     log.With().Str("job", "scenario_sweep").Logger(),
	}
}

// Name implements Job
func (j *SweepJob) Name() string { return "scenario_sweep" }

// Run implements Job
func (j *SweepJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	scenarios := j.library.List()
	if len(scenarios) < 2 {
		return fmt.Errorf("scenario library holds %d scenarios, sweep needs at least 2", len(scenarios))
	}

	var failures int
	for _, rctx := range j.regions.List() {
		outcome, err := j.agent.CompareScenarios(ctx, rctx, scenarios)
		if err != nil {
			j.log.Error().Err(err).Str("context", rctx.Name).Msg("Sweep comparison failed")
			failures++
			continue
		}
		if err := j.history.RecordComparison(outcome); err != nil {
			j.log.Error().Err(err).Str("context", rctx.Name).Msg("Sweep persistence failed")
			failures++
			continue
		}
		j.log.Info().
			Str("context", rctx.Name).
			Str("winner", outcome.Comparison.OverallWinner).
			Msg("Sweep comparison stored")
	}

	if j.events != nil {
		j.events.Emit(events.SweepComplete, "scheduler", map[string]interface{}{
			"contexts": len(j.regions.List()),
			"failures": failures,
		})
	}
	if failures > 0 {
		return fmt.Errorf("sweep finished with %d failures", failures)
	}
	return nil
}
